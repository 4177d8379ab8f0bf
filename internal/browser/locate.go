package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// LocateExecutable resolves a browser binary path. An explicit override is
// returned unconditionally without an existence check; otherwise the
// platform's well-known install locations are probed in order. Resolution is
// recomputed per launch, never cached.
func LocateExecutable(override string) (string, error) {
	return locate(override, runtime.GOOS)
}

func locate(override, goos string) (string, error) {
	if override != "" {
		return override, nil
	}

	candidates := candidatePaths(goos)
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: unrecognized platform %q, set %s to a browser binary",
			ErrNotFound, goos, "PAGEPILOT_EXECUTABLE_PATH")
	}

	return firstExisting(goos, candidates)
}

func firstExisting(goos string, candidates []string) (string, error) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no Chrome, Chromium or Edge install detected on %s, set %s",
		ErrNotFound, goos, "PAGEPILOT_EXECUTABLE_PATH")
}

// candidatePaths returns the ordered per-platform install locations to probe.
func candidatePaths(goos string) []string {
	switch goos {
	case "windows":
		var paths []string
		for _, suffix := range []string{
			`Google\Chrome\Application\chrome.exe`,
			`Microsoft\Edge\Application\msedge.exe`,
		} {
			for _, root := range []string{
				os.Getenv("ProgramFiles"),
				os.Getenv("ProgramFiles(x86)"),
				os.Getenv("LocalAppData"),
			} {
				if root != "" {
					paths = append(paths, filepath.Join(root, suffix))
				}
			}
		}
		return paths
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/usr/bin/microsoft-edge",
			"/snap/bin/chromium",
		}
	default:
		return nil
	}
}
