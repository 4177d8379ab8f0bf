package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// DownloadBrowser fetches a managed Chromium build for the current OS/arch
// and returns its path. Used when no local install exists and discovery is
// not wanted (--download-browser).
func DownloadBrowser(ctx context.Context) (string, error) {
	downloader := launcher.NewBrowser()
	downloader.Context = ctx

	path, err := downloader.Get()
	if err != nil {
		return "", fmt.Errorf("%w: download chromium: %v", ErrLaunchFailed, err)
	}
	return path, nil
}
