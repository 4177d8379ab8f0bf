package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// auditCategories are the lighthouse categories requested for every report.
var auditCategories = []string{"performance", "accessibility", "best-practices", "seo", "pwa"}

// CategoryScore is one scored audit category. Score is 0-1, or null when
// lighthouse could not score the category.
type CategoryScore struct {
	Title string   `json:"title"`
	Score *float64 `json:"score"`
}

// Audit runs the lighthouse CLI against the live session's remote-debugging
// port and returns the flat category/score mapping, JSON-encoded. Without
// targetURL the active page's current URL is audited.
func (s *Session) Audit(ctx context.Context, targetURL string) (string, error) {
	page, err := s.Page(ctx)
	if err != nil {
		return "", err
	}

	if targetURL == "" {
		info, err := page.Info()
		if err != nil {
			return "", fmt.Errorf("%w: read page url: %v", ErrUpstream, err)
		}
		targetURL = info.URL
	} else if err := validateURL(targetURL); err != nil {
		return "", err
	}

	port, err := s.DebugPort()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}

	raw, err := runLighthouse(ctx, s.opts.LighthouseBin, targetURL, port)
	if err != nil {
		return "", err
	}

	scores, err := parseAuditReport(raw)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(scores)
	if err != nil {
		return "", fmt.Errorf("%w: encode scores: %v", ErrAuditFailed, err)
	}
	return string(out), nil
}

func runLighthouse(ctx context.Context, bin, targetURL string, port int) ([]byte, error) {
	if bin == "" {
		bin = "lighthouse"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: lighthouse CLI not found (%v), install it or set --lighthouse-bin", ErrAuditFailed, err)
	}

	cmd := exec.CommandContext(ctx, path, lighthouseArgs(targetURL, port)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrAuditFailed, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

func lighthouseArgs(targetURL string, port int) []string {
	return []string{
		targetURL,
		"--port", strconv.Itoa(port),
		"--output", "json",
		"--output-path", "stdout",
		"--quiet",
		"--only-categories", strings.Join(auditCategories, ","),
	}
}

func parseAuditReport(raw []byte) (map[string]CategoryScore, error) {
	var report struct {
		Categories map[string]CategoryScore `json:"categories"`
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("%w: malformed report: %v", ErrAuditFailed, err)
	}
	if len(report.Categories) == 0 {
		return nil, fmt.Errorf("%w: report carries no categories", ErrAuditFailed)
	}

	scores := make(map[string]CategoryScore, len(report.Categories))
	for key, cat := range report.Categories {
		scores[key] = CategoryScore{Title: cat.Title, Score: cat.Score}
	}
	return scores, nil
}
