package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Screenshot captures the active page as PNG, viewport-sized or full page.
func (s *Session) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	page, err := s.Page(ctx)
	if err != nil {
		return nil, err
	}

	p := page.Timeout(navTimeout)
	defer p.CancelTimeout()

	shot, err := p.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: screenshot exceeded %s", ErrTimeout, navTimeout)
		}
		return nil, fmt.Errorf("%w: screenshot: %v", ErrUpstream, err)
	}
	return shot, nil
}

// PerformanceEntries reads all performance-timeline entries of the active
// page, JSON-encoded. With targetURL it navigates first and waits for the
// network to settle; without it the current page is read as is, no reload.
// With mark it polls up to 5s until an entry with that name exists.
func (s *Session) PerformanceEntries(ctx context.Context, targetURL, mark string) (string, error) {
	page, err := s.Page(ctx)
	if err != nil {
		return "", err
	}

	if targetURL != "" {
		if err := validateURL(targetURL); err != nil {
			return "", err
		}

		p := page.Timeout(navTimeout)
		wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
		if err := p.Navigate(targetURL); err != nil {
			p.CancelTimeout()
			if isTimeout(err) {
				return "", fmt.Errorf("%w: navigation to %s exceeded %s", ErrTimeout, targetURL, navTimeout)
			}
			return "", fmt.Errorf("%w: navigate to %s: %v", ErrUpstream, targetURL, err)
		}
		wait()

		timedOut := p.GetContext().Err() != nil
		p.CancelTimeout()
		if timedOut {
			return "", fmt.Errorf("%w: navigation to %s exceeded %s", ErrTimeout, targetURL, navTimeout)
		}
	}

	if mark != "" {
		p := page.Timeout(markTimeout)
		err := p.Wait(rod.Eval(`name => performance.getEntriesByName(name).length > 0`, mark))
		p.CancelTimeout()
		if err != nil {
			if isTimeout(err) {
				return "", fmt.Errorf("%w: no performance entry named %q within %s", ErrTimeout, mark, markTimeout)
			}
			return "", fmt.Errorf("%w: wait for mark %q: %v", ErrUpstream, mark, err)
		}
	}

	reader := page.Timeout(navTimeout)
	defer reader.CancelTimeout()

	res, err := reader.Eval(`() => JSON.stringify(performance.getEntries())`)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: read performance entries exceeded %s", ErrTimeout, navTimeout)
		}
		return "", fmt.Errorf("%w: read performance entries: %v", ErrUpstream, err)
	}
	return res.Value.Str(), nil
}
