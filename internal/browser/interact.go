package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Wait bounds. Fixed per primitive; a timeout fails the call but leaves the
// session intact.
const (
	navTimeout      = 30 * time.Second
	selectorTimeout = 5 * time.Second
	markTimeout     = 5 * time.Second
)

// Navigate validates url and navigates the active page, waiting until the DOM
// is parsed. Returns a confirmation message.
func (s *Session) Navigate(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	page, err := s.Page(ctx)
	if err != nil {
		return "", err
	}

	p := page.Timeout(navTimeout)
	defer p.CancelTimeout()

	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(rawURL); err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: navigation to %s exceeded %s", ErrTimeout, rawURL, navTimeout)
		}
		return "", fmt.Errorf("%w: navigate to %s: %v", ErrUpstream, rawURL, err)
	}
	wait()

	if p.GetContext().Err() != nil {
		return "", fmt.Errorf("%w: navigation to %s exceeded %s", ErrTimeout, rawURL, navTimeout)
	}

	return fmt.Sprintf("Navigated to %s", rawURL), nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %v", rawURL, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("invalid url %q: must be absolute (include the protocol)", rawURL)
	}
	return nil
}

// Click waits up to 5s for selector to match and dispatches a left click.
func (s *Session) Click(ctx context.Context, selector string) error {
	if selector == "" {
		return fmt.Errorf("selector is required")
	}

	page, err := s.Page(ctx)
	if err != nil {
		return err
	}

	p := page.Timeout(selectorTimeout)
	defer p.CancelTimeout()

	el, err := elementWithin(p, selector)
	if err != nil {
		return err
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: click %q: %v", ErrInteractionFailed, selector, err)
	}
	return nil
}

// Fill waits up to 5s for selector to match and types value into it.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if selector == "" {
		return fmt.Errorf("selector is required")
	}

	page, err := s.Page(ctx)
	if err != nil {
		return err
	}

	p := page.Timeout(selectorTimeout)
	defer p.CancelTimeout()

	el, err := elementWithin(p, selector)
	if err != nil {
		return err
	}

	if err := el.Input(value); err != nil {
		return fmt.Errorf("%w: fill %q: %v", ErrInteractionFailed, selector, err)
	}
	return nil
}

func elementWithin(p *rod.Page, selector string) (*rod.Element, error) {
	el, err := p.Element(selector)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: no element matching %q within %s", ErrElementNotFound, selector, selectorTimeout)
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrElementNotFound, selector, err)
	}
	return el, nil
}

// Evaluate runs script as a function body in the page's execution context, so
// return statements are honored, and serializes the result to JSON text.
func (s *Session) Evaluate(ctx context.Context, script string) (string, error) {
	if script == "" {
		return "", fmt.Errorf("script is required")
	}

	page, err := s.Page(ctx)
	if err != nil {
		return "", err
	}

	p := page.Timeout(navTimeout)
	defer p.CancelTimeout()

	res, err := p.Eval(evalWrapper(script))
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: script exceeded %s", ErrScriptError, navTimeout)
		}
		return "", fmt.Errorf("%w: %v", ErrScriptError, err)
	}

	out, err := json.Marshal(res.Value.Val())
	if err != nil {
		return "", fmt.Errorf("%w: result not serializable: %v", ErrScriptError, err)
	}
	return string(out), nil
}

func evalWrapper(script string) string {
	return "() => {\n" + script + "\n}"
}

// Inspect captures a full accessibility-tree snapshot of the active page,
// JSON-encoded.
func (s *Session) Inspect(ctx context.Context) (string, error) {
	page, err := s.Page(ctx)
	if err != nil {
		return "", err
	}

	tree, err := proto.AccessibilityGetFullAXTree{}.Call(page)
	if err != nil {
		return "", fmt.Errorf("%w: accessibility snapshot: %v", ErrUpstream, err)
	}

	out, err := json.Marshal(tree.Nodes)
	if err != nil {
		return "", fmt.Errorf("%w: encode snapshot: %v", ErrUpstream, err)
	}
	return string(out), nil
}
