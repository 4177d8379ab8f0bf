package browser

import "context"

// Client defines the primitives the transports dispatch onto. *Session is
// the one real implementation; transports depend on this so they can be
// tested without a browser.
type Client interface {
	Navigate(ctx context.Context, url string) (string, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Evaluate(ctx context.Context, script string) (string, error)
	Inspect(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	PerformanceEntries(ctx context.Context, url, mark string) (string, error)
	Audit(ctx context.Context, url string) (string, error)
	ConsoleLogs() []ConsoleEntry
	Alive() bool
	Endpoint() string
}
