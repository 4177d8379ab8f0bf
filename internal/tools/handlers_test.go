package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wirasm/pagepilot/internal/browser"
	"github.com/wirasm/pagepilot/internal/bus"
)

// mockClient is a canned-response browser client for testing tool handlers
// without a real browser.
type mockClient struct {
	err      error
	console  []browser.ConsoleEntry
	lastURL  string
	lastSel  string
	lastFull bool
}

func (m *mockClient) Navigate(ctx context.Context, url string) (string, error) {
	m.lastURL = url
	if m.err != nil {
		return "", m.err
	}
	return "Navigated to " + url, nil
}

func (m *mockClient) Click(ctx context.Context, selector string) error {
	m.lastSel = selector
	return m.err
}

func (m *mockClient) Fill(ctx context.Context, selector, value string) error {
	m.lastSel = selector
	return m.err
}

func (m *mockClient) Evaluate(ctx context.Context, script string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return `{"title":"Example"}`, nil
}

func (m *mockClient) Inspect(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return `[{"role":"RootWebArea"}]`, nil
}

func (m *mockClient) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	m.lastFull = fullPage
	if m.err != nil {
		return nil, m.err
	}
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

func (m *mockClient) PerformanceEntries(ctx context.Context, url, mark string) (string, error) {
	m.lastURL = url
	if m.err != nil {
		return "", m.err
	}
	return `[{"entryType":"navigation"}]`, nil
}

func (m *mockClient) Audit(ctx context.Context, url string) (string, error) {
	m.lastURL = url
	if m.err != nil {
		return "", m.err
	}
	return `{"performance":{"title":"Performance","score":0.97}}`, nil
}

func (m *mockClient) ConsoleLogs() []browser.ConsoleEntry { return m.console }

func (m *mockClient) Alive() bool { return true }

func (m *mockClient) Endpoint() string { return "ws://127.0.0.1:9222/devtools/browser/abc" }

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	if len(res.Content) == 0 {
		t.Fatalf("Expected result content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestNavigateTool(t *testing.T) {
	client := &mockClient{}
	h := NewHandler(client, nil)

	res, err := h.Navigate(context.Background(), callRequest("navigate", map[string]any{
		"url": "https://example.com",
	}))
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	if got := textOf(t, res); got != "Navigated to https://example.com" {
		t.Errorf("Unexpected result text %q", got)
	}
	if client.lastURL != "https://example.com" {
		t.Errorf("Expected the url passed through, got %q", client.lastURL)
	}
}

func TestNavigateToolMissingURL(t *testing.T) {
	h := NewHandler(&mockClient{}, nil)

	_, err := h.Navigate(context.Background(), callRequest("navigate", map[string]any{}))
	if err == nil {
		t.Fatalf("Expected an error for a missing url argument")
	}
}

func TestFillToolRequiresValue(t *testing.T) {
	h := NewHandler(&mockClient{}, nil)

	_, err := h.Fill(context.Background(), callRequest("fill", map[string]any{
		"selector": "#name",
	}))
	if err == nil {
		t.Fatalf("Expected an error for a missing value argument")
	}
}

func TestScreenshotTool(t *testing.T) {
	client := &mockClient{}
	h := NewHandler(client, nil)

	res, err := h.Screenshot(context.Background(), callRequest("take-screenshot", map[string]any{
		"fullPage": true,
	}))
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}

	if !client.lastFull {
		t.Errorf("Expected fullPage passed through")
	}

	if len(res.Content) == 0 {
		t.Fatalf("Expected result content")
	}
	img, ok := res.Content[0].(mcp.ImageContent)
	if !ok {
		t.Fatalf("Expected image content, got %T", res.Content[0])
	}
	if img.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %q", img.MIMEType)
	}
	if img.Data != "iVBORw==" {
		t.Errorf("Expected base64 image data, got %q", img.Data)
	}
}

func TestConsoleLogsToolEmptyBuffer(t *testing.T) {
	h := NewHandler(&mockClient{}, nil)

	res, err := h.ConsoleLogs(context.Background(), callRequest("console-logs", nil))
	if err != nil {
		t.Fatalf("ConsoleLogs failed: %v", err)
	}

	if got := textOf(t, res); got != "[]" {
		t.Errorf("Expected an empty JSON list, got %q", got)
	}
}

func TestInstrumentConvertsErrors(t *testing.T) {
	client := &mockClient{err: errors.New("element not found")}
	h := NewHandler(client, nil)

	wrapped := h.instrument("click", h.Click)
	res, err := wrapped(context.Background(), callRequest("click", map[string]any{
		"selector": "#missing",
	}))
	if err != nil {
		t.Fatalf("Expected the error folded into the result, got %v", err)
	}
	if !res.IsError {
		t.Fatalf("Expected an error result")
	}
	if got := textOf(t, res); got != "element not found" {
		t.Errorf("Expected the error text carried, got %q", got)
	}
}

func TestInstrumentPublishesEvents(t *testing.T) {
	hub := bus.NewHub()
	events, err := bus.NewPublisher(hub, "")
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	defer events.Close()

	ch := hub.Subscribe()

	h := NewHandler(&mockClient{}, events)
	wrapped := h.instrument("navigate", h.Navigate)

	if _, err := wrapped(context.Background(), callRequest("navigate", map[string]any{
		"url": "https://example.com",
	})); err != nil {
		t.Fatalf("Tool call failed: %v", err)
	}

	select {
	case event := <-ch:
		if event.Tool != "navigate" {
			t.Errorf("Expected tool navigate, got %q", event.Tool)
		}
		if !event.OK {
			t.Errorf("Expected an ok event")
		}
	case <-time.After(time.Second):
		t.Fatalf("No event published")
	}
}
