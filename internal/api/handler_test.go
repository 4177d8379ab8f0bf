package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wirasm/pagepilot/internal/api"
	"github.com/wirasm/pagepilot/internal/browser"
)

// mockClient is a canned-response browser client for testing handlers
// without a real browser.
type mockClient struct {
	err     error
	console []browser.ConsoleEntry
}

func (m *mockClient) Navigate(ctx context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "Navigated to " + url, nil
}

func (m *mockClient) Click(ctx context.Context, selector string) error {
	return m.err
}

func (m *mockClient) Fill(ctx context.Context, selector, value string) error {
	return m.err
}

func (m *mockClient) Evaluate(ctx context.Context, script string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return `42`, nil
}

func (m *mockClient) Inspect(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return `[{"role":"RootWebArea"}]`, nil
}

func (m *mockClient) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte{0x89, 0x50, 0x4e, 0x47}, nil
}

func (m *mockClient) PerformanceEntries(ctx context.Context, url, mark string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return `[{"entryType":"navigation"}]`, nil
}

func (m *mockClient) Audit(ctx context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return `{"performance":{"title":"Performance","score":0.97}}`, nil
}

func (m *mockClient) ConsoleLogs() []browser.ConsoleEntry {
	return m.console
}

func (m *mockClient) Alive() bool { return true }

func (m *mockClient) Endpoint() string { return "ws://127.0.0.1:9222/devtools/browser/abc" }

func setupTestApp(client browser.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})

	handler := api.NewHandler(client)

	app.Get("/health", handler.HealthCheck)
	app.Get("/pilot/status", handler.Status)
	app.Get("/pilot/console", handler.Console)
	app.Post("/pilot/navigate", handler.Navigate)
	app.Post("/pilot/click", handler.Click)
	app.Post("/pilot/fill", handler.Fill)
	app.Post("/pilot/evaluate", handler.Evaluate)
	app.Post("/pilot/inspect", handler.Inspect)
	app.Post("/pilot/screenshot", handler.Screenshot)
	app.Post("/pilot/performance", handler.Performance)
	app.Post("/pilot/lighthouse", handler.Lighthouse)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, api.Response) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var response api.Response
	if err := json.Unmarshal(raw, &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return resp.StatusCode, response
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "GET", "/health", "")
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}
	if !response.Success {
		t.Errorf("Expected success to be true")
	}
}

func TestStatus(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "GET", "/pilot/status", "")
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}

	data := response.Data.(map[string]interface{})
	if data["running"] != true {
		t.Errorf("Expected browser to be running")
	}
	if data["endpoint"] == "" {
		t.Errorf("Expected a non-empty endpoint")
	}
}

func TestNavigate(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "POST", "/pilot/navigate", `{"url": "https://example.com"}`)
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}
	if !response.Success {
		t.Errorf("Expected success to be true")
	}

	data := response.Data.(map[string]interface{})
	if data["url"] != "https://example.com" {
		t.Errorf("Expected echoed url, got %v", data["url"])
	}
}

func TestNavigateMissingURL(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "POST", "/pilot/navigate", `{}`)
	if code != 400 {
		t.Errorf("Expected status 400, got %d", code)
	}
	if response.Success {
		t.Errorf("Expected success to be false")
	}
}

func TestClickElementNotFound(t *testing.T) {
	app := setupTestApp(&mockClient{err: browser.ErrElementNotFound})

	code, response := doJSON(t, app, "POST", "/pilot/click", `{"selector": "#missing"}`)
	if code != 404 {
		t.Errorf("Expected status 404, got %d", code)
	}
	if response.Error == "" {
		t.Errorf("Expected an error message")
	}
}

func TestNavigateTimeout(t *testing.T) {
	app := setupTestApp(&mockClient{err: browser.ErrTimeout})

	code, _ := doJSON(t, app, "POST", "/pilot/navigate", `{"url": "https://example.com"}`)
	if code != 504 {
		t.Errorf("Expected status 504, got %d", code)
	}
}

func TestNavigateLaunchFailed(t *testing.T) {
	app := setupTestApp(&mockClient{err: browser.ErrLaunchFailed})

	code, _ := doJSON(t, app, "POST", "/pilot/navigate", `{"url": "https://example.com"}`)
	if code != 503 {
		t.Errorf("Expected status 503, got %d", code)
	}
}

func TestFillMissingSelector(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, _ := doJSON(t, app, "POST", "/pilot/fill", `{"value": "hello"}`)
	if code != 400 {
		t.Errorf("Expected status 400, got %d", code)
	}
}

func TestEvaluate(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "POST", "/pilot/evaluate", `{"script": "return 42"}`)
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}

	data := response.Data.(map[string]interface{})
	if data["result"] != float64(42) {
		t.Errorf("Expected result 42, got %v", data["result"])
	}
}

func TestScreenshot(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "POST", "/pilot/screenshot", `{"full_page": true}`)
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}

	data := response.Data.(map[string]interface{})
	if data["format"] != "png" {
		t.Errorf("Expected format to be png")
	}
	if data["screenshot"] != "iVBORw==" {
		t.Errorf("Expected base64 screenshot, got %v", data["screenshot"])
	}
}

func TestScreenshotEmptyBody(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "POST", "/pilot/screenshot", "")
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}
	if !response.Success {
		t.Errorf("Expected success to be true")
	}
}

func TestConsole(t *testing.T) {
	app := setupTestApp(&mockClient{console: []browser.ConsoleEntry{
		{Level: "log", Text: "hello"},
	}})

	code, response := doJSON(t, app, "GET", "/pilot/console", "")
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}

	data := response.Data.(map[string]interface{})
	entries := data["entries"].([]interface{})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 console entry, got %d", len(entries))
	}
}

func TestConsoleEmpty(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, response := doJSON(t, app, "GET", "/pilot/console", "")
	if code != 200 {
		t.Errorf("Expected status 200, got %d", code)
	}

	data := response.Data.(map[string]interface{})
	if _, ok := data["entries"].([]interface{}); !ok {
		t.Errorf("Expected entries to be a list, got %T", data["entries"])
	}
}

func TestInvalidJSON(t *testing.T) {
	app := setupTestApp(&mockClient{})

	code, _ := doJSON(t, app, "POST", "/pilot/navigate", `{invalid json}`)
	if code != 400 {
		t.Errorf("Expected status 400, got %d", code)
	}
}
