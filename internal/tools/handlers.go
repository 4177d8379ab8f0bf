package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wirasm/pagepilot/internal/browser"
	"github.com/wirasm/pagepilot/internal/bus"
)

// Handler binds the browser primitives to MCP tool handlers.
type Handler struct {
	client browser.Client
	events *bus.Publisher
}

// NewHandler creates a new handler
func NewHandler(client browser.Client, events *bus.Publisher) *Handler {
	return &Handler{
		client: client,
		events: events,
	}
}

// instrument records the invocation on the event bus and turns handler
// errors into failed tool responses carrying the message.
func (h *Handler) instrument(name string, fn server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := fn(ctx, req)
		if h.events != nil {
			h.events.ToolCall(name, err, time.Since(start))
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return res, nil
	}
}

// Navigate handles the navigate tool.
func (h *Handler) Navigate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}

	msg, err := h.client.Navigate(ctx, url)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(msg), nil
}

// Click handles the click tool.
func (h *Handler) Click(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return nil, err
	}

	if err := h.client.Click(ctx, selector); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Clicked %q", selector)), nil
}

// Fill handles the fill tool.
func (h *Handler) Fill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("selector")
	if err != nil {
		return nil, err
	}
	value, err := req.RequireString("value")
	if err != nil {
		return nil, err
	}

	if err := h.client.Fill(ctx, selector, value); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Filled %q", selector)), nil
}

// Evaluate handles the evaluate tool.
func (h *Handler) Evaluate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script, err := req.RequireString("script")
	if err != nil {
		return nil, err
	}

	result, err := h.client.Evaluate(ctx, script)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(result), nil
}

// Inspect handles the inspect tool.
func (h *Handler) Inspect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := h.client.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(snapshot), nil
}

// Screenshot handles the take-screenshot tool.
func (h *Handler) Screenshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fullPage := req.GetBool("fullPage", false)

	shot, err := h.client.Screenshot(ctx, fullPage)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(shot)
	return mcp.NewToolResultImage("Screenshot of the current page", encoded, "image/png"), nil
}

// Performance handles the performance-entries tool.
func (h *Handler) Performance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "")
	mark := req.GetString("mark", "")

	entries, err := h.client.PerformanceEntries(ctx, url, mark)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(entries), nil
}

// Lighthouse handles the lighthouse-report tool.
func (h *Handler) Lighthouse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "")

	report, err := h.client.Audit(ctx, url)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(report), nil
}

// ConsoleLogs handles the console-logs tool.
func (h *Handler) ConsoleLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := h.client.ConsoleLogs()
	if entries == nil {
		entries = []browser.ConsoleEntry{}
	}

	out, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode console entries: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
