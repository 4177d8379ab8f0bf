package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register declares every tool on srv and binds it to the handler.
func Register(srv *server.MCPServer, h *Handler) {
	srv.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Navigate the shared browser page to a URL and wait until the DOM is parsed."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL to navigate to, including the protocol"),
		),
	), h.instrument("navigate", h.Navigate))

	srv.AddTool(mcp.NewTool("click",
		mcp.WithDescription("Click the first element matching a CSS selector on the current page."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector of the element to click"),
		),
	), h.instrument("click", h.Click))

	srv.AddTool(mcp.NewTool("fill",
		mcp.WithDescription("Type a value into the first element matching a CSS selector."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector of the input element"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Text to type into the element"),
		),
	), h.instrument("fill", h.Fill))

	srv.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Run JavaScript in the current page. The script is executed as a function body, so return statements are honored. The result is returned JSON-encoded."),
		mcp.WithString("script",
			mcp.Required(),
			mcp.Description("JavaScript source to execute as a function body"),
		),
	), h.instrument("evaluate", h.Evaluate))

	srv.AddTool(mcp.NewTool("inspect",
		mcp.WithDescription("Capture a full accessibility-tree snapshot of the current page as JSON."),
	), h.instrument("inspect", h.Inspect))

	srv.AddTool(mcp.NewTool("take-screenshot",
		mcp.WithDescription("Capture the current page as a PNG image."),
		mcp.WithBoolean("fullPage",
			mcp.Description("Capture the full scrollable page instead of the viewport"),
		),
	), h.instrument("take-screenshot", h.Screenshot))

	srv.AddTool(mcp.NewTool("performance-entries",
		mcp.WithDescription("Read all performance-timeline entries of the current page as JSON. With url, navigates there first and waits for the network to settle; without it the already-loaded page is read without reloading."),
		mcp.WithString("url",
			mcp.Description("Optional absolute URL to navigate to before reading"),
		),
		mcp.WithString("mark",
			mcp.Description("Optional performance mark name to wait for before reading"),
		),
	), h.instrument("performance-entries", h.Performance))

	srv.AddTool(mcp.NewTool("lighthouse-report",
		mcp.WithDescription("Run a Lighthouse audit (performance, accessibility, best practices, SEO, PWA) against the current page or an explicit URL and return category scores."),
		mcp.WithString("url",
			mcp.Description("Optional absolute URL to audit; defaults to the current page"),
		),
	), h.instrument("lighthouse-report", h.Lighthouse))

	srv.AddTool(mcp.NewTool("console-logs",
		mcp.WithDescription("Return the console messages buffered since the last call and clear the buffer."),
	), h.instrument("console-logs", h.ConsoleLogs))
}
