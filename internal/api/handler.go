package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wirasm/pagepilot/internal/browser"
)

// Handler handles API requests
type Handler struct {
	client browser.Client
}

// NewHandler creates a new handler
func NewHandler(client browser.Client) *Handler {
	return &Handler{
		client: client,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorHandler is the custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(Response{
		Success: false,
		Error:   err.Error(),
	})
}

// toHTTPError maps primitive failures onto response codes.
func toHTTPError(err error) *fiber.Error {
	switch {
	case errors.Is(err, browser.ErrTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, browser.ErrElementNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, browser.ErrNotFound), errors.Is(err, browser.ErrLaunchFailed):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// HealthCheck returns health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Status returns browser session status
func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"running":  h.client.Alive(),
			"endpoint": h.client.Endpoint(),
		},
	})
}

// NavigateRequest represents a navigate request
type NavigateRequest struct {
	URL string `json:"url"`
}

// Navigate navigates the shared page to a URL
func (h *Handler) Navigate(c *fiber.Ctx) error {
	var req NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.URL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "URL is required")
	}

	msg, err := h.client.Navigate(context.Background(), req.URL)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"message": msg,
			"url":     req.URL,
		},
	})
}

// ClickRequest represents a click request
type ClickRequest struct {
	Selector string `json:"selector"`
}

// Click clicks an element on the shared page
func (h *Handler) Click(c *fiber.Ctx) error {
	var req ClickRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Selector == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Selector is required")
	}

	if err := h.client.Click(context.Background(), req.Selector); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"clicked": true,
		},
	})
}

// FillRequest represents a fill request
type FillRequest struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// Fill types a value into an element on the shared page
func (h *Handler) Fill(c *fiber.Ctx) error {
	var req FillRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Selector == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Selector is required")
	}

	if err := h.client.Fill(context.Background(), req.Selector, req.Value); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"filled": true,
		},
	})
}

// EvaluateRequest represents a script evaluation request
type EvaluateRequest struct {
	Script string `json:"script"`
}

// Evaluate runs a script on the shared page
func (h *Handler) Evaluate(c *fiber.Ctx) error {
	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Script == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Script is required")
	}

	result, err := h.client.Evaluate(context.Background(), req.Script)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"result": json.RawMessage(result),
		},
	})
}

// Inspect returns an accessibility-tree snapshot of the shared page
func (h *Handler) Inspect(c *fiber.Ctx) error {
	snapshot, err := h.client.Inspect(context.Background())
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"snapshot": json.RawMessage(snapshot),
		},
	})
}

// ScreenshotRequest represents a screenshot request
type ScreenshotRequest struct {
	FullPage bool `json:"full_page"`
}

// Screenshot captures the shared page
func (h *Handler) Screenshot(c *fiber.Ctx) error {
	var req ScreenshotRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	shot, err := h.client.Screenshot(context.Background(), req.FullPage)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"screenshot": base64.StdEncoding.EncodeToString(shot),
			"format":     "png",
		},
	})
}

// PerformanceRequest represents a performance-entries request
type PerformanceRequest struct {
	URL  string `json:"url,omitempty"`
	Mark string `json:"mark,omitempty"`
}

// Performance reads the shared page's performance timeline
func (h *Handler) Performance(c *fiber.Ctx) error {
	var req PerformanceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	entries, err := h.client.PerformanceEntries(context.Background(), req.URL, req.Mark)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"entries": json.RawMessage(entries),
		},
	})
}

// LighthouseRequest represents an audit request
type LighthouseRequest struct {
	URL string `json:"url,omitempty"`
}

// Lighthouse audits the shared page (or an explicit URL)
func (h *Handler) Lighthouse(c *fiber.Ctx) error {
	var req LighthouseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	report, err := h.client.Audit(context.Background(), req.URL)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"categories": json.RawMessage(report),
		},
	})
}

// Console returns and clears the buffered console entries
func (h *Handler) Console(c *fiber.Ctx) error {
	entries := h.client.ConsoleLogs()
	if entries == nil {
		entries = []browser.ConsoleEntry{}
	}

	return c.JSON(Response{
		Success: true,
		Data: map[string]interface{}{
			"entries": entries,
		},
	})
}
