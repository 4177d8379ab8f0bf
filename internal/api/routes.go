package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/wirasm/pagepilot/internal/browser"
	"github.com/wirasm/pagepilot/internal/bus"
	"github.com/wirasm/pagepilot/internal/security"
)

// RouteConfig holds configuration for routes
type RouteConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DefaultRouteConfig returns default route configuration
func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, client browser.Client, hub *bus.Hub, config RouteConfig) {
	handler := NewHandler(client)

	// Health check (simple path, no rate limit)
	app.Get("/health", handler.HealthCheck)

	rateLimiter := security.NewRateLimiter(security.RateLimitConfig{
		RequestsPerWindow: config.RateLimitRequests,
		WindowDuration:    config.RateLimitWindow,
		BurstMax:          20,
	})

	pilot := app.Group("/pilot")
	pilot.Use(security.HeadersMiddleware())
	pilot.Use(security.RateLimitMiddleware(rateLimiter))

	pilot.Get("/status", handler.Status)

	// Interaction primitives
	pilot.Post("/navigate", handler.Navigate)
	pilot.Post("/click", handler.Click)
	pilot.Post("/fill", handler.Fill)
	pilot.Post("/evaluate", handler.Evaluate)
	pilot.Post("/inspect", handler.Inspect)

	// Analysis primitives
	pilot.Post("/screenshot", handler.Screenshot)
	pilot.Post("/performance", handler.Performance)
	pilot.Post("/lighthouse", handler.Lighthouse)
	pilot.Get("/console", handler.Console)

	// WebSocket endpoint for tool/session events
	streamer := NewEventStreamer(hub)
	app.Use("/pilot/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/pilot/ws", websocket.New(streamer.HandleWebSocket))
}
