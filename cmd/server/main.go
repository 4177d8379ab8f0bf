package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wirasm/pagepilot/internal/api"
	"github.com/wirasm/pagepilot/internal/browser"
	"github.com/wirasm/pagepilot/internal/bus"
	"github.com/wirasm/pagepilot/internal/config"
	"github.com/wirasm/pagepilot/internal/tools"
)

func main() {
	// Parse CLI flags
	cfg := config.ParseFlags()

	// Handle --version and --help
	config.HandleFlags(cfg)

	// stdout belongs to the stdio transport; everything else goes to stderr.
	log.SetOutput(os.Stderr)
	log.Printf("Starting %s v%s (browser automation tool server)", config.AppName, config.Version)

	// Event fan-out: in-process hub for the websocket endpoint, optional NATS
	// mirror.
	hub := bus.NewHub()
	events, err := bus.NewPublisher(hub, cfg.NatsURL)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	defer events.Close()

	// The browser session is lazy: nothing is launched until the first tool
	// call needs a page. Launches and relaunches surface as session events.
	session := browser.New(browser.Options{
		ExecutablePath:  cfg.ChromeBin,
		DownloadBrowser: cfg.DownloadBrowser,
		Headless:        cfg.Headless,
		WindowWidth:     cfg.WindowWidth,
		WindowHeight:    cfg.WindowHeight,
		UserAgent:       cfg.UserAgent,
		LighthouseBin:   cfg.LighthouseBin,
		OnLifecycle:     events.Session,
	})
	defer session.Close()

	// MCP server over stdio
	mcpServer := server.NewMCPServer(config.AppName, config.Version,
		server.WithToolCapabilities(false),
	)
	tools.Register(mcpServer, tools.NewHandler(session, events))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			log.Printf("Stdio transport stopped: %v", err)
		}
		quit <- syscall.SIGTERM
	}()

	// Optional HTTP transport
	var app *fiber.App
	if cfg.WithHTTP {
		app = fiber.New(fiber.Config{
			AppName:               config.AppName,
			ErrorHandler:          api.ErrorHandler,
			DisableStartupMessage: true,
		})

		app.Use(recover.New())
		app.Use(logger.New(logger.Config{Output: os.Stderr}))
		app.Use(cors.New())

		api.SetupRoutes(app, session, hub, api.RouteConfig{
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateLimitWindow,
		})

		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		go func() {
			log.Printf("HTTP transport listening on %s", addr)
			if err := app.Listen(addr); err != nil {
				log.Printf("HTTP transport stopped: %v", err)
			}
		}()
	}

	events.Session("server started")

	<-quit
	log.Println("Shutting down...")

	events.Session("server stopping")

	if app != nil {
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during HTTP shutdown: %v", err)
		}
	}
	session.Close()
}
