package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

const (
	// Version is the current version of Pagepilot
	Version = "0.3.0"
	// AppName is the application name
	AppName = "Pagepilot"

	// ExecutablePathEnv overrides browser executable discovery.
	ExecutablePathEnv = "PAGEPILOT_EXECUTABLE_PATH"
	// PuppeteerPathEnv is honored as a fallback so existing puppeteer
	// setups work without changes.
	PuppeteerPathEnv = "PUPPETEER_EXECUTABLE_PATH"
	// LighthouseBinEnv overrides the lighthouse CLI path.
	LighthouseBinEnv = "PAGEPILOT_LIGHTHOUSE_BIN"
)

// Config holds all configuration options for the Pagepilot server
type Config struct {
	// HTTP transport (optional, stdio MCP is always on)
	WithHTTP bool
	Host     string
	Port     int

	// Browser
	ChromeBin       string // explicit executable path, skips discovery
	DownloadBrowser bool   // download a managed Chromium build instead of discovery
	Headless        bool
	WindowWidth     int
	WindowHeight    int
	UserAgent       string

	// Audit
	LighthouseBin string

	// Events (optional NATS mirror)
	NatsURL string

	// Security (HTTP transport only)
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Flags
	ShowVersion bool
	ShowHelp    bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		WithHTTP:          false,
		Host:              "127.0.0.1",
		Port:              8473,
		ChromeBin:         executableOverride(),
		DownloadBrowser:   false,
		Headless:          true,
		WindowWidth:       1280,
		WindowHeight:      800,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		LighthouseBin:     lighthouseOverride(),
		NatsURL:           "",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		ShowVersion:       false,
		ShowHelp:          false,
	}
}

// executableOverride reads the browser executable override from the environment.
func executableOverride() string {
	if p := os.Getenv(ExecutablePathEnv); p != "" {
		return p
	}
	return os.Getenv(PuppeteerPathEnv)
}

// lighthouseOverride reads the lighthouse CLI override from the environment.
func lighthouseOverride() string {
	if p := os.Getenv(LighthouseBinEnv); p != "" {
		return p
	}
	return "lighthouse"
}

// ParseFlags parses command line flags and returns the config
func ParseFlags() *Config {
	cfg := DefaultConfig()

	// HTTP flags
	flag.BoolVar(&cfg.WithHTTP, "with-http", cfg.WithHTTP, "Expose the tool set over HTTP in addition to stdio")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Host address to bind the HTTP server")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Port number for the HTTP server")

	// Browser flags
	flag.StringVar(&cfg.ChromeBin, "chrome-bin", cfg.ChromeBin, "Path to a Chrome/Chromium/Edge binary (skips discovery)")
	flag.BoolVar(&cfg.DownloadBrowser, "download-browser", cfg.DownloadBrowser, "Download a managed Chromium build instead of discovering one")
	flag.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run the browser headless")
	flag.IntVar(&cfg.WindowWidth, "window-width", cfg.WindowWidth, "Browser window width")
	flag.IntVar(&cfg.WindowHeight, "window-height", cfg.WindowHeight, "Browser window height")
	flag.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User agent applied to pages")

	// Audit flags
	flag.StringVar(&cfg.LighthouseBin, "lighthouse-bin", cfg.LighthouseBin, "Path to the lighthouse CLI")

	// Event flags
	flag.StringVar(&cfg.NatsURL, "nats-url", cfg.NatsURL, "NATS server URL to mirror events to (disabled if empty)")

	// Security flags
	flag.IntVar(&cfg.RateLimitRequests, "rate-limit", cfg.RateLimitRequests, "HTTP rate limit requests per minute")

	// Other flags
	flag.BoolVar(&cfg.ShowVersion, "version", cfg.ShowVersion, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", cfg.ShowHelp, "Show help message")

	flag.Usage = func() {
		PrintHelp()
	}

	flag.Parse()

	// Validate
	if cfg.RateLimitRequests < 1 {
		cfg.RateLimitRequests = 100
	}
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 1280
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 800
	}

	return cfg
}

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("%s v%s\n", AppName, Version)
}

// PrintHelp prints help information
func PrintHelp() {
	fmt.Printf(`%s v%s (browser automation tool server)

Usage:
  ./server [flags]

Tools are always served over stdio (MCP). The HTTP transport is optional.

HTTP:
  --with-http       %v
  --host            %s
  --port            %d

Browser:
  --chrome-bin        explicit browser binary (env %s, %s)
  --download-browser  %v
  --headless          %v
  --window-width      %d
  --window-height     %d
  --user-agent        desktop Chrome UA

Audit:
  --lighthouse-bin  %s (env %s)

Events:
  --nats-url        mirror tool/session events to NATS (disabled if empty)

Security:
  --rate-limit      %d (HTTP requests per minute)

Other:
  --version         show version
  --help            show this help

`, AppName, Version,
		false, "127.0.0.1", 8473,
		ExecutablePathEnv, PuppeteerPathEnv,
		false, true, 1280, 800,
		"lighthouse", LighthouseBinEnv,
		100)
}

// HandleFlags handles version and help flags, exits if needed
func HandleFlags(cfg *Config) {
	if cfg.ShowVersion {
		PrintVersion()
		os.Exit(0)
	}

	if cfg.ShowHelp {
		PrintHelp()
		os.Exit(0)
	}
}
