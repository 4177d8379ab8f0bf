package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the shared browser session.
type Options struct {
	ExecutablePath  string // explicit binary, skips discovery
	DownloadBrowser bool   // fetch a managed Chromium build instead of discovery
	Headless        bool
	WindowWidth     int
	WindowHeight    int
	UserAgent       string
	LighthouseBin   string
	ConsoleBuffer   int

	// OnLifecycle, when set, receives a message whenever a browser is
	// launched or replaced after a lost connection.
	OnLifecycle func(message string)
}

// DefaultOptions returns the default session options.
func DefaultOptions() Options {
	return Options{
		Headless:      true,
		WindowWidth:   1280,
		WindowHeight:  800,
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		LighthouseBin: "lighthouse",
		ConsoleBuffer: 250,
	}
}

// ConsoleEntry is one buffered console message from the active page.
type ConsoleEntry struct {
	Level string    `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

var errSessionClosed = errors.New("browser session closed")

// Session owns the single shared browser and its active page. The browser is
// launched lazily on first use and reused across calls; a dead connection is
// discarded and replaced transparently by the next call. All state is guarded
// by one mutex, so concurrent first calls block on the same launch.
type Session struct {
	opts Options

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	wsURL    string
	launches int
	closed   bool

	closeOnce sync.Once

	consoleMu   sync.Mutex
	console     []ConsoleEntry
	stopConsole context.CancelFunc

	// replaced in tests
	launchFn    func() error
	probeFn     func(*rod.Browser) error
	closeFn     func(*rod.Browser) error
	adoptFn     func(*rod.Browser) (*rod.Page, error)
	pageAliveFn func(*rod.Page) bool
}

// New creates a session. No browser is launched until the first primitive
// needs one.
func New(opts Options) *Session {
	if opts.ConsoleBuffer <= 0 {
		opts.ConsoleBuffer = 250
	}
	s := &Session{opts: opts}
	s.launchFn = s.launchBrowser
	s.probeFn = probeBrowser
	s.closeFn = func(b *rod.Browser) error { return b.Close() }
	s.adoptFn = s.adoptPage
	s.pageAliveFn = func(p *rod.Page) bool {
		_, err := p.Info()
		return err == nil
	}
	return s
}

// Browser returns the live shared browser, launching or replacing it as
// needed. A returned browser is scoped to ctx.
func (s *Session) Browser(ctx context.Context) (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.browserLocked()
	if err != nil {
		return nil, err
	}
	return b.Context(ctx), nil
}

// Page returns the active page, resolving it first if it is unset or closed:
// the first existing page in the browser is adopted, else a fresh one is
// created. Primitives must call this per operation rather than caching the
// result, since the page may be replaced between calls.
func (s *Session) Page(ctx context.Context) (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.browserLocked()
	if err != nil {
		return nil, err
	}

	if s.page != nil {
		if s.pageAliveFn(s.page) {
			return s.page.Context(ctx), nil
		}
		s.page = nil
	}

	page, err := s.adoptFn(b)
	if err != nil {
		if !isConnectionError(err) {
			return nil, err
		}

		// The connection died between the liveness probe and page adoption.
		s.discardLocked()
		if err := s.launchFn(); err != nil {
			return nil, err
		}
		s.launches++
		s.lifecycle("browser relaunched after disconnect")

		page, err = s.adoptFn(s.browser)
		if err != nil {
			return nil, err
		}
	}

	s.page = page
	return page.Context(ctx), nil
}

func (s *Session) browserLocked() (*rod.Browser, error) {
	if s.closed {
		return nil, errSessionClosed
	}

	relaunch := false
	if s.browser != nil {
		if err := s.probeFn(s.browser); err == nil {
			return s.browser, nil
		}
		log.Printf("Warning: browser connection lost, relaunching")
		s.discardLocked()
		relaunch = true
	}

	if err := s.launchFn(); err != nil {
		return nil, err
	}
	s.launches++
	if relaunch {
		s.lifecycle("browser relaunched after disconnect")
	} else {
		s.lifecycle("browser started")
	}
	return s.browser, nil
}

func (s *Session) launchBrowser() error {
	var (
		bin string
		err error
	)
	if s.opts.DownloadBrowser {
		bin, err = DownloadBrowser(context.Background())
	} else {
		bin, err = LocateExecutable(s.opts.ExecutablePath)
	}
	if err != nil {
		return err
	}

	l := launcher.New().
		Bin(bin).
		Headless(s.opts.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", s.opts.WindowWidth, s.opts.WindowHeight))

	wsURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return fmt.Errorf("%w: connect: %v", ErrLaunchFailed, err)
	}

	s.launcher = l
	s.browser = b
	s.wsURL = wsURL

	log.Printf("Browser started, endpoint %s", wsURL)
	return nil
}

func probeBrowser(b *rod.Browser) error {
	_, err := proto.BrowserGetVersion{}.Call(b)
	return err
}

func (s *Session) lifecycle(message string) {
	if s.opts.OnLifecycle != nil {
		s.opts.OnLifecycle(message)
	}
}

func (s *Session) adoptPage(b *rod.Browser) (*rod.Page, error) {
	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("%w: list pages: %v", ErrUpstream, err)
	}

	var page *rod.Page
	if len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("%w: create page: %v", ErrUpstream, err)
		}
	}

	if s.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.opts.UserAgent}); err != nil {
			return nil, fmt.Errorf("%w: set user agent: %v", ErrUpstream, err)
		}
	}

	s.watchConsole(page)
	return page, nil
}

func (s *Session) discardLocked() {
	if s.stopConsole != nil {
		s.stopConsole()
		s.stopConsole = nil
	}
	if s.browser != nil {
		if err := s.closeFn(s.browser); err != nil {
			log.Printf("Warning: failed to close browser: %v", err)
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	s.browser = nil
	s.launcher = nil
	s.page = nil
	s.wsURL = ""
}

// watchConsole buffers console messages from the adopted page until it is
// replaced.
func (s *Session) watchConsole(page *rod.Page) {
	if s.stopConsole != nil {
		s.stopConsole()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopConsole = cancel

	watched := page.Context(ctx)
	go watched.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		parts := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			parts = append(parts, formatRemoteObject(arg))
		}
		s.pushConsole(ConsoleEntry{
			Level: string(e.Type),
			Text:  strings.Join(parts, " "),
			At:    time.Now().UTC(),
		})
	})()
}

func formatRemoteObject(o *proto.RuntimeRemoteObject) string {
	if o == nil {
		return ""
	}
	if v := o.Value.Val(); v != nil {
		return fmt.Sprint(v)
	}
	if o.Description != "" {
		return o.Description
	}
	return string(o.Type)
}

func (s *Session) pushConsole(e ConsoleEntry) {
	s.consoleMu.Lock()
	defer s.consoleMu.Unlock()

	if len(s.console) >= s.opts.ConsoleBuffer {
		s.console = s.console[1:]
	}
	s.console = append(s.console, e)
}

// ConsoleLogs returns the buffered console entries and clears the buffer.
func (s *Session) ConsoleLogs() []ConsoleEntry {
	s.consoleMu.Lock()
	defer s.consoleMu.Unlock()

	out := s.console
	s.console = nil
	return out
}

// Endpoint returns the DevTools websocket endpoint of the live browser, or ""
// if none is running.
func (s *Session) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wsURL
}

// Alive reports whether a browser is running and its connection responds.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser != nil && s.probeFn(s.browser) == nil
}

// DebugPort derives the remote-debugging port from the live session endpoint.
func (s *Session) DebugPort() (int, error) {
	s.mu.Lock()
	endpoint := s.wsURL
	s.mu.Unlock()

	if endpoint == "" {
		return 0, fmt.Errorf("no live browser session")
	}
	return debugPortFromEndpoint(endpoint)
}

func debugPortFromEndpoint(endpoint string) (int, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("invalid endpoint %q: %v", endpoint, err)
	}
	port := u.Port()
	if port == "" {
		return 0, fmt.Errorf("endpoint %q carries no port", endpoint)
	}
	return strconv.Atoi(port)
}

// Launches returns how many times a browser has been launched over the
// session's lifetime.
func (s *Session) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches
}

// Close shuts the session down. Safe to call more than once; only the first
// call closes the browser, and failures are logged rather than escalated.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.closed = true
		if s.browser == nil && s.launcher == nil {
			return
		}
		s.discardLocked()
		log.Println("Browser stopped")
	})
}
