// Package browser is the rod-backed session provider: it launches Chromium,
// resolves locators against the live page and performs element gestures.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/executor"
)

// Options configures the launched browser
type Options struct {
	Headless   bool
	Proxy      string // host:port, passed as --proxy-server
	UserAgent  string
	Stealth    bool // open the page through go-rod/stealth
	Width      int
	Height     int
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
	Bin        string // explicit browser binary; looked up when empty
}

// Browser wraps the rod browser and its single page
type Browser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   *zap.Logger
}

var _ executor.Driver = (*Browser)(nil)

// Launch starts a browser and opens a blank page. Any failure is reported
// as action.ErrSessionStart.
func Launch(ctx context.Context, logger *zap.Logger, opts Options) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("browser")

	bin := opts.Bin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}
	l := launcher.New().Context(ctx).Leakless(true).Headless(opts.Headless)
	if bin != "" {
		l = l.Bin(bin)
	}
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launching browser: %v", action.ErrSessionStart, err)
	}

	b := &Browser{launcher: l, logger: logger}
	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: connecting to browser: %v", action.ErrSessionStart, err)
	}

	if opts.Stealth {
		b.page, err = stealth.Page(b.browser)
	} else {
		b.page, err = b.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: opening page: %v", action.ErrSessionStart, err)
	}

	if opts.UserAgent != "" {
		if err := b.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			b.Close()
			return nil, fmt.Errorf("%w: setting user agent: %v", action.ErrSessionStart, err)
		}
	}
	if opts.Width > 0 && opts.Height > 0 {
		if err := b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			logger.Warn("Failed to set viewport.", zap.Error(err))
		}
	}

	logger.Info("Browser started.",
		zap.Bool("headless", opts.Headless),
		zap.Bool("stealth", opts.Stealth),
		zap.String("proxy", opts.Proxy),
		zap.Bool("custom_user_agent", opts.UserAgent != ""),
	)
	return b, nil
}

// Close cleans up browser resources. It is safe to call more than once.
func (b *Browser) Close() {
	if b.page != nil {
		_ = b.page.Close()
		b.page = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			b.logger.Debug("Browser close returned an error.", zap.Error(err))
		}
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
		b.launcher = nil
	}
}

// Page returns the underlying rod page
func (b *Browser) Page() *rod.Page {
	return b.page
}

func (b *Browser) livePage() (*rod.Page, error) {
	if b == nil || b.page == nil {
		return nil, fmt.Errorf("%w: browser is closed", action.ErrSessionUnavailable)
	}
	return b.page, nil
}

// Navigate loads url and waits for the load event
func (b *Browser) Navigate(ctx context.Context, url string) error {
	page, err := b.livePage()
	if err != nil {
		return err
	}
	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return sessionError(err)
	}
	if err := p.WaitLoad(); err != nil {
		return sessionError(err)
	}

	// don't hang on persistent connections
	idleCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	page.Context(idleCtx).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	return nil
}

// Find polls until the locator matches or ctx is done
func (b *Browser) Find(ctx context.Context, loc action.Locator) (executor.Element, error) {
	page, err := b.livePage()
	if err != nil {
		return nil, err
	}
	q, err := loc.Query()
	if err != nil {
		return nil, err
	}

	p := page.Context(ctx)
	var el *rod.Element
	if q.Language == action.XPath {
		el, err = p.ElementX(q.Expr)
	} else {
		el, err = p.Element(q.Expr)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", action.ErrElementNotFound, loc)
		}
		return nil, sessionError(err)
	}
	return &Element{el: el, page: page}, nil
}

// URL returns the current document URL
func (b *Browser) URL(ctx context.Context) (string, error) {
	page, err := b.livePage()
	if err != nil {
		return "", err
	}
	info, err := page.Context(ctx).Info()
	if err != nil {
		return "", sessionError(err)
	}
	return info.URL, nil
}

// Screenshot captures the viewport as PNG
func (b *Browser) Screenshot(ctx context.Context) ([]byte, error) {
	page, err := b.livePage()
	if err != nil {
		return nil, err
	}
	data, err := page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, sessionError(err)
	}
	return data, nil
}

// sessionError marks failures that mean the browser itself went away
func sessionError(err error) error {
	var navErr *rod.NavigationError
	switch {
	case errors.As(err, &navErr):
		return fmt.Errorf("%w: %v", action.ErrExecution, err)
	case isConnectionLost(err):
		return fmt.Errorf("%w: %v", action.ErrSessionUnavailable, err)
	default:
		return err
	}
}

func isConnectionLost(err error) bool {
	msg := err.Error()
	for _, s := range []string{"use of closed network connection", "websocket: close", "target closed", "No target with given id"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
