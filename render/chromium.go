package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"curseforge-badges/badge"
	"curseforge-badges/config"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Chromium renders badges by screenshotting their HTML in a headless
// browser. The browser is one process-wide instance, launched lazily and
// relaunched when its context reports a disconnect; every render runs in a
// fresh tab that is closed on all exit paths.
type Chromium struct {
	timeout     time.Duration
	jpegQuality int
	log         *zap.SugaredLogger

	mu            sync.Mutex
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browser       context.Context
	browserCancel context.CancelFunc

	openTabs atomic.Int64

	// run executes chromedp actions; swapped out in tests.
	run func(ctx context.Context, actions ...chromedp.Action) error
}

// NewChromium builds the browser backend. The browser itself is not
// launched until the first render.
func NewChromium(cfg config.Config, log *zap.SugaredLogger) *Chromium {
	return &Chromium{
		timeout:     time.Duration(cfg.RenderTimeoutSeconds) * time.Second,
		jpegQuality: cfg.JPEGQuality,
		log:         log,
		run:         chromedp.Run,
	}
}

// browserContext returns the shared browser context, launching or
// relaunching under the lock so concurrent first requests cannot race two
// browser instances into existence.
func (c *Chromium) browserContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil && c.browser.Err() == nil {
		return c.browser
	}

	if c.browser != nil {
		c.log.Warn("Browser disconnected, relaunching")
		c.teardownLocked()
	}

	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	c.browser, c.browserCancel = chromedp.NewContext(c.allocCtx)
	return c.browser
}

// Render screenshots the badge element in a request-scoped tab.
func (c *Chromium) Render(ctx context.Context, b *badge.Badge) ([]byte, error) {
	html, err := badge.HTML(b)
	if err != nil {
		return nil, err
	}
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	tabCtx, tabCancel := chromedp.NewContext(c.browserContext())
	c.openTabs.Add(1)
	defer func() {
		tabCancel()
		c.openTabs.Add(-1)
	}()

	runCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()
	// Closing the tab if the caller goes away, not just on our own timeout.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var shot []byte
	err = c.run(runCtx,
		chromedp.EmulateViewport(int64(b.Width), int64(b.Height)),
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible("#badge", chromedp.ByID),
		chromedp.Screenshot("#badge", &shot, chromedp.NodeVisible, chromedp.ByID),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	quality := b.Options.Quality
	if quality == 0 {
		quality = c.jpegQuality
	}
	return encodeAs(shot, b.Options.Format, quality)
}

// OpenTabs reports the number of currently open request-scoped tabs.
func (c *Chromium) OpenTabs() int64 {
	return c.openTabs.Load()
}

// Shutdown closes the shared browser. Safe to call more than once.
func (c *Chromium) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

func (c *Chromium) teardownLocked() {
	if c.browserCancel != nil {
		c.browserCancel()
		c.browserCancel = nil
		c.browser = nil
	}
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
		c.allocCtx = nil
	}
}
