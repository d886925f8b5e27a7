package render

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

func newTestChromium(run func(ctx context.Context, actions ...chromedp.Action) error) *Chromium {
	return &Chromium{
		timeout:     time.Second,
		jpegQuality: 90,
		log:         zap.NewNop().Sugar(),
		run:         run,
	}
}

func TestChromiumReleasesTabsOnFailure(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		return errors.New("target crashed")
	})
	defer c.Shutdown()

	b := testBadge(t, url.Values{})
	for i := 0; i < 5; i++ {
		if _, err := c.Render(context.Background(), b); err == nil {
			t.Fatal("expected render to fail")
		}
	}

	if open := c.OpenTabs(); open != 0 {
		t.Errorf("expected all tabs released after failed renders, %d still open", open)
	}
}

func TestChromiumReleasesTabsOnSuccess(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	})
	defer c.Shutdown()

	b := testBadge(t, url.Values{})
	if _, err := c.Render(context.Background(), b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if open := c.OpenTabs(); open != 0 {
		t.Errorf("expected 0 open tabs, got %d", open)
	}
}

func TestChromiumTimeout(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		<-ctx.Done()
		return ctx.Err()
	})
	c.timeout = 20 * time.Millisecond
	defer c.Shutdown()

	_, err := c.Render(context.Background(), testBadge(t, url.Values{}))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if open := c.OpenTabs(); open != 0 {
		t.Errorf("expected tab released after timeout, %d still open", open)
	}
}

func TestChromiumCallerCancellation(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		<-ctx.Done()
		return ctx.Err()
	})
	defer c.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := c.Render(ctx, testBadge(t, url.Values{})); err == nil {
		t.Error("expected an error when the caller goes away")
	}
	if open := c.OpenTabs(); open != 0 {
		t.Errorf("expected tab released after cancellation, %d still open", open)
	}
}

func TestChromiumReuseSingleBrowser(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	})
	defer c.Shutdown()

	first := c.browserContext()
	second := c.browserContext()
	if first != second {
		t.Error("expected the browser context to be reused while healthy")
	}
}

func TestChromiumRelaunchAfterDisconnect(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	})
	defer c.Shutdown()

	first := c.browserContext()

	// Simulate the browser process going away. The real cancel closure must
	// only ever be invoked once (the relaunch path nils it out before any
	// second call), so the teardown during relaunch gets no-ops instead.
	c.mu.Lock()
	cancel := c.browserCancel
	c.browserCancel = func() {}
	c.allocCancel = func() {}
	c.mu.Unlock()
	cancel()
	<-first.Done()

	second := c.browserContext()
	if second == first {
		t.Error("expected a fresh browser context after disconnect")
	}
	if second.Err() != nil {
		t.Errorf("relaunched context is already dead: %v", second.Err())
	}
}

func TestChromiumShutdownIdempotent(t *testing.T) {
	c := newTestChromium(func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	})
	c.browserContext()
	c.Shutdown()
	c.Shutdown()
}
