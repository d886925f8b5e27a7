package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"curseforge-badges/badge"
	"curseforge-badges/cfwidget"
)

func testBadge(t *testing.T, query url.Values) *badge.Badge {
	t.Helper()
	opts, err := badge.ParseOptions(query)
	if err != nil {
		t.Fatalf("ParseOptions failed: %v", err)
	}
	p := &cfwidget.Project{
		Title:     "Sodium",
		Summary:   "A modern rendering engine for Minecraft.",
		Downloads: cfwidget.Downloads{Total: 5600000},
		Members:   []cfwidget.Member{{Title: "Owner", Username: "jellysquid3"}},
	}
	return badge.Build(p, opts, "")
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestContentType(t *testing.T) {
	if got := ContentType(badge.FormatPNG); got != "image/png" {
		t.Errorf("expected image/png, got %s", got)
	}
	if got := ContentType(badge.FormatJPEG); got != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", got)
	}
}

func TestEncodeAsPassthrough(t *testing.T) {
	src := tinyPNG(t)
	out, err := encodeAs(src, badge.FormatPNG, 90)
	if err != nil {
		t.Fatalf("encodeAs failed: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Error("expected png bytes to pass through unchanged")
	}
}

func TestEncodeAsJPEG(t *testing.T) {
	out, err := encodeAs(tinyPNG(t), badge.FormatJPEG, 90)
	if err != nil {
		t.Fatalf("encodeAs failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("output is not a valid jpeg: %v", err)
	}
}

func TestEncodeAsRejectsGarbage(t *testing.T) {
	if _, err := encodeAs([]byte("not a png"), badge.FormatJPEG, 90); err == nil {
		t.Error("expected an error for invalid screenshot bytes")
	}
}

type countingRenderer struct {
	active  atomic.Int64
	maxSeen atomic.Int64
	block   chan struct{}
}

func (c *countingRenderer) Render(ctx context.Context, b *badge.Badge) ([]byte, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		cur := c.maxSeen.Load()
		if n <= cur || c.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	if c.block != nil {
		<-c.block
	}
	return []byte("img"), nil
}

func TestLimitBoundsConcurrency(t *testing.T) {
	inner := &countingRenderer{block: make(chan struct{})}
	r := Limit(inner, 2)
	b := testBadge(t, url.Values{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Render(context.Background(), b)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(inner.block)
	wg.Wait()

	if max := inner.maxSeen.Load(); max > 2 {
		t.Errorf("expected at most 2 concurrent renders, saw %d", max)
	}
}

func TestLimitHonorsCancellation(t *testing.T) {
	inner := &countingRenderer{block: make(chan struct{})}
	defer close(inner.block)
	r := Limit(inner, 1)
	b := testBadge(t, url.Values{})

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = r.Render(context.Background(), b)
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, b); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled while waiting for a slot, got %v", err)
	}
}

func TestLimitDisabled(t *testing.T) {
	inner := &countingRenderer{}
	if r := Limit(inner, 0); r != inner {
		t.Error("expected Limit(r, 0) to return the renderer unchanged")
	}
}
