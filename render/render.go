// Package render rasterizes badges. Two backends implement the same
// interface: a shared headless Chromium instance screenshotting the badge
// HTML, and an in-process compositor for hosts without a browser. The
// backend is chosen once at startup.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"

	"curseforge-badges/badge"
)

// ErrTimeout means the rendering engine did not produce output in time.
var ErrTimeout = errors.New("render timed out")

// Renderer turns a resolved badge into image bytes in the badge's format.
type Renderer interface {
	Render(ctx context.Context, b *badge.Badge) ([]byte, error)
}

// ContentType returns the MIME type for an output format.
func ContentType(f badge.Format) string {
	if f == badge.FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// encodeAs converts PNG bytes into the requested output format. quality
// applies to JPEG only.
func encodeAs(pngBytes []byte, format badge.Format, quality int) ([]byte, error) {
	if format != badge.FormatJPEG {
		return pngBytes, nil
	}

	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("unable to decode screenshot: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("unable to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Limit bounds the number of simultaneous renders. n <= 0 disables the
// limiter and returns r unchanged.
func Limit(r Renderer, n int) Renderer {
	if n <= 0 {
		return r
	}
	return &limited{r: r, sem: make(chan struct{}, n)}
}

type limited struct {
	r   Renderer
	sem chan struct{}
}

func (l *limited) Render(ctx context.Context, b *badge.Badge) ([]byte, error) {
	select {
	case l.sem <- struct{}{}:
		defer func() { <-l.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return l.r.Render(ctx, b)
}
