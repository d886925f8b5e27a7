package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"time"

	"curseforge-badges/badge"
	"curseforge-badges/config"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// Native renders badges in-process with a 2D compositor. It trades the
// browser backend's text shaping fidelity for zero external dependencies,
// which makes it the right choice for hosts without a Chromium install.
type Native struct {
	fontPath     string
	fontBoldPath string
	jpegQuality  int
	client       *http.Client
	log          *zap.SugaredLogger
}

// NewNative builds the in-process backend.
func NewNative(cfg config.Config, log *zap.SugaredLogger) *Native {
	return &Native{
		fontPath:     cfg.FontPath,
		fontBoldPath: cfg.FontBoldPath,
		jpegQuality:  cfg.JPEGQuality,
		client:       &http.Client{Timeout: 10 * time.Second},
		log:          log,
	}
}

func (n *Native) Render(ctx context.Context, b *badge.Badge) ([]byte, error) {
	dc := gg.NewContext(b.Width, b.Height)

	var err error
	switch b.Options.Variant {
	case badge.VariantCompact:
		err = n.drawCompact(ctx, dc, b)
	case badge.VariantFull:
		err = n.drawFull(ctx, dc, b)
	default:
		err = n.drawDefault(ctx, dc, b)
	}
	if err != nil {
		return nil, err
	}

	quality := b.Options.Quality
	if quality == 0 {
		quality = n.jpegQuality
	}
	return n.encode(dc.Image(), b.Options.Format, quality)
}

func (n *Native) encode(img image.Image, format badge.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if format == badge.FormatJPEG {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("unable to encode jpeg: %w", err)
		}
	} else {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("unable to encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (n *Native) face(dc *gg.Context, bold bool, size float64) error {
	path := n.fontPath
	if bold {
		path = n.fontBoldPath
	}
	if err := dc.LoadFontFace(path, size); err != nil {
		return fmt.Errorf("unable to load font %s: %w", path, err)
	}
	return nil
}

// icon fetches and scales the badge icon to a square of the given size.
// A failed fetch degrades to no icon rather than failing the render.
func (n *Native) icon(ctx context.Context, url string, size int) image.Image {
	if url == "" {
		return nil
	}
	src, err := fetchImage(ctx, n.client, url)
	if err != nil {
		n.log.Warnw("Failed to load badge icon", "url", url, "error", err)
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// drawCompact mirrors the compact layout estimate: positions advance by the
// same per-character width Dimensions used, so text never overruns the
// computed canvas.
func (n *Native) drawCompact(ctx context.Context, dc *gg.Context, b *badge.Badge) error {
	w, h := float64(b.Width), float64(b.Height)
	const charWidth = 14 * 0.6

	dc.SetHexColor(b.Colors.Background2)
	dc.DrawRoundedRectangle(0, 0, w, h, 8)
	dc.Fill()
	dc.SetHexColor(b.Colors.Border)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(0.5, 0.5, w-1, h-1, 8)
	dc.Stroke()

	x := 12.0
	if img := n.icon(ctx, b.IconURL, 24); img != nil {
		dc.DrawImage(img, int(x), 4)
		x += 24 + 8
	}

	if err := n.face(dc, true, 14); err != nil {
		return err
	}
	dc.SetHexColor(b.Colors.Text)
	dc.DrawStringAnchored(b.Title, x, h/2, 0, 0.35)
	x += float64(len([]rune(b.Title))) * charWidth

	if err := n.face(dc, false, 14); err != nil {
		return err
	}
	dc.SetHexColor(b.Colors.SecondaryText)
	if b.Options.ShowDownloads {
		x += 16
		dc.DrawStringAnchored(b.Downloads, x, h/2, 0, 0.35)
		x += float64(len(b.Downloads)) * charWidth
	}
	if b.Options.ShowVersion && b.Version != "" {
		x += 24
		dc.DrawStringAnchored("v"+b.Version, x, h/2, 0, 0.35)
	}
	return nil
}

func (n *Native) drawDefault(ctx context.Context, dc *gg.Context, b *badge.Badge) error {
	w, h := float64(b.Width), float64(b.Height)

	dc.SetHexColor(b.Colors.Background)
	dc.DrawRoundedRectangle(0, 0, w, h, 8)
	dc.Fill()
	dc.SetHexColor(b.Colors.Border)
	dc.SetLineWidth(3)
	dc.DrawRoundedRectangle(1.5, 1.5, w-3, h-3, 8)
	dc.Stroke()

	// Icon box
	const iconSize = 110
	iconX, iconY := 24.0, (h-iconSize)/2
	if img := n.icon(ctx, b.IconURL, iconSize); img != nil {
		dc.Push()
		dc.DrawRoundedRectangle(iconX, iconY, iconSize, iconSize, 8)
		dc.Clip()
		dc.DrawImage(img, int(iconX), int(iconY))
		dc.ResetClip()
		dc.Pop()
	} else {
		dc.SetHexColor(b.Colors.Accent)
		dc.DrawRoundedRectangle(iconX, iconY, iconSize, iconSize, 8)
		dc.Fill()
		if err := n.face(dc, true, 32); err != nil {
			return err
		}
		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored(b.Initial, iconX+iconSize/2, iconY+iconSize/2, 0.5, 0.35)
	}

	textX := iconX + iconSize + 16
	if err := n.face(dc, true, 36); err != nil {
		return err
	}
	dc.SetHexColor(b.Colors.Text)
	dc.DrawStringAnchored(b.Title, textX, h/2-22, 0, 0.35)

	if err := n.face(dc, false, 28); err != nil {
		return err
	}
	dc.SetHexColor(b.Colors.SecondaryText)
	statX := textX
	if b.Options.ShowDownloads {
		stat := b.Downloads + " downloads"
		dc.DrawStringAnchored(stat, statX, h/2+28, 0, 0.35)
		sw, _ := dc.MeasureString(stat)
		statX += sw + 24
	}
	dc.DrawStringAnchored("by "+b.Author, statX, h/2+28, 0, 0.35)

	// CurseForge mark
	dc.SetHexColor("#F16436")
	dc.DrawRoundedRectangle(w-64, h/2-20, 40, 40, 8)
	dc.Fill()
	if err := n.face(dc, true, 18); err != nil {
		return err
	}
	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored("CF", w-44, h/2, 0.5, 0.35)
	return nil
}

func (n *Native) drawFull(ctx context.Context, dc *gg.Context, b *badge.Badge) error {
	w, h := float64(b.Width), float64(b.Height)

	cardX, cardY, cardW, cardH := 0.0, 0.0, w, h
	if b.Options.ShowPadding {
		dc.SetHexColor("#111214")
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
		cardX, cardY = 48, 48
		cardW, cardH = w-96, h-96
	}

	dc.SetHexColor(b.Colors.Background2)
	dc.DrawRoundedRectangle(cardX, cardY, cardW, cardH, 24)
	dc.Fill()
	dc.SetHexColor(b.Colors.Border)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(cardX+1, cardY+1, cardW-2, cardH-2, 24)
	dc.Stroke()

	const iconSize = 140
	px, py := cardX+40, cardY+56
	if img := n.icon(ctx, b.IconURL, iconSize); img != nil {
		dc.Push()
		dc.DrawRoundedRectangle(px, py, iconSize, iconSize, 16)
		dc.Clip()
		dc.DrawImage(img, int(px), int(py))
		dc.ResetClip()
		dc.Pop()
	} else {
		dc.SetHexColor(b.Colors.Accent)
		dc.DrawRoundedRectangle(px, py, iconSize, iconSize, 16)
		dc.Fill()
		if err := n.face(dc, true, 60); err != nil {
			return err
		}
		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored(b.Initial, px+iconSize/2, py+iconSize/2, 0.5, 0.35)
	}

	headX := px + iconSize + 24
	if err := n.face(dc, true, 48); err != nil {
		return err
	}
	dc.SetHexColor(b.Colors.Text)
	dc.DrawStringAnchored(b.Title, headX, py+45, 0, 0.35)

	if err := n.face(dc, false, 24); err != nil {
		return err
	}
	bylineY := py + 100.0
	dc.SetHexColor(b.Colors.SecondaryText)
	dc.DrawStringAnchored("by ", headX, bylineY, 0, 0.35)
	bw, _ := dc.MeasureString("by ")
	dc.SetHexColor(b.Colors.Accent)
	dc.DrawStringAnchored(b.Author, headX+bw, bylineY, 0, 0.35)
	aw, _ := dc.MeasureString(b.Author)
	dc.SetHexColor(b.Colors.SecondaryText)
	dc.DrawStringAnchored(" • "+b.Category, headX+bw+aw, bylineY, 0, 0.35)

	summaryY := py + iconSize + 24
	dc.DrawStringWrapped(b.Summary, cardX+40, summaryY, 0, 0, cardW-80, 1.6, gg.AlignLeft)

	chipY := summaryY + 80 + 24
	chipX := cardX + 40
	if err := n.face(dc, true, 20); err != nil {
		return err
	}
	if b.Options.ShowDownloads {
		chipX = n.drawChip(dc, b, chipX, chipY, b.Downloads+" downloads")
	}
	if b.Options.ShowVersion && b.Version != "" {
		n.drawChip(dc, b, chipX, chipY, b.Version)
	}

	if b.Options.ShowButton {
		buttonY := chipY + 52 + 24
		dc.SetHexColor(b.Colors.Accent)
		dc.DrawRoundedRectangle(cardX+40, buttonY, cardW-80, 56, 16)
		dc.Fill()
		dc.SetHexColor("#ffffff")
		dc.DrawStringAnchored("View on CurseForge", cardX+cardW/2, buttonY+28, 0.5, 0.35)
	}
	return nil
}

// drawChip draws one stat chip and returns the x position after it.
func (n *Native) drawChip(dc *gg.Context, b *badge.Badge, x, y float64, text string) float64 {
	tw, _ := dc.MeasureString(text)
	chipW := tw + 40
	dc.SetHexColor("#26292e")
	dc.DrawRoundedRectangle(x, y, chipW, 52, 12)
	dc.Fill()
	dc.SetHexColor(b.Colors.Text)
	dc.DrawStringAnchored(text, x+20, y+26, 0, 0.35)
	return x + chipW + 16
}
