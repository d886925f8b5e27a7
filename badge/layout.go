package badge

import (
	"math"

	"curseforge-badges/cfwidget"
)

// Fixed canvas sizes per variant.
const (
	DefaultWidth  = 680
	DefaultHeight = 160

	FullWidth        = 900
	FullHeight       = 405
	FullPaddedWidth  = 1200
	FullPaddedHeight = 600

	CompactHeight = 32
)

// Compact layout geometry. Text width is estimated as character count times
// an empirically fixed per-character advance for the 14px face.
const (
	compactFontSize   = 14
	compactCharWidth  = compactFontSize * 0.6
	compactPaddingX   = 12
	compactIconSize   = 24
	compactIconGap    = 8
	compactStatGap    = 16
	compactVersionGap = 24
)

// Dimensions computes the pixel canvas for a badge. version is the display
// version string of the latest file ("" when the project has none).
func Dimensions(p *cfwidget.Project, version string, opts Options) (width, height int) {
	switch opts.Variant {
	case VariantFull:
		if opts.ShowPadding {
			return FullPaddedWidth, FullPaddedHeight
		}
		return FullWidth, FullHeight

	case VariantCompact:
		w := float64(2 * compactPaddingX)
		w += float64(len([]rune(Truncate(p.Title, TitleMaxLen)))) * compactCharWidth
		if p.Thumbnail != "" {
			w += compactIconSize + compactIconGap
		}
		if opts.ShowDownloads {
			w += float64(len(cfwidget.FormatNumber(p.Downloads.Total)))*compactCharWidth + compactStatGap
		}
		if opts.ShowVersion && version != "" {
			w += float64(len([]rune("v"+version)))*compactCharWidth + compactVersionGap
		}
		return int(math.Ceil(w)), CompactHeight

	default:
		return DefaultWidth, DefaultHeight
	}
}
