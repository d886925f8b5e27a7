package badge

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Variant selects one of the fixed visual layouts.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantFull    Variant = "full"
	VariantCompact Variant = "compact"
)

// Theme selects the color palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Format selects the output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ErrInvalidOptions marks an unsupported combination of query parameters.
var ErrInvalidOptions = errors.New("invalid badge options")

// Options are the rendering knobs of a badge request. Every field affects
// pixel output, so all of them participate in the entity tag.
type Options struct {
	Variant       Variant `json:"variant"`
	Theme         Theme   `json:"theme"`
	ShowDownloads bool    `json:"showDownloads"`
	ShowVersion   bool    `json:"showVersion"`
	ShowButton    bool    `json:"showButton"`
	ShowPadding   bool    `json:"showPadding"`
	Format        Format  `json:"format"`
	Quality       int     `json:"quality"` // JPEG only; 0 means the renderer default
}

// ParseOptions extracts rendering options from query parameters. Booleans
// follow the embed-friendly convention: showDownloads/showVersion/showButton
// default to true and only the literal "false" disables them, while
// showPadding defaults to false and only the literal "true" enables it.
func ParseOptions(q url.Values) (Options, error) {
	opts := Options{
		Variant:       VariantDefault,
		Theme:         ThemeDark,
		ShowDownloads: q.Get("showDownloads") != "false",
		ShowVersion:   q.Get("showVersion") != "false",
		ShowButton:    q.Get("showButton") != "false",
		ShowPadding:   q.Get("showPadding") == "true",
		Format:        FormatPNG,
	}

	if v := q.Get("variant"); v != "" {
		switch Variant(v) {
		case VariantDefault, VariantFull, VariantCompact:
			opts.Variant = Variant(v)
		default:
			return Options{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidOptions, v)
		}
	}

	if v := q.Get("theme"); v != "" {
		switch Theme(v) {
		case ThemeDark, ThemeLight:
			opts.Theme = Theme(v)
		default:
			return Options{}, fmt.Errorf("%w: unknown theme %q", ErrInvalidOptions, v)
		}
	}

	if v := q.Get("format"); v != "" {
		switch v {
		case "png":
			opts.Format = FormatPNG
		case "jpeg", "jpg":
			opts.Format = FormatJPEG
		default:
			return Options{}, fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, v)
		}
	}

	if v := q.Get("quality"); v != "" {
		quality, err := strconv.Atoi(v)
		if err != nil || quality < 1 || quality > 100 {
			return Options{}, fmt.Errorf("%w: quality must be an integer between 1 and 100", ErrInvalidOptions)
		}
		opts.Quality = quality
	}

	return opts, nil
}
