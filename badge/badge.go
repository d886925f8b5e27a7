// Package badge turns project metadata and rendering options into a fully
// resolved badge: geometry, truncated text, theme colors and the entity tag
// used for conditional requests.
package badge

import (
	"strings"

	"curseforge-badges/cfwidget"
)

// Colors is the theme palette applied to a badge.
type Colors struct {
	Background    string
	Background2   string
	Text          string
	SecondaryText string
	Border        string
	Button        string
	ButtonText    string
	Accent        string
}

// Palette returns the color set for a theme.
func Palette(theme Theme) Colors {
	if theme == ThemeLight {
		return Colors{
			Background:    "#ffffff",
			Background2:   "#f9fafb",
			Text:          "#1f2937",
			SecondaryText: "#585858",
			Border:        "#e5e7eb",
			Button:        "#10B981",
			ButtonText:    "#ffffff",
			Accent:        "#EB622B",
		}
	}
	return Colors{
		Background:    "#2D2D2D",
		Background2:   "#16181C",
		Text:          "#ffffff",
		SecondaryText: "#9BA0A4",
		Border:        "#404040",
		Button:        "#10B981",
		ButtonText:    "#ffffff",
		Accent:        "#EB622B",
	}
}

// Badge is a badge ready to draw: all text already truncated and formatted,
// geometry computed, icon resolved to a fetchable URL or data URI.
type Badge struct {
	Options Options
	Colors  Colors
	Width   int
	Height  int

	Title     string
	Author    string
	Downloads string
	Version   string // display version of the latest file, "" when unknown
	Summary   string
	Category  string
	IconURL   string
	Initial   string // first letter of the title, drawn when there is no icon
}

// Build resolves a project plus options into a drawable badge. iconURL is
// the prepared thumbnail location (possibly a data URI after transcoding);
// pass "" for projects without one.
func Build(p *cfwidget.Project, opts Options, iconURL string) *Badge {
	version := ""
	if latest := cfwidget.LatestFile(p); latest != nil {
		version = latest.Version
	}

	titleMax := TitleMaxLen
	authorMax := AuthorMaxLen
	if opts.Variant == VariantFull {
		titleMax = FullTitleMaxLen
		authorMax = FullAuthorMaxLen
	}

	category := p.Type
	if len(p.Categories) > 0 {
		category = p.Categories[0]
	}
	if category == "" {
		category = "mod"
	}

	summary := p.Summary
	if summary == "" {
		summary = p.Description
	}

	initial := ""
	if p.Title != "" {
		initial = string([]rune(p.Title)[:1])
	}

	width, height := Dimensions(p, version, opts)

	return &Badge{
		Options:   opts,
		Colors:    Palette(opts.Theme),
		Width:     width,
		Height:    height,
		Title:     Truncate(p.Title, titleMax),
		Author:    Truncate(p.Owner(), authorMax),
		Downloads: cfwidget.FormatNumber(p.Downloads.Total),
		Version:   version,
		Summary:   Truncate(summary, SummaryMaxLen),
		Category:  strings.ReplaceAll(category, "-", " "),
		IconURL:   iconURL,
		Initial:   initial,
	}
}
