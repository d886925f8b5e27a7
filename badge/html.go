package badge

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// templateData wraps a Badge for template execution. IconSrc bypasses
// html/template's URL filtering, which would otherwise reject the data URIs
// produced by thumbnail transcoding.
type templateData struct {
	*Badge
	IconSrc template.URL
}

// HTML renders the badge into a self-contained document for the browser
// backend. The root element carries id="badge" and is sized exactly
// Width x Height so an element screenshot captures the full canvas.
func HTML(b *Badge) (string, error) {
	var buf bytes.Buffer
	name := string(b.Options.Variant) + ".html.tmpl"
	data := templateData{Badge: b, IconSrc: template.URL(b.IconURL)}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("unable to render %s badge template: %w", b.Options.Variant, err)
	}
	return buf.String(), nil
}
