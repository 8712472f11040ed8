// Package views renders widget state into HTML fragments pushed to the browser.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"marquee/internal/clients/metadata"
	"marquee/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

type gridData struct {
	Heading string
	Items   []metadata.MediaSummary
}

// Renderer turns widget snapshots into fragments.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parses the widget templates. imageBaseURL is the poster CDN root.
func NewRenderer(imageBaseURL string) (*Renderer, error) {
	tpl, err := template.New("views").Funcs(template.FuncMap{
		"image": func(size, posterPath string) string {
			return metadata.ImageURL(imageBaseURL, size, posterPath)
		},
		"grid": func(heading string, items []metadata.MediaSummary) gridData {
			return gridData{Heading: heading, Items: items}
		},
		"allow":   core.PlayerPermissions.AllowAttr,
		"sandbox": core.PlayerPermissions.SandboxAttr,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

func (r *Renderer) Search(state core.SearchState) (string, error) {
	return r.execute("search", state)
}

func (r *Renderer) Trending(state core.TrendingState) (string, error) {
	return r.execute("trending", state)
}

func (r *Renderer) Player(state core.PlayerState) (string, error) {
	return r.execute("player", state)
}

// Widget renders the current state of one of the session's widgets.
func (r *Renderer) Widget(s *core.Session, w core.Widget) (string, error) {
	switch w {
	case core.WidgetSearch:
		return r.Search(s.Search.Snapshot())
	case core.WidgetTrending:
		return r.Trending(s.Trending.Snapshot())
	case core.WidgetPlayer:
		return r.Player(s.Player.Snapshot())
	}
	return "", fmt.Errorf("unknown widget %q", w)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
