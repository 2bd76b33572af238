// Package view renders the client's HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/busticket/client/internal/core/domain"
)

//go:embed templates/*.html
var files embed.FS

const layoutFile = "templates/layout.html"

// backendTime is how the backend formats schedule and booking times.
const backendTime = "2006-01-02 15:04:05"

// Page is the data every template receives.
type Page struct {
	Title   string
	Session domain.Session
	Notice  string
	Error   string
	Data    any
	CSRF    string // echoed back by every form as _csrf
}

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout at construction time.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(files, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(files, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the named page inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"when": func(v string) string {
		t, err := time.ParseInLocation(backendTime, v, time.Local)
		if err != nil {
			return v
		}
		return t.Format("02 Jan 2006, 15:04")
	},
	"inc":     func(i int) int { return i + 1 },
	"genders": func() []string { return domain.Genders },
}
