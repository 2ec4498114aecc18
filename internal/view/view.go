// Package view renders the HTML pages of the portal and the CMS. Templates
// and static assets are embedded in the binary.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded static assets rooted at "static/".
func Static() fs.FS {
	return staticFS
}

// Engine implements fiber.Views over the embedded templates. Each page of
// an app is parsed together with that app's shared files, the ones whose
// name starts with an underscore.
type Engine struct {
	apps  []string
	funcs template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewEngine returns an engine for the named apps ("portal", "cms").
func NewEngine(apps ...string) *Engine {
	return &Engine{
		apps:  apps,
		funcs: Funcs(),
		pages: make(map[string]*template.Template),
	}
}

// AddFunc registers an extra template function. It must be called before Load.
func (e *Engine) AddFunc(name string, fn interface{}) *Engine {
	e.funcs[name] = fn
	return e
}

// Load parses every page template.
func (e *Engine) Load() error {
	pages := make(map[string]*template.Template)

	for _, app := range e.apps {
		dir := "templates/" + app
		shared, err := fs.Glob(templateFS, dir+"/_*.html")
		if err != nil {
			return err
		}
		files, err := fs.Glob(templateFS, dir+"/[^_]*.html")
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("view: no templates for %q", app)
		}

		for _, file := range files {
			set := append(append([]string(nil), shared...), file)
			t, err := template.New(path.Base(file)).Funcs(e.funcs).ParseFS(templateFS, set...)
			if err != nil {
				return fmt.Errorf("view: parse %s: %w", file, err)
			}
			pages[app+"/"+strings.TrimSuffix(path.Base(file), ".html")] = t
		}
	}

	e.mu.Lock()
	e.pages = pages
	e.mu.Unlock()
	return nil
}

// Render executes page name. With a non-empty layout the layout template is
// executed, otherwise only the page's "content" block, which is how list
// fragments are served.
func (e *Engine) Render(out io.Writer, name string, binding interface{}, layout ...string) error {
	e.mu.RLock()
	t, ok := e.pages[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}

	root := "content"
	if len(layout) > 0 && layout[0] != "" {
		root = layout[0]
	}
	return t.ExecuteTemplate(out, root, binding)
}
