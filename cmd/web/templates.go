package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/format"
	"github.com/hocine1592/offlinesteamweb/internal/handlers"
	"github.com/hocine1592/offlinesteamweb/internal/library"
	mw "github.com/hocine1592/offlinesteamweb/internal/middleware"
	"github.com/hocine1592/offlinesteamweb/internal/observability"
)

const pagesDir = "pages"

// templateSet holds the shared fragments plus one clone per page with its
// "content" block bound. In dev mode everything is reparsed on each use.
type templateSet struct {
	fsys  fs.FS
	funcs template.FuncMap
	dev   bool

	parsed *parsedTemplates
}

type parsedTemplates struct {
	root  *template.Template
	pages map[string]*template.Template
}

func newTemplateSet(fsys fs.FS, funcs template.FuncMap, dev bool) (*templateSet, error) {
	ts := &templateSet{fsys: fsys, funcs: funcs, dev: dev}
	p, err := parseTemplates(fsys, funcs)
	if err != nil {
		return nil, err
	}
	ts.parsed = p
	return ts, nil
}

func parseTemplates(fsys fs.FS, funcs template.FuncMap) (*parsedTemplates, error) {
	// Recursively discover all .tmpl files. ParseFS globs don't support **.
	var files, pages []string
	if err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		files = append(files, p)
		if path.Dir(p) == pagesDir {
			pages = append(pages, strings.TrimSuffix(d.Name(), ".tmpl"))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no templates found")
	}
	root, err := template.New("_root").Funcs(funcs).ParseFS(fsys, files...)
	if err != nil {
		return nil, err
	}
	out := &parsedTemplates{root: root, pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		if root.Lookup("page_"+name) == nil {
			return nil, fmt.Errorf("pages/%s.tmpl does not define page_%s", name, name)
		}
		page, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.New("content").Parse(`{{ template "page_` + name + `" . }}`); err != nil {
			return nil, err
		}
		out.pages[name] = page
	}
	return out, nil
}

func (ts *templateSet) current() (*parsedTemplates, error) {
	if ts.dev {
		return parseTemplates(ts.fsys, ts.funcs)
	}
	return ts.parsed, nil
}

// ExecuteTemplate renders a shared template such as a fragment.
func (ts *templateSet) ExecuteTemplate(w io.Writer, name string, data any) error {
	p, err := ts.current()
	if err != nil {
		return err
	}
	return p.root.ExecuteTemplate(w, name, data)
}

// executePage renders page inside the base layout.
func (ts *templateSet) executePage(w io.Writer, page string, data any) error {
	p, err := ts.current()
	if err != nil {
		return err
	}
	t, ok := p.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "base", data)
}

func (s *server) funcMap() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"T": func(lang, key string) string {
			return s.i18n.T(lang, key)
		},
		"FmtPrice":       format.FmtPrice,
		"FmtReleaseDate": format.FmtReleaseDate,
		// JSON-LD payloads come from seo.JSON, which escapes <, > and &.
		"safeJS": func(v string) template.JS { return template.JS(v) },
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, errors.New("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
		"placeholder": func() string { return library.PlaceholderImage },
		"gridURL": func(q catalog.Query) string {
			if enc := library.EncodeQuery(q); enc != "" {
				return "/games/grid?" + enc
			}
			return "/games/grid"
		},
	}
}

// renderPage executes the base layout for page. Output is buffered so a
// template failure becomes a clean 500.
func (s *server) renderPage(w http.ResponseWriter, r *http.Request, page string, data handlers.PageData) {
	var buf bytes.Buffer
	if err := s.tmpl.executePage(&buf, page, data); err != nil {
		s.templateError(w, r, page, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderTemplate executes a named fragment.
func (s *server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.templateError(w, r, name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *server) templateError(w http.ResponseWriter, r *http.Request, name string, err error) {
	observability.FromContext(r.Context()).Error("template render failed",
		zap.String("template", name),
		zap.Error(err),
	)
	lang := mw.Lang(r)
	mw.WriteError(w, r, http.StatusInternalServerError, s.i18nOrDefault(lang, "errors.internal", "Something went wrong"))
}
