// Package view renders the server-side HTML pages, which today is only the
// printable quote. Templates are embedded in the binary.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/pricing"
)

//go:embed templates/*.html
var templatesFS embed.FS

var (
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

// Funcs returns the template helpers. t is bound to lang at execution time.
func Funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"money": func(d decimal.Decimal) string {
			return pricing.FormatMoney(d, pricing.Accounting)
		},
		"percent": pricing.FormatPercent,
		"date": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				return v.Format("02/01/2006")
			case *time.Time:
				if v != nil {
					return v.Format("02/01/2006")
				}
			}
			return ""
		},
		"lines": func(s string) []string {
			if s == "" {
				return nil
			}
			return strings.Split(s, "\n")
		},
		"inc":  func(i int) int { return i + 1 },
		"year": func() int { return time.Now().Year() },
	}
}

// parse builds layout.html + name. Funcs are rebound per request with Funcs(lang).
func parse(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New("layout.html").Funcs(Funcs(i18n.DefaultLang)).
		ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes the named page inside the layout in lang, falling back to
// the default language. The page is buffered so a template error never
// produces a half-written response.
func Render(w http.ResponseWriter, lang, name string, data map[string]any) error {
	base, err := parse(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	if !i18n.Supported(lang) {
		lang = i18n.DefaultLang
	}
	t.Funcs(Funcs(lang))

	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Lang"]; !exists {
		data["Lang"] = lang
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
