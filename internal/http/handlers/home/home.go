// Package home serves the static landing page.
//
// The page body is Markdown embedded in the binary. It is rendered once,
// when the handler is built, so requests only copy bytes.
package home

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/index.md
var indexMarkdown []byte

//go:embed content/layout.html
var layoutHTML string

var layout = template.Must(template.New("layout").Parse(layoutHTML))

type page struct {
	Title   string
	Version string
	Body    template.HTML
}

// Render produces the full HTML page.
func Render(version string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert(indexMarkdown, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err := layout.Execute(&out, page{
		Title:   "Record Service",
		Version: version,
		// goldmark escapes raw HTML unless html.WithUnsafe is set.
		Body: template.HTML(body.String()), //nolint:gosec // trusted, embedded content
	})
	if err != nil {
		return nil, fmt.Errorf("execute layout: %w", err)
	}
	return out.Bytes(), nil
}

// Handler returns a handler serving the rendered page.
func Handler(version string) (http.HandlerFunc, error) {
	html, err := Render(version)
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html) //nolint:errcheck // client went away
	}, nil
}
