// Package site serves the embedded voting page.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/okian/langvote/internal/domain/model"
)

// Error constants
var (
	ErrRender = errors.New("voting page render failed")
)

//go:embed static/index.html
var pageFS embed.FS

// assetFS holds only the files served under /assets/.
//
//go:embed static/app.js static/style.css
var assetFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "static/index.html"))

type pageData struct {
	APIBase   string
	Languages []model.LanguageOption
}

// Register attaches the voting page at / and its assets under /assets/.
// apiBase is the path prefix of the submissions and results routes.
func Register(_ context.Context, mux *http.ServeMux, apiBase string) error {
	if mux == nil {
		panic("mux is nil")
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{APIBase: apiBase, Languages: model.Languages}); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	page := buf.Bytes()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
	files := http.StripPrefix("/assets/", http.FileServer(assets()))
	mux.HandleFunc("/assets/", func(w http.ResponseWriter, r *http.Request) {
		// no directory listings
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
	return nil
}

func assets() http.FileSystem {
	sub, err := fs.Sub(assetFS, "static")
	if err != nil {
		return http.FS(assetFS)
	}
	return http.FS(sub)
}
