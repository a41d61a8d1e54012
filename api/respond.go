package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rpupo63/blogroll/errs"
	"github.com/rs/zerolog"
)

const genericErrorMessage = "Something went wrong on our end. Please try again later."

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006, 3:04 p.m.")
	},
	"isoDate": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}

// pages are parsed once; each one is base.html plus its own file.
type pages map[string]*template.Template

func loadPages() (pages, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	parsed := make(pages, len(names))
	for _, name := range names {
		page := name[len("templates/"):]
		if page == "base.html" {
			continue
		}
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		parsed[page] = t
	}
	return parsed, nil
}

type Responder struct {
	logger zerolog.Logger
	pages  pages
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger: logger}
}

func (r Responder) withPages(p pages) Responder {
	r.pages = p
	return r
}

// Render writes page executed with data. The page is rendered into a buffer
// first so a template error still produces a clean 500.
func (r Responder) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		r.WriteError(w, fmt.Errorf("unknown page %q", page))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		r.WriteError(w, fmt.Errorf("render %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteText writes a plain message, which is how the site answers form
// submissions it cannot accept.
func (r Responder) WriteText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteAtom writes an Atom document with the content type feed readers of
// the old site expect.
func (r Responder) WriteAtom(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().
			Err(err).
			Str("stack", string(debug.Stack())).
			Msg("unexpected error")
		r.WriteText(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	switch {
	case apiErr.StatusCode >= 500:
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	default:
		r.logger.Debug().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request rejected")
	}

	r.WriteText(w, apiErr.StatusCode, apiErr.UserMessage())
}
