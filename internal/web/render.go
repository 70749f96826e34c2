package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/errors"
	"github.com/hpungsan/aura/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "sessions", "digest", "sizes"
}

// ListPageData is the template data for the session list page.
type ListPageData struct {
	PageData
	Records []db.Record
	Kind    string
	Tag     string
}

// DetailPageData is the template data for the session detail page.
type DetailPageData struct {
	PageData
	Record   *db.Record
	View     *ops.InspectOutput
	Rendered []RenderedItem
}

// RenderedItem is one entry or section with its payload rendered to HTML.
type RenderedItem struct {
	Name string
	Kind string
	HTML template.HTML
}

// DigestPageData is the template data for the digest page.
type DigestPageData struct {
	PageData
	Digest *ops.DigestOutput
}

// SizesPageData is the template data for the storage report page.
type SizesPageData struct {
	PageData
	Sizes *ops.SizesOutput
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	Code    string
	Message string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer parses the page templates against the shared layout.
func NewRenderer(version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"formatSize": ops.FormatSize,
	}

	pages := map[string]string{
		"list":   listTemplate,
		"detail": detailTemplate,
		"digest": digestTemplate,
		"sizes":  sizesTemplate,
		"error":  errorTemplate,
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, body := range pages {
		t := template.Must(template.New("layout").Funcs(funcMap).Parse(layoutTemplate))
		template.Must(t.Parse(body))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with HTTP 200.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var aErr *errors.AuraError
	if !stderrors.As(err, &aErr) {
		aErr = errors.NewInternal(err)
	}

	status := httpStatus(aErr.Code)

	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    string(aErr.Code),
				"message": aErr.Message,
			},
		})
		return
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		Code:    string(aErr.Code),
		Message: aErr.Message,
	})
}

// httpStatus maps an error code to an HTTP status.
func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrInternal:
		return http.StatusInternalServerError
	default:
		// Decode failures mean the file on disk is unusable.
		return http.StatusUnprocessableEntity
	}
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
