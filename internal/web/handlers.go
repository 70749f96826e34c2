package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strconv"

	"github.com/hpungsan/aura/internal/config"
	"github.com/hpungsan/aura/internal/db"
	"github.com/hpungsan/aura/internal/ops"
)

// Handlers contains HTTP route handlers for the session viewer.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /sessions — catalog listing with filters.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	tag := r.URL.Query().Get("tag")

	result, err := ops.List(h.db, ops.ListInput{
		Kind:   kind,
		Tag:    tag,
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Sessions",
			Version: h.renderer.version,
			Nav:     "sessions",
		},
		Records: result.Records,
		Kind:    kind,
		Tag:     tag,
	})
}

// HandleDetail handles GET /sessions/{id} — decoded session view.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := db.GetByID(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	view, err := ops.Inspect(rec.Path)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   rec.Title,
			Version: h.renderer.version,
			Nav:     "sessions",
		},
		Record:   rec,
		View:     view,
		Rendered: renderItems(view),
	})
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := ops.Delete(h.db, id); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// HandleDigest handles GET /digest — deduplicated memory digest.
func (h *Handlers) HandleDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := ops.Digest(h.db, h.cfg, parseIntParam(r, "max_tablets", 0))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "digest", DigestPageData{
		PageData: PageData{
			Title:   "Memory digest",
			Version: h.renderer.version,
			Nav:     "digest",
		},
		Digest: digest,
	})
}

// HandleSizes handles GET /sizes — storage usage report.
func (h *Handlers) HandleSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := ops.Sizes(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "sizes", SizesPageData{
		PageData: PageData{
			Title:   "Storage",
			Version: h.renderer.version,
			Nav:     "sizes",
		},
		Sizes: sizes,
	})
}

// renderItems renders session contents for the detail page. Tablet notes
// and capsule text payloads are treated as markdown; everything else is
// escaped verbatim.
func renderItems(view *ops.InspectOutput) []RenderedItem {
	var items []RenderedItem
	for _, e := range view.Entries {
		body := "```\n" + e.Diff + "\n```"
		if e.Notes != "" {
			body += "\n\n" + e.Notes
		}
		items = append(items, RenderedItem{
			Name: e.Path,
			Kind: "entry",
			HTML: renderMarkdown(body),
		})
	}
	for _, s := range view.Sections {
		var html template.HTML
		switch s.Kind {
		case "TEXT":
			html = renderMarkdown(s.Payload)
		default:
			html = template.HTML("<pre>" + template.HTMLEscapeString(s.Payload) + "</pre>")
		}
		items = append(items, RenderedItem{
			Name: s.Name,
			Kind: s.Kind,
			HTML: html,
		})
	}
	return items
}

// parseIntParam reads an integer query parameter with a fallback.
func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
