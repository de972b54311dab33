package main

import (
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/johnqtcg/pr2md/internal/converter"
	gh "github.com/johnqtcg/pr2md/internal/github"
	"github.com/johnqtcg/pr2md/internal/logging"
	"github.com/johnqtcg/pr2md/internal/parser"
	webassets "github.com/johnqtcg/pr2md/web"
)

type webDeps struct {
	parser  parser.URLParser
	fetcher gh.Fetcher
	tmpl    *template.Template
	logger  *slog.Logger
}

type webHandler struct {
	parser  parser.URLParser
	fetcher gh.Fetcher
	tmpl    *template.Template
	logger  *slog.Logger
}

type indexView struct {
	Ref      string
	Markdown string
	Error    string
}

func newWebHandler(deps webDeps) http.Handler {
	tmpl := deps.tmpl
	if tmpl == nil {
		tmpl = template.Must(template.New("index").Parse(defaultIndexTemplate))
	}

	handler := &webHandler{
		parser:  deps.parser,
		fetcher: deps.fetcher,
		tmpl:    tmpl,
		logger:  logging.OrDiscard(deps.logger),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if static, err := fs.Sub(webassets.FS, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}
	r.Get("/", handler.handleIndex)
	r.Post("/convert", handler.handleConvert)
	r.Get("/api/pulls", handler.handlePullJSON)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte("ok")); err != nil {
			return
		}
	})

	return r
}

func (h *webHandler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	h.renderIndex(w, http.StatusOK, indexView{})
}

// handleConvert renders one pull request as markdown. Browsers get the page back with the
// document inlined. Images keep their remote URLs.
func (h *webHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	reference := r.FormValue("ref")
	data, status, err := h.load(r, reference, formBool(r.FormValue("include_reviews"), true))
	if wantsHTML(r) {
		view := indexView{Ref: reference}
		if err != nil {
			view.Error = err.Error()
		} else {
			view.Markdown = string(converter.RenderMarkdown(data))
		}
		h.renderIndex(w, status, view)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if _, err := w.Write(converter.RenderMarkdown(data)); err != nil {
		h.logger.Warn("write response failed", "error", err)
	}
}

// handlePullJSON returns the JSON projection for ?ref=. include_reviews=false skips reviews.
func (h *webHandler) handlePullJSON(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	data, status, err := h.load(r, query.Get("ref"), formBool(query.Get("include_reviews"), true))
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	doc, err := converter.RenderJSON(data, nil)
	if err != nil {
		http.Error(w, "render json failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := w.Write(doc); err != nil {
		h.logger.Warn("write response failed", "error", err)
	}
}

func (h *webHandler) load(r *http.Request, reference string, includeReviews bool) (*gh.PRData, int, error) {
	if reference == "" {
		return nil, http.StatusBadRequest, errors.New("missing ref")
	}

	ref, err := h.parser.Parse(reference)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid pull request reference")
	}

	data, err := h.fetcher.Fetch(r.Context(), ref, gh.FetchOptions{IncludeReviews: includeReviews})
	if err != nil {
		status := fetchHTTPStatusFromError(err)
		h.logger.Warn("load pull request failed", "ref", ref.String(), "status", status, "error", err)
		return nil, status, errors.New(http.StatusText(status) + ": load pull request failed")
	}
	return data, http.StatusOK, nil
}

func (h *webHandler) renderIndex(w http.ResponseWriter, status int, view indexView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.Execute(w, view); err != nil {
		h.logger.Warn("render template failed", "error", err)
	}
}

func fetchHTTPStatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, gh.ErrNotFound):
		return http.StatusNotFound
	case gh.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case errors.Is(err, gh.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, gh.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func formBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
