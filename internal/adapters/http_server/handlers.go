// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"safari_reviews/internal/app"
	"safari_reviews/internal/domain"
	"safari_reviews/internal/i18n"
)

type Handlers struct {
	Board   *app.Board
	Bundle  *i18n.Bundle
	Lang    *i18n.Switcher
	Section domain.SectionConfig
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

type viewRequest struct {
	Filter string `json:"filter"`
	Sort   string `json:"sort"`
}

type languageBody struct {
	Lang      string   `json:"lang"`
	Supported []string `json:"supported,omitempty"`
}

type pageConfig struct {
	ReviewMode    string `json:"reviewMode"`
	ReviewURL     string `json:"reviewUrl,omitempty"`
	ReviewsSource string `json:"reviewsSource,omitempty"`
	FeedEnabled   bool   `json:"feedEnabled"`
	FormEnabled   bool   `json:"formEnabled"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/board", h.getBoard)
		r.Put("/board/view", h.setView)
		r.Post("/reviews", h.submitReview)
		r.Post("/reviews/{index}/toggle", h.toggleReview)
		r.Post("/reviews/{index}/modal", h.openModal)
		r.Delete("/modal", h.dismissModal)
		r.Get("/language", h.getLanguage)
		r.Put("/language", h.setLanguage)
		r.Get("/config", h.getConfig)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func indexParam(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	return n, err == nil && n >= 0
}

func (h *Handlers) getBoard(w http.ResponseWriter, r *http.Request) {
	snap := h.Board.Snapshot()

	etag, body := calcETagAndBody(snap)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", h.Lang.Current())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write board body")
	}
}

func (h *Handlers) setView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decode(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"filter\":..., \"sort\":...}")
		return
	}
	snap := h.Board.SetView(domain.ParseFilter(req.Filter), domain.ParseSort(req.Sort))
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	var d domain.Draft
	if err := decode(w, r, &d); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "malformed review")
		return
	}
	rv, err := h.Board.Submit(r.Context(), d)
	var verr *domain.ValidationError
	switch {
	case err == nil:
		w.Header().Set("Location", "/v1/reviews/"+strconv.Itoa(rv.SourceIndex))
		writeJSON(w, http.StatusCreated, rv)
	case errors.As(err, &verr):
		writeProblemBody(w, problem{
			Type:   "about:blank",
			Title:  "Invalid review",
			Status: http.StatusUnprocessableEntity,
			Errors: verr.Fields,
		})
	case errors.Is(err, domain.ErrRejected):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid review", err.Error())
	default:
		log.Error().Err(err).Msg("submit review failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func (h *Handlers) toggleReview(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "index must be a non-negative integer")
		return
	}
	unit, err := h.Board.Toggle(idx)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "review is not displayed or not clamped")
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

func (h *Handlers) openModal(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid index", "index must be a non-negative integer")
		return
	}
	m, err := h.Board.Open(idx)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "review is not displayed")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handlers) dismissModal(w http.ResponseWriter, r *http.Request) {
	trigger := r.URL.Query().Get("trigger")
	if trigger == "" {
		trigger = app.TriggerClose
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": h.Board.Dismiss(trigger)})
}

func (h *Handlers) getLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languageBody{Lang: h.Lang.Current(), Supported: h.Bundle.Supported()})
}

// setLanguage switches the page language. An empty body lang negotiates
// from Accept-Language.
func (h *Handlers) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageBody
	if err := decode(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"lang\":...}")
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = h.Bundle.Resolve(r.Header.Get("Accept-Language"))
	}
	if err := h.Lang.Set(lang); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Unsupported language", err.Error())
		return
	}
	w.Header().Set("Content-Language", h.Lang.Current())
	writeJSON(w, http.StatusOK, languageBody{Lang: h.Lang.Current()})
}

func (h *Handlers) getConfig(w http.ResponseWriter, r *http.Request) {
	mode := h.Section.ReviewMode
	if mode == "" {
		mode = "onsite"
	}
	writeJSON(w, http.StatusOK, pageConfig{
		ReviewMode:    mode,
		ReviewURL:     h.Section.ReviewURL,
		ReviewsSource: h.Section.ReviewsSource,
		FeedEnabled:   h.Section.FeedEnabled(),
		FormEnabled:   h.Section.FormEnabled(),
	})
}
