package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"safari_reviews/internal/domain"
)

// ClampThreshold is the body length (in characters) above which a unit is
// clamped behind a read-more toggle.
const ClampThreshold = 200

// Dismiss triggers accepted by an open modal.
const (
	TriggerEscape   = "escape"
	TriggerBackdrop = "backdrop"
	TriggerClose    = "close"
)

type Toggle struct {
	Label    string `json:"label"`
	Expanded bool   `json:"expanded"`
}

// DisplayUnit is one rendered review card.
type DisplayUnit struct {
	SourceIndex int     `json:"sourceIndex"`
	Rating      int     `json:"rating"`
	Stars       string  `json:"stars"`
	Author      string  `json:"author"`
	Trip        string  `json:"trip,omitempty"`
	Text        string  `json:"text"`
	DateLabel   string  `json:"date"`
	Clamped     bool    `json:"clamped"`
	Toggle      *Toggle `json:"toggle,omitempty"`
}

// Modal is the full, unclamped detail view of one review.
type Modal struct {
	SourceIndex int    `json:"sourceIndex"`
	Title       string `json:"title"`
	Stars       string `json:"stars"`
	DateLabel   string `json:"date"`
	Text        string `json:"text"`
	Author      string `json:"author,omitempty"`
	Trip        string `json:"trip,omitempty"`
	CloseLabel  string `json:"closeLabel"`
}

// Renderer projects a view into display units. It owns the clamp state of
// every unit and the currently open modal; nothing else.
type Renderer struct {
	t        domain.Lookup
	expanded map[int]bool
	justNow  map[int]bool // units whose date label comes from the lookup
	units    []DisplayUnit
	modal    *Modal
}

func NewRenderer(t domain.Lookup) *Renderer {
	if t == nil {
		t = func(key string) string { return key }
	}
	return &Renderer{t: t, expanded: map[int]bool{}, justNow: map[int]bool{}}
}

func stars(n int) string { return strings.Repeat(filledStar, n) }

func needsClamp(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > ClampThreshold
}

func (r *Renderer) dateLabel(rv domain.Review) string {
	if rv.DateText != "" {
		return rv.DateText
	}
	return r.t("just-now")
}

func (r *Renderer) toggleLabel(expanded bool) string {
	if expanded {
		return r.t("read-less")
	}
	return r.t("read-more")
}

// Render replaces the current units with one unit per record of view.
func (r *Renderer) Render(view []domain.Review) []DisplayUnit {
	units := make([]DisplayUnit, 0, len(view))
	for _, rv := range view {
		if rv.DateText == "" {
			r.justNow[rv.SourceIndex] = true
		}
		u := DisplayUnit{
			SourceIndex: rv.SourceIndex,
			Rating:      rv.Rating,
			Stars:       stars(rv.Rating),
			Author:      rv.Name,
			Trip:        rv.Title,
			Text:        rv.Text,
			DateLabel:   r.dateLabel(rv),
		}
		if needsClamp(rv.Text) {
			exp := r.expanded[rv.SourceIndex]
			u.Clamped = !exp
			u.Toggle = &Toggle{Label: r.toggleLabel(exp), Expanded: exp}
		}
		units = append(units, u)
	}
	r.units = units
	return r.Units()
}

// Units returns a copy of the last rendered units.
func (r *Renderer) Units() []DisplayUnit {
	out := make([]DisplayUnit, len(r.units))
	for i, u := range r.units {
		if u.Toggle != nil {
			t := *u.Toggle
			u.Toggle = &t
		}
		out[i] = u
	}
	return out
}

// Toggle flips the clamp state of a rendered unit that has a toggle control.
func (r *Renderer) Toggle(sourceIndex int) (DisplayUnit, error) {
	for i := range r.units {
		u := &r.units[i]
		if u.SourceIndex != sourceIndex {
			continue
		}
		if u.Toggle == nil {
			return DisplayUnit{}, fmt.Errorf("review %d has no read-more control: %w", sourceIndex, domain.ErrNotFound)
		}
		exp := !r.expanded[sourceIndex]
		r.expanded[sourceIndex] = exp
		u.Clamped = !exp
		u.Toggle = &Toggle{Label: r.toggleLabel(exp), Expanded: exp}
		return *u, nil
	}
	return DisplayUnit{}, fmt.Errorf("review %d is not displayed: %w", sourceIndex, domain.ErrNotFound)
}

// Relabel re-fetches every translated label after a language change,
// including "just now" dates.
// Clamp state and ordering are left untouched.
func (r *Renderer) Relabel() {
	for i := range r.units {
		u := &r.units[i]
		if u.Toggle != nil {
			u.Toggle = &Toggle{Label: r.toggleLabel(u.Toggle.Expanded), Expanded: u.Toggle.Expanded}
		}
		if r.justNow[u.SourceIndex] {
			u.DateLabel = r.t("just-now")
		}
	}
	if r.modal != nil {
		r.modal.Title = r.t("full-review")
		r.modal.CloseLabel = r.t("close")
		if r.justNow[r.modal.SourceIndex] {
			r.modal.DateLabel = r.t("just-now")
		}
	}
}

// Open shows the full record in a modal, replacing any open modal.
func (r *Renderer) Open(rv domain.Review) Modal {
	if rv.DateText == "" {
		r.justNow[rv.SourceIndex] = true
	}
	m := Modal{
		SourceIndex: rv.SourceIndex,
		Title:       r.t("full-review"),
		Stars:       stars(rv.Rating),
		DateLabel:   r.dateLabel(rv),
		Text:        strings.TrimSpace(rv.Text),
		Author:      rv.Name,
		Trip:        rv.Title,
		CloseLabel:  r.t("close"),
	}
	r.modal = &m
	return m
}

// Dismiss closes the modal for Escape, a backdrop click or the close
// control. Other triggers (clicks inside the content, other keys) are ignored.
func (r *Renderer) Dismiss(trigger string) bool {
	if r.modal == nil {
		return false
	}
	switch strings.ToLower(trigger) {
	case TriggerEscape, TriggerBackdrop, TriggerClose:
		r.modal = nil
		return true
	default:
		return false
	}
}

// Modal returns the open modal, if any.
func (r *Renderer) Modal() *Modal {
	if r.modal == nil {
		return nil
	}
	m := *r.modal
	return &m
}
