package app

import (
	"strings"
	"testing"

	"safari_reviews/internal/domain"
)

func lookup(table map[string]string) domain.Lookup {
	return func(key string) string {
		if v, ok := table[key]; ok {
			return v
		}
		return key
	}
}

var en = map[string]string{
	"read-more":   "Read more",
	"read-less":   "Read less",
	"full-review": "Full Review",
	"close":       "Close",
	"just-now":    "Just now",
}

func TestRenderer_ClampThreshold(t *testing.T) {
	r := NewRenderer(lookup(en))
	exact := strings.Repeat("é", ClampThreshold)
	over := exact + "!"

	units := r.Render([]domain.Review{
		{SourceIndex: 0, Rating: 5, Name: "A", Text: exact, DateText: "3 days ago"},
		{SourceIndex: 1, Rating: 4, Name: "B", Text: over},
	})
	if units[0].Clamped || units[0].Toggle != nil {
		t.Fatalf("text at threshold must not clamp: %+v", units[0])
	}
	if !units[1].Clamped || units[1].Toggle == nil || units[1].Toggle.Label != "Read more" {
		t.Fatalf("text over threshold must clamp: %+v", units[1])
	}
	if units[0].Stars != "★★★★★" || units[0].DateLabel != "3 days ago" || units[1].DateLabel != "Just now" {
		t.Fatalf("labels: %+v", units)
	}
}

func TestRenderer_ToggleSurvivesRerender(t *testing.T) {
	r := NewRenderer(lookup(en))
	view := []domain.Review{{SourceIndex: 7, Rating: 5, Name: "A", Text: strings.Repeat("x", 300)}}
	r.Render(view)

	u, err := r.Toggle(7)
	if err != nil || u.Clamped || u.Toggle.Label != "Read less" {
		t.Fatalf("toggle: %v %+v", err, u)
	}
	units := r.Render(view)
	if units[0].Clamped || !units[0].Toggle.Expanded {
		t.Fatalf("expanded state lost on re-render: %+v", units[0])
	}
	if _, err := r.Toggle(99); err == nil {
		t.Fatalf("toggle of a unit not displayed should fail")
	}
}

func TestRenderer_RelabelOnLanguageChange(t *testing.T) {
	table := map[string]string{}
	for k, v := range en {
		table[k] = v
	}
	r := NewRenderer(lookup(table))
	rv := domain.Review{SourceIndex: 0, Rating: 4, Name: "A", Text: strings.Repeat("y", 250)}
	dated := domain.Review{SourceIndex: 1, Rating: 5, Name: "B", Text: "Short", DateText: "3 days ago"}
	r.Render([]domain.Review{rv, dated})
	r.Open(rv)

	table["read-more"], table["full-review"], table["close"] = "Lire plus", "Avis complet", "Fermer"
	table["just-now"] = "À l'instant"
	r.Relabel()

	if got := r.Units()[0].Toggle.Label; got != "Lire plus" {
		t.Fatalf("toggle label %q", got)
	}
	if got := r.Units()[0].DateLabel; got != "À l'instant" {
		t.Fatalf("undated unit label %q", got)
	}
	if got := r.Units()[1].DateLabel; got != "3 days ago" {
		t.Fatalf("printed date must not be relabelled, got %q", got)
	}
	if m := r.Modal(); m == nil || m.Title != "Avis complet" || m.CloseLabel != "Fermer" || m.DateLabel != "À l'instant" {
		t.Fatalf("modal: %+v", m)
	}
}

func TestRenderer_ModalDismiss(t *testing.T) {
	r := NewRenderer(lookup(en))
	if r.Dismiss(TriggerEscape) {
		t.Fatalf("nothing to dismiss")
	}
	long := strings.Repeat("z", 400)
	m := r.Open(domain.Review{SourceIndex: 2, Rating: 3, Name: "C", Title: "Kidepo", Text: long})
	if m.Text != long || m.Stars != "★★★" || m.Trip != "Kidepo" {
		t.Fatalf("modal must show the full text: %+v", m)
	}

	for _, ignored := range []string{"content", "tab", ""} {
		if r.Dismiss(ignored) {
			t.Fatalf("trigger %q must not dismiss", ignored)
		}
	}
	if !r.Dismiss(TriggerBackdrop) || r.Modal() != nil {
		t.Fatalf("backdrop should dismiss")
	}
}
