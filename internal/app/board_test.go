package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"safari_reviews/internal/domain"
	"safari_reviews/internal/events"
)

type fakeHistory struct {
	mu      sync.Mutex
	entries []domain.StoredReview
	loadErr error
}

func (f *fakeHistory) Load(context.Context) ([]domain.StoredReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.StoredReview(nil), f.entries...), f.loadErr
}

func (f *fakeHistory) Append(_ context.Context, r domain.StoredReview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, r)
	return nil
}

type fakeForwarder struct{ got []domain.Review }

func (f *fakeForwarder) Forward(r domain.Review) { f.got = append(f.got, r) }

type fakeFeed struct {
	table domain.FeedTable
	err   error
	calls int
}

func (f *fakeFeed) Fetch(context.Context) (domain.FeedTable, error) {
	f.calls++
	return f.table, f.err
}

func startupCards() []domain.MarkupCard {
	return []domain.MarkupCard{
		{StarsText: "★★★★★", Author: "Sarah", Text: "Gorillas!", DateText: "2 weeks ago"},
		{StarsText: "★★★★☆", Author: "James", Text: "Lions in trees.", DateText: "1 month ago"},
		{StarsText: "", Author: "Broken", Text: "no rating"},
	}
}

func newTestBoard(opts ...BoardOption) *Board {
	opts = append([]BoardOption{WithClock(func() time.Time { return now })}, opts...)
	return NewBoard(lookup(en), opts...)
}

func TestBoard_LoadStartup(t *testing.T) {
	hist := &fakeHistory{entries: []domain.StoredReview{
		{Rating: 3, Name: "Old", Text: "Saved earlier", Timestamp: now.Add(-time.Hour).UnixMilli()},
	}}
	b := newTestBoard(WithHistory(hist))

	if n := b.LoadStartup(context.Background(), startupCards()); n != 3 {
		t.Fatalf("accepted %d, want 3", n)
	}
	snap := b.Snapshot()
	if snap.Total != 3 || len(snap.Units) != 3 {
		t.Fatalf("snapshot: %+v", snap)
	}
	if snap.Units[2].Author != "Old" || snap.Units[2].SourceIndex != 2 {
		t.Fatalf("history must follow markup: %+v", snap.Units[2])
	}
}

func TestBoard_LoadStartup_HistoryUnavailable(t *testing.T) {
	b := newTestBoard(WithHistory(&fakeHistory{loadErr: errors.New("corrupt")}))
	if n := b.LoadStartup(context.Background(), startupCards()); n != 2 {
		t.Fatalf("accepted %d, want 2", n)
	}
}

func TestBoard_IngestFeed_BatchThenRender(t *testing.T) {
	b := newTestBoard()
	b.LoadStartup(context.Background(), startupCards())

	feed := &fakeFeed{table: domain.FeedTable{
		Cols: []string{"Timestamp", "Name", "Rating", "Review"},
		Rows: [][]domain.FeedCell{
			{{V: "Date(2024,4,30)"}, {V: "Wanjiru"}, {V: 5.0}, {V: "Balloon safari."}},
			{{}, {V: "NoText"}, {V: 4.0}, {}},
		},
	}}
	n, err := b.IngestFeed(context.Background(), feed)
	if err != nil || n != 1 {
		t.Fatalf("IngestFeed = %d, %v", n, err)
	}
	snap := b.SetView(domain.FilterFive, domain.SortNewest)
	if len(snap.Units) != 2 || snap.Units[0].Author != "Wanjiru" || snap.Units[1].Author != "Sarah" {
		t.Fatalf("units: %+v", snap.Units)
	}
}

func TestBoard_IngestFeed_FailureLeavesBoard(t *testing.T) {
	b := newTestBoard()
	b.LoadStartup(context.Background(), startupCards())
	before := b.Snapshot()

	feed := &fakeFeed{err: errors.New("timeout")}
	if _, err := b.IngestFeed(context.Background(), feed); err == nil {
		t.Fatalf("expected error")
	}
	if feed.calls != 1 {
		t.Fatalf("fetch attempted %d times, want 1", feed.calls)
	}
	if after := b.Snapshot(); after.Total != before.Total || len(after.Units) != len(before.Units) {
		t.Fatalf("board changed after failed fetch")
	}
}

func TestBoard_Submit(t *testing.T) {
	hist := &fakeHistory{}
	fwd := &fakeForwarder{}
	b := newTestBoard(WithHistory(hist), WithForwarder(fwd), WithView(domain.FilterAll, domain.SortNewest))
	b.LoadStartup(context.Background(), startupCards())

	_, err := b.Submit(context.Background(), domain.Draft{Rating: 4, Name: "Zoe", Text: "Too short.", Consent: true})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["text"] == "" {
		t.Fatalf("expected text validation error, got %v", err)
	}
	if b.Store().Len() != 2 || len(hist.entries) != 0 || len(fwd.got) != 0 {
		t.Fatalf("rejected draft must leave no trace")
	}

	rv, err := b.Submit(context.Background(), domain.Draft{
		Rating: 4, Name: "Zoe", Email: "zoe@example.com", Text: strings.Repeat("b", 25), Consent: true,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rv.SourceIndex != 2 || rv.Timestamp != now.UnixMilli() {
		t.Fatalf("record: %+v", rv)
	}
	snap := b.Snapshot()
	if snap.Units[0].Author != "Zoe" || snap.Units[0].DateLabel != "Just now" {
		t.Fatalf("newest submission should lead: %+v", snap.Units[0])
	}
	if len(hist.entries) != 1 || hist.entries[0].Email != "zoe@example.com" {
		t.Fatalf("history: %+v", hist.entries)
	}
	if len(fwd.got) != 1 || fwd.got[0].Name != "Zoe" {
		t.Fatalf("forwarded: %+v", fwd.got)
	}
}

func TestBoard_SubmitStoresTextAsTyped(t *testing.T) {
	hist := &fakeHistory{}
	b := newTestBoard(WithHistory(hist))

	drafts := []domain.Draft{
		{Rating: 4, Name: "Zoe", Text: "<i></i><i></i><i></i>Nice", Consent: true},
		{Rating: 5, Name: " Kofi ", Text: "  Prices were <a lot> higher than we expected, still great ", Consent: true},
	}
	for i, d := range drafts {
		rv, err := b.Submit(context.Background(), d)
		if err != nil {
			t.Fatalf("draft %d: %v", i, err)
		}
		want := strings.TrimSpace(d.Text)
		if rv.Text != want || rv.Name != strings.TrimSpace(d.Name) || rv.Rating != d.Rating {
			t.Fatalf("draft %d stored as %+v", i, rv)
		}
		if n := utf8.RuneCountInString(rv.Text); n < MinTextLength {
			t.Fatalf("draft %d stored with %d characters", i, n)
		}
		if got, _ := b.Store().Get(rv.SourceIndex); got.Text != want {
			t.Fatalf("draft %d in store: %q", i, got.Text)
		}
		if hist.entries[i].Text != want {
			t.Fatalf("draft %d in history: %q", i, hist.entries[i].Text)
		}
	}
}

func TestBoard_OpenRequiresDisplayed(t *testing.T) {
	b := newTestBoard()
	b.LoadStartup(context.Background(), startupCards())
	b.SetView(domain.FilterFive, domain.SortDefault)

	if _, err := b.Open(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("filtered-out review must not open, got %v", err)
	}
	m, err := b.Open(0)
	if err != nil || m.Author != "Sarah" {
		t.Fatalf("Open: %v %+v", err, m)
	}
	if b.Snapshot().Modal == nil {
		t.Fatalf("snapshot should carry the modal")
	}
	if !b.Dismiss(TriggerClose) || b.Snapshot().Modal != nil {
		t.Fatalf("close should dismiss")
	}
}

func TestBoard_SubscribeRelabels(t *testing.T) {
	table := map[string]string{"read-more": "Read more"}
	b := NewBoard(lookup(table), WithClock(func() time.Time { return now }))
	b.LoadStartup(context.Background(), []domain.MarkupCard{
		{StarsText: "★★★★★", Author: "A", Text: strings.Repeat("w", 260)},
	})
	bus := events.NewBus()
	unsub := b.Subscribe(bus)

	table["read-more"] = "Leer más"
	bus.Publish(events.Event{Type: events.LanguageChanged, Data: events.LanguageChange{Lang: "es"}})
	if got := b.Snapshot().Units[0].Toggle.Label; got != "Leer más" {
		t.Fatalf("label %q", got)
	}

	unsub()
	if bus.Subscribers(events.LanguageChanged) != 0 {
		t.Fatalf("unsubscribe left a handler")
	}
}
