package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"safari_reviews/internal/adapters/observability"
	"safari_reviews/internal/domain"
	"safari_reviews/internal/events"
)

// Snapshot is the rendered state of the board.
type Snapshot struct {
	Filter domain.FilterMode `json:"filter"`
	Sort   domain.SortMode   `json:"sort"`
	Total  int               `json:"total"`
	Units  []DisplayUnit     `json:"units"`
	Modal  *Modal            `json:"modal,omitempty"`
}

// Board wires the review subsystem together: sources feed the store, the
// current filter/sort derive the view, the renderer projects it.
// Every operation runs under one lock, so the board behaves as a single
// execution context even when driven by concurrent HTTP handlers.
type Board struct {
	mu       sync.Mutex
	store    *Store
	renderer *Renderer
	history  domain.HistoryStore
	fwd      domain.Forwarder
	now      func() time.Time

	filter domain.FilterMode
	sort   domain.SortMode
}

type BoardOption func(*Board)

// WithHistory persists accepted submissions and replays them at startup.
func WithHistory(h domain.HistoryStore) BoardOption { return func(b *Board) { b.history = h } }

// WithForwarder forwards accepted submissions to a remote form.
func WithForwarder(f domain.Forwarder) BoardOption { return func(b *Board) { b.fwd = f } }

func WithClock(now func() time.Time) BoardOption { return func(b *Board) { b.now = now } }

// WithView sets the initial filter and sort modes.
func WithView(f domain.FilterMode, s domain.SortMode) BoardOption {
	return func(b *Board) { b.filter, b.sort = f, s }
}

func NewBoard(t domain.Lookup, opts ...BoardOption) *Board {
	b := &Board{
		store:    NewStore(),
		renderer: NewRenderer(t),
		now:      time.Now,
		filter:   domain.FilterAll,
		sort:     domain.SortDefault,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store exposes the underlying store for read access.
func (b *Board) Store() *Store { return b.store }

// ingest offers one normalized record (or its rejection) to the store.
// Callers hold b.mu.
func (b *Board) ingest(source domain.Source, rv domain.Review, nerr error) bool {
	if nerr == nil {
		_, nerr = b.store.Ingest(rv)
	}
	if nerr != nil {
		observability.ObserveIngest(string(source), "rejected")
		log.Warn().Str("source", string(source)).Err(nerr).Msg("review rejected")
		return false
	}
	observability.ObserveIngest(string(source), "accepted")
	return true
}

// render re-derives the view and re-renders it. Callers hold b.mu.
func (b *Board) render() {
	b.renderer.Render(View(b.store.All(), b.filter, b.sort))
}

// LoadStartup ingests the reviews available synchronously at startup
// (embedded markup, then the local history) and renders once.
func (b *Board) LoadStartup(ctx context.Context, cards []domain.MarkupCard) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	accepted := 0
	for _, c := range cards {
		rv, err := FromMarkup(c, now)
		if b.ingest(domain.SourceMarkup, rv, err) {
			accepted++
		}
	}

	if b.history != nil {
		saved, err := b.history.Load(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("local review history unavailable")
		}
		for _, s := range saved {
			rv, err := FromHistory(s, now)
			if b.ingest(domain.SourceHistory, rv, err) {
				accepted++
			}
		}
	}

	b.render()
	log.Info().Int("accepted", accepted).Int("total", b.store.Len()).Msg("startup reviews loaded")
	return accepted
}

// IngestFeed fetches the remote feed once and appends its rows as a batch,
// followed by exactly one re-render. A failed fetch leaves the board as is.
func (b *Board) IngestFeed(ctx context.Context, client domain.FeedClient) (int, error) {
	table, err := client.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrDisabled) {
			log.Warn().Err(err).Msg("failed to load remote reviews feed")
		}
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	cols := FeedColumns(table.Cols)
	accepted := 0
	for _, row := range table.Rows {
		rv, err := FromFeedRow(cols, row, now)
		if b.ingest(domain.SourceFeed, rv, err) {
			accepted++
		}
	}
	b.render()
	log.Info().Int("accepted", accepted).Int("rows", len(table.Rows)).Msg("remote reviews feed loaded")
	return accepted, nil
}

// SetView changes the filter and sort modes and re-renders. Nothing is
// fetched or normalized again.
func (b *Board) SetView(f domain.FilterMode, s domain.SortMode) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter, b.sort = f, s
	b.render()
	return b.snapshot()
}

// Submit validates a draft and, when valid, accepts it: store, local
// history, re-render, and a best-effort forward to the remote form.
func (b *Board) Submit(ctx context.Context, d domain.Draft) (domain.Review, error) {
	if err := Validate(d); err != nil {
		observability.ObserveSubmission("invalid")
		return domain.Review{}, err
	}
	rv, err := FromDraft(d, b.now())
	if err != nil {
		// sanitizing can empty a field that passed validation
		observability.ObserveSubmission("invalid")
		return domain.Review{}, err
	}

	b.mu.Lock()
	stored, err := b.store.Ingest(rv)
	if err != nil {
		b.mu.Unlock()
		observability.ObserveSubmission("error")
		return domain.Review{}, err
	}
	observability.ObserveIngest(string(domain.SourceSubmission), "accepted")
	if b.history != nil {
		if err := b.history.Append(ctx, stored.ToStored()); err != nil {
			log.Warn().Err(err).Int("index", stored.SourceIndex).Msg("failed to save review")
		}
	}
	b.render()
	b.mu.Unlock()

	observability.ObserveSubmission("accepted")
	if b.fwd != nil {
		b.fwd.Forward(stored)
	}
	log.Info().Int("index", stored.SourceIndex).Int("rating", stored.Rating).Msg("review submitted")
	return stored, nil
}

func (b *Board) snapshot() Snapshot {
	return Snapshot{
		Filter: b.filter,
		Sort:   b.sort,
		Total:  b.store.Len(),
		Units:  b.renderer.Units(),
		Modal:  b.renderer.Modal(),
	}
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Toggle flips the read-more state of a displayed review.
func (b *Board) Toggle(sourceIndex int) (DisplayUnit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderer.Toggle(sourceIndex)
}

// Open shows a displayed review in the detail modal.
func (b *Board) Open(sourceIndex int) (Modal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	displayed := false
	for _, u := range b.renderer.units {
		if u.SourceIndex == sourceIndex {
			displayed = true
			break
		}
	}
	if !displayed {
		return Modal{}, domain.ErrNotFound
	}
	rv, err := b.store.Get(sourceIndex)
	if err != nil {
		return Modal{}, err
	}
	return b.renderer.Open(rv), nil
}

// Dismiss closes the modal when trigger is one the modal listens to.
func (b *Board) Dismiss(trigger string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderer.Dismiss(trigger)
}

// Subscribe relabels the rendered controls on every language change.
func (b *Board) Subscribe(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe(events.LanguageChanged, func(events.Event) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.renderer.Relabel()
	})
}
