package domain

import "context"

// HistoryStore is the local history of submitted reviews: read once at
// startup, appended to on each accepted submission.
type HistoryStore interface {
	Load(ctx context.Context) ([]StoredReview, error)
	Append(ctx context.Context, r StoredReview) error
}

// FeedClient fetches the remote tabular feed once.
type FeedClient interface {
	Fetch(ctx context.Context) (FeedTable, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Forwarder sends an accepted review to the remote form endpoint.
// It is a side channel: callers never observe its outcome.
type Forwarder interface {
	Forward(r Review)
}

// Lookup resolves a translation key for the current language.
type Lookup func(key string) string
