package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "safari_reviews/internal/adapters/redis"
	"safari_reviews/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(redisad.NewClient(mr.Addr(), "", 0))
	ctx := context.Background()

	var miss domain.FeedTable
	if ok, err := c.Get(ctx, "feed:x", &miss); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.FeedTable{Cols: []string{"Name", "Rating"}, Rows: [][]domain.FeedCell{{{V: "Ana"}, {V: 5.0}}}}
	if err := c.Set(ctx, "feed:x", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out domain.FeedTable
	if ok, err := c.Get(ctx, "feed:x", &out); !ok || err != nil {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Cols[1] != "Rating" || out.Rows[0][1].V.(float64) != 5 {
		t.Fatalf("roundtrip: %+v", out)
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := c.Get(ctx, "feed:x", &out); ok {
		t.Fatalf("expected entry to expire")
	}

	_ = c.Set(ctx, "feed:y", in, 60)
	if err := c.Del(ctx, "feed:y"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("feed:y") {
		t.Fatalf("key still present after Del")
	}
}

func TestHistory_AppendLoadOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	h := redisad.NewHistory(redisad.NewClient(mr.Addr(), "", 0), "")
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if err := h.Append(ctx, domain.StoredReview{Rating: 5, Name: name, Text: "Amazing safari, great guides.", Timestamp: 1}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// a corrupt entry written by something else is skipped
	_, _ = mr.Push(redisad.HistoryKey, "{not json")

	got, err := h.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 || got[0].Name != "first" || got[2].Name != "third" {
		t.Fatalf("history order: %+v", got)
	}
}
