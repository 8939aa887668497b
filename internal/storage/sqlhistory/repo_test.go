package sqlhistory_test

import (
	"context"
	"path/filepath"
	"testing"

	"safari_reviews/internal/domain"
	"safari_reviews/internal/storage/sqlhistory"
)

func openSQLite(t *testing.T, path string) *sqlhistory.Repo {
	t.Helper()
	repo, err := sqlhistory.Open(context.Background(), sqlhistory.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepo_SQLite_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	repo := openSQLite(t, path)
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("fresh history: %v, %d entries", err, len(empty))
	}

	entries := []domain.StoredReview{
		{Rating: 5, Name: "Ana", Email: "ana@example.com", Title: "Bwindi", Text: "Gorillas at arm's length!", Timestamp: 1700000000000},
		{Rating: 3, Name: "Bob", Text: "Long drives but worth it.", Timestamp: 0},
	}
	for _, e := range entries {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != entries[0] || got[1] != entries[1] {
		t.Fatalf("history mismatch:\n got %+v\nwant %+v", got, entries)
	}
}

func TestRepo_SQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first := openSQLite(t, path)
	if err := first.Append(context.Background(), domain.StoredReview{Rating: 4, Name: "Cleo", Text: "Lovely boat cruise on Kazinga."}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = first.Close()

	again := openSQLite(t, path)
	got, err := again.Load(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "Cleo" {
		t.Fatalf("reopen: %v %+v", err, got)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := sqlhistory.Open(context.Background(), "postgres", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
