// Package sqlhistory keeps the local history of submitted reviews in a SQL
// table: an on-device SQLite file by default, MySQL when configured.
package sqlhistory

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"safari_reviews/internal/domain"
)

type Repo struct {
	db     *sql.DB
	driver string
}

// Open connects with driver (sqlite3 or mysql), checks the connection and
// creates the table when missing.
func Open(ctx context.Context, driver, dsn string) (*Repo, error) {
	if _, ok := createTableSQL[driver]; !ok {
		return nil, fmt.Errorf("sqlhistory: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlhistory: open: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // single writer
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlhistory: ping: %w", err)
	}
	r := New(db, driver)
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func New(db *sql.DB, driver string) *Repo { return &Repo{db: db, driver: driver} }

func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL[r.driver]); err != nil {
		return fmt.Errorf("sqlhistory: migrate: %w", err)
	}
	return nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Append(ctx context.Context, s domain.StoredReview) error {
	_, err := r.db.ExecContext(ctx, insertReviewSQL,
		s.Rating,
		s.Name,
		s.Email,
		s.Title,
		s.Text,
		s.Timestamp,
	)
	return err
}

func (r *Repo) Load(ctx context.Context) ([]domain.StoredReview, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoredReview
	for rows.Next() {
		var s domain.StoredReview
		if err := rows.Scan(&s.Rating, &s.Name, &s.Email, &s.Title, &s.Text, &s.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
