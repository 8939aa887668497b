// internal/adapters/gsheet/client.go
package gsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"safari_reviews/internal/adapters/observability"
	"safari_reviews/internal/domain"
)

const (
	DefaultBase  = "https://docs.google.com/spreadsheets/d"
	DefaultSheet = "Form Responses 1"

	maxBody = 4 << 20
)

var ErrBadPayload = errors.New("gsheet: invalid gviz response")

// Client fetches a spreadsheet through the gviz query endpoint.
// One attempt per Fetch: a failed fetch is reported, never retried.
type Client struct {
	base    string
	sheetID string
	sheet   string
	hc      *http.Client
	rl      *rate.Limiter
	cache   domain.Cache
	ttl     time.Duration
}

type Option func(*Client)

// WithCache keeps the decoded table in cache for ttl, so restarts within
// ttl do not hit the spreadsheet again.
func WithCache(c domain.Cache, ttl time.Duration) Option {
	return func(cl *Client) { cl.cache, cl.ttl = c, ttl }
}

func WithHTTPClient(hc *http.Client) Option { return func(cl *Client) { cl.hc = hc } }

// New returns a client for the given sheet. An empty sheetID yields a client
// whose Fetch reports domain.ErrDisabled.
func New(base, sheetID, sheet string, rps int, opts ...Option) *Client {
	if base == "" {
		base = DefaultBase
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		sheetID: sheetID,
		sheet:   sheet,
		hc:      &http.Client{Timeout: 20 * time.Second},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string {
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:json&sheet=%s", c.base, url.PathEscape(c.sheetID), url.QueryEscape(c.sheet))
}

func (c *Client) cacheKey() string { return "feed:" + c.sheetID + ":" + c.sheet }

// Fetch returns the feed table, from cache when available.
func (c *Client) Fetch(ctx context.Context) (domain.FeedTable, error) {
	if c.sheetID == "" {
		return domain.FeedTable{}, domain.ErrDisabled
	}
	var out domain.FeedTable
	if c.cache != nil {
		if ok, err := c.cache.Get(ctx, c.cacheKey(), &out); ok && err == nil {
			return out, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("feed cache read failed")
		}
	}

	out, err := c.fetch(ctx)
	if err != nil {
		return domain.FeedTable{}, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, c.cacheKey(), out, int(c.ttl.Seconds())); err != nil {
			log.Warn().Err(err).Msg("feed cache write failed")
		}
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context) (domain.FeedTable, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.FeedTable{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return domain.FeedTable{}, err
	}
	req.Header.Set("Accept", "application/json, text/javascript")
	req.Header.Set("User-Agent", "safari-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("gsheet", "gviz", 0, time.Since(start))
		return domain.FeedTable{}, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("gsheet", "gviz", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.FeedTable{}, fmt.Errorf("gsheet: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.FeedTable{}, err
	}
	return Decode(body)
}

/********** gviz wire format **********/

type gvizResponse struct {
	Status string `json:"status"`
	Table  struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"cols"`
		Rows []struct {
			C []*domain.FeedCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

// Decode unwraps a gviz response ("...setResponse({...});") into a table.
// Null cells become zero cells so row positions stay aligned with columns.
func Decode(body []byte) (domain.FeedTable, error) {
	start := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if start == -1 || end == -1 || end <= start {
		return domain.FeedTable{}, ErrBadPayload
	}
	var g gvizResponse
	if err := json.Unmarshal(body[start+1:end], &g); err != nil {
		return domain.FeedTable{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if g.Status == "error" {
		return domain.FeedTable{}, fmt.Errorf("%w: status error", ErrBadPayload)
	}

	out := domain.FeedTable{Cols: make([]string, len(g.Table.Cols))}
	for i, col := range g.Table.Cols {
		out.Cols[i] = col.Label
	}
	out.Rows = make([][]domain.FeedCell, 0, len(g.Table.Rows))
	for _, r := range g.Table.Rows {
		row := make([]domain.FeedCell, len(r.C))
		for i, cell := range r.C {
			if cell != nil {
				row[i] = *cell
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
