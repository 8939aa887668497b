// Package gform forwards accepted reviews to a remote form endpoint.
// Forwarding is fire-and-forget: one attempt, failures are logged and
// counted, never reported to the caller.
package gform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"safari_reviews/internal/adapters/observability"
	"safari_reviews/internal/domain"
)

// ConsentValue is posted in the consent field of every forwarded review.
const ConsentValue = "Yes"

type Forwarder struct {
	m       domain.FormMapping
	hc      *http.Client
	sem     *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
}

// New returns a forwarder for mapping m, or nil when m lacks the URL or one
// of the rating/name/text targets. maxInFlight bounds concurrent posts;
// reviews arriving while saturated are dropped.
func New(m domain.FormMapping, maxInFlight int, timeout time.Duration) *Forwarder {
	if m.URL == "" {
		return nil
	}
	if !m.Complete() {
		log.Warn().Msg("remote form mapping missing required entries (rating, name, text); forwarding disabled")
		return nil
	}
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Forwarder{
		m:       m,
		hc:      &http.Client{Timeout: timeout},
		sem:     semaphore.NewWeighted(int64(maxInFlight)),
		timeout: timeout,
	}
}

// Values builds the form body for r using the field mapping.
func (f *Forwarder) Values(r domain.Review) url.Values {
	v := url.Values{}
	add := func(name, value string) {
		if name == "" {
			return
		}
		v.Set(name, value)
	}
	add(f.m.Rating, strconv.Itoa(r.Rating))
	add(f.m.Name, r.Name)
	add(f.m.Email, r.Email)
	add(f.m.Title, r.Title)
	add(f.m.Text, r.Text)
	add(f.m.Consent, ConsentValue)
	return v
}

// Forward posts r in the background and returns immediately.
func (f *Forwarder) Forward(r domain.Review) {
	if !f.sem.TryAcquire(1) {
		observability.ObserveForward("dropped")
		log.Warn().Int("index", r.SourceIndex).Msg("remote form busy; review not forwarded")
		return
	}
	body := f.Values(r).Encode()
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		if err := f.post(ctx, body); err != nil {
			observability.ObserveForward("failed")
			log.Warn().Err(err).Int("index", r.SourceIndex).Msg("failed to submit review to remote form")
			return
		}
		observability.ObserveForward("sent")
	}()
}

// Wait blocks until every in-flight post has finished.
func (f *Forwarder) Wait() { f.wg.Wait() }

func (f *Forwarder) post(ctx context.Context, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.m.URL, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "safari-reviews/1.0")

	start := time.Now()
	resp, err := f.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("gform", "formResponse", 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	observability.ObserveExternal("gform", "formResponse", resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("remote form status %d", resp.StatusCode)
	}
	return nil
}
