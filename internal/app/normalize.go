package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"safari_reviews/internal/domain"
)

/********** column registry (single source of truth) **********/

// feedColumns lists, per field, the lowercase fragments a feed header may
// contain. Candidates are tried in order; the first header containing one wins.
var feedColumns = map[string][]string{
	"timestamp": {"timestamp", "date"},
	"name":      {"name"},
	"email":     {"email"},
	"rating":    {"rating", "stars"},
	"title":     {"title", "trip"},
	"text":      {"review", "your review", "message", "comments"},
	"consent":   {"consent"},
}

const filledStar = "★"

var (
	relativeDateRe = regexp.MustCompile(`(?i)(\d+)\s*(days?|weeks?|months?|years?)`)
	gvizDateRe     = regexp.MustCompile(`^Date\((\d+),(\d+),(\d+)(?:,(\d+),(\d+),(\d+))?\)$`)
	leadingIntRe   = regexp.MustCompile(`^\s*(\d+)`)

)

/********** tiny helpers **********/

func millis(t time.Time) int64 { return t.UnixMilli() }

// fingerprint identifies a review by content. Not used for deduplication.
func fingerprint(name string, ts int64, text string) string {
	sum := sha1.Sum([]byte(strings.Join([]string{name, strconv.FormatInt(ts, 10), text}, "|")))
	return hex.EncodeToString(sum[:])
}

// leadingInt parses the integer prefix of s ("4 stars" -> 4), 0 when absent.
func leadingInt(s string) int {
	m := leadingIntRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// cellString renders a feed cell the way a form would show it.
func cellString(c domain.FeedCell) string {
	switch v := c.V.(type) {
	case nil:
		return strings.TrimSpace(c.F)
	case string:
		if v == "" {
			return strings.TrimSpace(c.F)
		}
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func cellRating(c domain.FeedCell) int {
	if f, ok := c.V.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int(f)
	}
	return leadingInt(cellString(c))
}

/********** dates **********/

// parseRelativeDate converts "3 days ago", "2 weeks ago", "1 year ago" into
// epoch millis relative to now. Otherwise the phrase is parsed as an absolute
// date; failing that the result is 0 so the record sorts as oldest.
func parseRelativeDate(phrase string, now time.Time) int64 {
	s := strings.ToLower(strings.TrimSpace(phrase))
	if m := relativeDateRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			now = now.UTC()
			switch {
			case strings.HasPrefix(m[2], "day"):
				return millis(now.AddDate(0, 0, -n))
			case strings.HasPrefix(m[2], "week"):
				return millis(now.AddDate(0, 0, -7*n))
			case strings.HasPrefix(m[2], "month"):
				return millis(now.AddDate(0, -n, 0))
			case strings.HasPrefix(m[2], "year"):
				return millis(now.AddDate(-n, 0, 0))
			}
		}
	}
	if ts, ok := parseAbsoluteDate(phrase); ok {
		return ts
	}
	return 0
}

// parseAbsoluteDate accepts gviz Date(...) literals (zero-based month) and
// anything dateparse understands. Times without a zone are taken as UTC.
func parseAbsoluteDate(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if m := gvizDateRe.FindStringSubmatch(s); m != nil {
		p := make([]int, 6)
		for i := range p {
			if m[i+1] != "" {
				p[i], _ = strconv.Atoi(m[i+1])
			}
		}
		t := time.Date(p[0], time.Month(p[1]+1), p[2], p[3], p[4], p[5], 0, time.UTC)
		return millis(t), true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return 0, false
	}
	return millis(t), true
}

/********** normalizers **********/

// FromMarkup normalizes a card scanned from the host page.
func FromMarkup(c domain.MarkupCard, now time.Time) (domain.Review, error) {
	rating := strings.Count(c.StarsText, filledStar)
	if rating == 0 {
		rating = leadingInt(c.DataRating)
	}
	rv := domain.Review{
		Rating:   rating,
		Name:     strings.TrimSpace(c.Author),
		Title:    strings.TrimSpace(c.Trip),
		Text:     strings.TrimSpace(c.Text),
		DateText: strings.TrimSpace(c.DateText),
		Source:   domain.SourceMarkup,
	}
	rv.Timestamp = parseRelativeDate(rv.DateText, now)
	return finish(rv)
}

// FeedColumns resolves the column index of every known field, -1 when absent.
func FeedColumns(labels []string) map[string]int {
	lower := make([]string, len(labels))
	for i, l := range labels {
		lower[i] = strings.ToLower(l)
	}
	idx := make(map[string]int, len(feedColumns))
	for field, names := range feedColumns {
		idx[field] = -1
	search:
		for _, name := range names {
			for i, l := range lower {
				if strings.Contains(l, name) {
					idx[field] = i
					break search
				}
			}
		}
	}
	return idx
}

// FromFeedRow normalizes one row of the remote feed; cols comes from FeedColumns.
func FromFeedRow(cols map[string]int, row []domain.FeedCell, now time.Time) (domain.Review, error) {
	cell := func(field string) domain.FeedCell {
		i, ok := cols[field]
		if !ok || i < 0 || i >= len(row) {
			return domain.FeedCell{}
		}
		return row[i]
	}
	rv := domain.Review{
		Rating: cellRating(cell("rating")),
		Name:   cellString(cell("name")),
		Email:  cellString(cell("email")),
		Title:  cellString(cell("title")),
		Text:   cellString(cell("text")),
		Source: domain.SourceFeed,
	}
	ts := cell("timestamp")
	switch v := ts.V.(type) {
	case float64:
		rv.Timestamp = int64(v)
	default:
		if parsed, ok := parseAbsoluteDate(cellString(ts)); ok {
			rv.Timestamp = parsed
		} else {
			rv.Timestamp = millis(now)
		}
	}
	return finish(rv)
}

// FromHistory replays a locally saved submission.
func FromHistory(s domain.StoredReview, now time.Time) (domain.Review, error) {
	rv := domain.Review{
		Rating:    s.Rating,
		Name:      strings.TrimSpace(s.Name),
		Email:     strings.TrimSpace(s.Email),
		Title:     strings.TrimSpace(s.Title),
		Text:      strings.TrimSpace(s.Text),
		Timestamp: s.Timestamp,
		Source:    domain.SourceHistory,
	}
	if rv.Timestamp == 0 {
		rv.Timestamp = millis(now)
	}
	return finish(rv)
}

// FromDraft builds the record for a validated submission. Fields are kept
// as typed, only trimmed; escaping is left to whoever renders them.
func FromDraft(d domain.Draft, now time.Time) (domain.Review, error) {
	return finish(domain.Review{
		Rating:    d.Rating,
		Name:      strings.TrimSpace(d.Name),
		Email:     strings.TrimSpace(d.Email),
		Title:     strings.TrimSpace(d.Title),
		Text:      strings.TrimSpace(d.Text),
		Timestamp: millis(now),
		Source:    domain.SourceSubmission,
	})
}

func finish(rv domain.Review) (domain.Review, error) {
	if err := checkRequired(rv); err != nil {
		return domain.Review{}, err
	}
	rv.Fingerprint = fingerprint(rv.Name, rv.Timestamp, rv.Text)
	return rv, nil
}

// checkRequired enforces the ingestion rule shared by every source.
func checkRequired(rv domain.Review) error {
	switch {
	case rv.Rating < 1 || rv.Rating > 5:
		return fmt.Errorf("%w: rating %d out of range", domain.ErrRejected, rv.Rating)
	case rv.Name == "":
		return fmt.Errorf("%w: missing name", domain.ErrRejected)
	case rv.Text == "":
		return fmt.Errorf("%w: missing text", domain.ErrRejected)
	}
	return nil
}
