// Package markup scans the host page for the reviews section: the review
// cards embedded in it and the configuration carried on its data attributes.
package markup

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"safari_reviews/internal/domain"
)

var (
	selSection = cascadia.MustCompile(".tripadvisor-section")
	selCards   = cascadia.MustCompile(".review-cards")
	selCard    = cascadia.MustCompile(".review-card")
	selStars   = cascadia.MustCompile(".stars")
	selText    = cascadia.MustCompile("p")
	selAuthor  = cascadia.MustCompile(".review-author span")
	selTrip    = cascadia.MustCompile(".review-trip span")
	selDate    = cascadia.MustCompile(".review-date")
)

// Page is the result of scanning one host page.
type Page struct {
	Found   bool // reviews section present
	Config  domain.SectionConfig
	Cards   []domain.MarkupCard
	Skipped int // cards without a text paragraph
}

// ScanFile scans the page stored at path.
func ScanFile(path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, fmt.Errorf("markup: open %s: %w", path, err)
	}
	defer f.Close()
	return Scan(f)
}

// Scan parses r as HTML and extracts the reviews section. A page without a
// reviews section is not an error; Found is false.
func Scan(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, fmt.Errorf("markup: parse: %w", err)
	}
	section := selSection.MatchFirst(doc)
	if section == nil {
		return Page{}, nil
	}

	p := Page{Found: true, Config: sectionConfig(section)}
	container := section
	if c := selCards.MatchFirst(section); c != nil {
		container = c
	}
	for _, card := range selCard.MatchAll(container) {
		textEl := selText.MatchFirst(card)
		if textEl == nil {
			p.Skipped++
			continue
		}
		mc := domain.MarkupCard{Text: textContent(textEl)}
		if s := selStars.MatchFirst(card); s != nil {
			mc.StarsText = textContent(s)
			mc.DataRating = attr(s, "data-rating")
		}
		if a := selAuthor.MatchFirst(card); a != nil {
			mc.Author = textContent(a)
		}
		if t := selTrip.MatchFirst(card); t != nil {
			mc.Trip = textContent(t)
		}
		if d := selDate.MatchFirst(card); d != nil {
			mc.DateText = textContent(d)
		}
		p.Cards = append(p.Cards, mc)
	}
	return p, nil
}

func sectionConfig(n *html.Node) domain.SectionConfig {
	return domain.SectionConfig{
		ReviewsSource: strings.ToLower(attr(n, "data-reviews-source")),
		SheetID:       attr(n, "data-gsheet-id"),
		SheetName:     attr(n, "data-gsheet-sheet"),
		ReviewMode:    attr(n, "data-review-mode"),
		ReviewURL:     attr(n, "data-review-url"),
		Form: domain.FormMapping{
			URL:     attr(n, "data-gform-url"),
			Rating:  attr(n, "data-gform-rating"),
			Name:    attr(n, "data-gform-name"),
			Email:   attr(n, "data-gform-email"),
			Title:   attr(n, "data-gform-title"),
			Text:    attr(n, "data-gform-text"),
			Consent: attr(n, "data-gform-consent"),
		},
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// textContent concatenates the text below n with whitespace collapsed.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
