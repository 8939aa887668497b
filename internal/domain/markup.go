package domain

// MarkupCard is a review card as found in the host page, before normalization.
type MarkupCard struct {
	StarsText  string // e.g. "★★★★☆"
	DataRating string // data-rating attribute on the stars element
	Text       string
	Author     string
	Trip       string
	DateText   string // "2 weeks ago", "March 2024", ...
}

// SectionConfig is the host page configuration carried on the reviews
// section's data attributes. Empty fields mean "not configured".
type SectionConfig struct {
	ReviewsSource string // data-reviews-source ("google" enables the feed and the form)
	SheetID       string // data-gsheet-id
	SheetName     string // data-gsheet-sheet
	ReviewMode    string // data-review-mode: onsite | external
	ReviewURL     string // data-review-url
	Form          FormMapping
}

// SourceGoogle is the reviews source that enables the remote feed and the
// remote form.
const SourceGoogle = "google"

// FeedEnabled reports whether the remote feed should be fetched.
func (c SectionConfig) FeedEnabled() bool {
	return c.ReviewsSource == SourceGoogle && c.SheetID != ""
}

// FormEnabled reports whether accepted reviews are forwarded to the remote form.
func (c SectionConfig) FormEnabled() bool {
	return c.ReviewsSource == SourceGoogle && c.Form.Complete()
}

// FormMapping names the remote form's target fields (data-gform-*).
type FormMapping struct {
	URL     string
	Rating  string
	Name    string
	Email   string
	Title   string
	Text    string
	Consent string
}

// Complete reports whether the mapping can be used to forward a review.
func (m FormMapping) Complete() bool {
	return m.URL != "" && m.Rating != "" && m.Name != "" && m.Text != ""
}

// FeedTable is the decoded tabular payload of the remote feed.
type FeedTable struct {
	Cols []string     `json:"cols"` // column labels
	Rows [][]FeedCell `json:"rows"`
}

// FeedCell holds a typed value (V) and its formatted rendering (F).
// A nil cell in the payload decodes to the zero FeedCell.
type FeedCell struct {
	V any    `json:"v,omitempty"`
	F string `json:"f,omitempty"`
}
