package domain

// Source tells which ingestion path produced a record.
type Source string

const (
	SourceMarkup     Source = "markup"
	SourceFeed       Source = "feed"
	SourceHistory    Source = "history"
	SourceSubmission Source = "submission"
)

// Review is the canonical record every source converges to.
type Review struct {
	Rating      int    `json:"rating"`
	Name        string `json:"name"`
	Email       string `json:"-"` // stored, never displayed
	Title       string `json:"title,omitempty"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"` // epoch milliseconds
	SourceIndex int    `json:"sourceIndex"`

	Source      Source `json:"source"`
	DateText    string `json:"dateText,omitempty"` // date phrase as printed in markup
	Fingerprint string `json:"fingerprint"`        // sha1(name|timestamp|text)
}

// StoredReview is one entry of the local history. Field names match the
// entries the site script kept under the "userReviews" key.
type StoredReview struct {
	Rating    int    `json:"rating"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Draft is what a visitor typed into the review form.
type Draft struct {
	Rating  int    `json:"rating"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Consent bool   `json:"consent"`
}

// ToStored converts an accepted record into its history entry.
func (r Review) ToStored() StoredReview {
	return StoredReview{
		Rating:    r.Rating,
		Name:      r.Name,
		Email:     r.Email,
		Title:     r.Title,
		Text:      r.Text,
		Timestamp: r.Timestamp,
	}
}
