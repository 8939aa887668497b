package app

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"safari_reviews/internal/domain"
)

// MinTextLength is the minimum trimmed length of a submitted review body.
const MinTextLength = 20

// Validate checks a draft before it is accepted. It returns nil or a
// *domain.ValidationError keyed by the draft's JSON field names.
func Validate(d domain.Draft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Text = strings.TrimSpace(d.Text)

	err := validation.ValidateStruct(&d,
		validation.Field(&d.Rating,
			validation.Required.Error("Please select a rating."),
			validation.Min(1).Error("Please select a rating."),
			validation.Max(5).Error("Please select a rating."),
		),
		validation.Field(&d.Text,
			validation.Required.Error("Please write at least 20 characters."),
			validation.RuneLength(MinTextLength, 0).Error("Please write at least 20 characters."),
		),
		validation.Field(&d.Name, validation.Required.Error("Please enter your name.")),
		validation.Field(&d.Consent, validation.Required.Error("Please confirm consent to publish your review.")),
	)
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err // internal ozzo error, not a field failure
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(verrs))}
	for field, ferr := range verrs {
		out.Fields[field] = ferr.Error()
	}
	return out
}
