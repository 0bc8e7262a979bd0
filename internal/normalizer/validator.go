package normalizer

import (
	"errors"
	"strings"

	"feedsync/internal/models"
)

// ErrMissingIdentity is returned when a record has neither a title nor a link.
var ErrMissingIdentity = errors.New("record has neither title nor link")

// Validator handles record validation.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate rejects only records that carry no identity at all. Every other
// missing field is defaulted by the transformer.
func (v *Validator) Validate(rec models.SourceRecord) error {
	if strings.TrimSpace(rec.Title) == "" && strings.TrimSpace(rec.Link) == "" {
		return ErrMissingIdentity
	}

	return nil
}
