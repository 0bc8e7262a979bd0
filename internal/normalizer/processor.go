// Package normalizer converts raw upstream items into canonical records.
package normalizer

import (
	"fmt"

	"feedsync/internal/config"
	"feedsync/internal/models"
)

// Processor handles record validation and transformation.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor(cfg config.NormalizerConfig) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(cfg),
	}
}

// Process transforms a raw record into its canonical form. The only error
// is a validation failure wrapping ErrMissingIdentity.
func (p *Processor) Process(rec models.SourceRecord) (models.CanonicalRecord, error) {
	// 1. Validate the input record
	if err := p.validator.Validate(rec); err != nil {
		return models.CanonicalRecord{}, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Transform the record
	return p.transformer.Transform(rec), nil
}
