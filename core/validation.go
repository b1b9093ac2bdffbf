package core

import "fmt"

// KnownGranularity reports whether g is one of the supported granularities.
func KnownGranularity(g Granularity) bool {
	switch g {
	case GranularitySummary, GranularitySection, GranularityMicroblock:
		return true
	}
	return false
}

// ValidateChunk validates a Chunk before it enters the index.
//
// Validation rules:
//   - Text must not be empty
//   - DocumentID and CaseID must be set
//   - Granularity must be a known value
//   - TokenCount must be positive
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return ErrInvalidChunk
	}
	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	if c.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingDocumentID)
	}
	if c.CaseID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingCaseID)
	}
	if !KnownGranularity(c.Granularity) {
		return fmt.Errorf("%w: %w %q", ErrInvalidChunk, ErrUnknownGranularity, c.Granularity)
	}
	if c.TokenCount <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidTokenCount)
	}
	return nil
}

// ValidatePayload validates an index payload at the ingestion boundary.
// Payloads are typed structs, not free-form metadata bags, so validation
// happens once here instead of at every consumer.
func ValidatePayload(p *Payload) error {
	if p.DocumentID == "" {
		return ErrMissingDocumentID
	}
	if p.CaseID == "" {
		return ErrMissingCaseID
	}
	if !KnownGranularity(p.Granularity) {
		return fmt.Errorf("%w %q", ErrUnknownGranularity, p.Granularity)
	}
	return nil
}
