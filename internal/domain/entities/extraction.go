package entities

import "time"

// Category coverage weights used for the overall confidence score.
// A set that recognized at least one entity in every category scores 100.
const (
	CoverageWeightAmounts     = 30.0
	CoverageWeightDates       = 25.0
	CoverageWeightAccounts    = 20.0
	CoverageWeightEntityNames = 15.0
	CoverageWeightTaxIDs      = 10.0
)

// ExtractedEntity is one typed text span recognized in a document.
type ExtractedEntity struct {
	RawText     string  `json:"raw_text"`
	ParsedValue string  `json:"parsed_value"`
	Offset      int     `json:"offset"`
	Confidence  float64 `json:"confidence"`
}

// ExtractedEntitySet holds everything recognized in one extraction pass over a
// document. Sets are append-only: re-extraction inserts a new set that points
// at the one it supersedes.
type ExtractedEntitySet struct {
	ID                string            `json:"id" db:"id"`
	DocumentID        string            `json:"document_id" db:"document_id"`
	Amounts           []ExtractedEntity `json:"amounts"`
	Dates             []ExtractedEntity `json:"dates"`
	AccountNumbers    []ExtractedEntity `json:"account_numbers"`
	EntityNames       []ExtractedEntity `json:"entity_names"`
	TaxIDs            []ExtractedEntity `json:"tax_ids"`
	OverallConfidence float64           `json:"overall_confidence" db:"overall_confidence"`
	SupersedesID      string            `json:"supersedes_id,omitempty" db:"supersedes_id"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// IsEmpty reports whether no category matched anything.
func (s *ExtractedEntitySet) IsEmpty() bool {
	return len(s.Amounts) == 0 &&
		len(s.Dates) == 0 &&
		len(s.AccountNumbers) == 0 &&
		len(s.EntityNames) == 0 &&
		len(s.TaxIDs) == 0
}

// CoverageScore computes the overall confidence as a coverage-weighted sum:
// each non-empty category contributes its fixed weight. This is deliberately
// not an average of per-entry confidences.
func (s *ExtractedEntitySet) CoverageScore() float64 {
	score := 0.0
	if len(s.Amounts) > 0 {
		score += CoverageWeightAmounts
	}
	if len(s.Dates) > 0 {
		score += CoverageWeightDates
	}
	if len(s.AccountNumbers) > 0 {
		score += CoverageWeightAccounts
	}
	if len(s.EntityNames) > 0 {
		score += CoverageWeightEntityNames
	}
	if len(s.TaxIDs) > 0 {
		score += CoverageWeightTaxIDs
	}
	return score
}
