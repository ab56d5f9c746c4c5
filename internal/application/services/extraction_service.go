package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// Per-category fixed confidences. Pattern matches are deterministic, so the
// confidence expresses how specific the pattern is, not match quality.
const (
	confidenceAmount  = 0.8
	confidenceDate    = 0.85
	confidenceAccount = 0.9
	confidenceEntity  = 0.7
	confidenceTaxID   = 0.95
)

var (
	// Currency symbol, grouped digits, optional 2-digit fraction.
	amountPattern = regexp.MustCompile(`[$€£]\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?`)

	// Numeric day/month with slash or dash separators, 2- or 4-digit year.
	datePattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-](?:\d{4}|\d{2})\b`)

	// Keyword followed by 8-20 digits. The offset recorded is the
	// keyword's position, not the digits'.
	accountPattern = regexp.MustCompile(`(?i)\b(?:Account|Acct|A/C)\b[:#\s]*(\d{8,20})\b`)

	// Capitalized word sequence ending in a corporate suffix token.
	entityNamePattern = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&'.-]*\s+)+(?:Inc|Corp|LLC|Ltd|Company)\b`)

	// Tax identifier keyword followed by the 2-digit/7-digit hyphenated form.
	taxIDPattern = regexp.MustCompile(`(?i)\b(?:EIN|Tax\s?ID|TIN)\b[:#\s]*(\d{2}-\d{7})\b`)
)

// ExtractionService recognizes financial and compliance entities in raw
// document text. Extraction is a total function: it never fails and always
// returns a (possibly all-empty) set. Categories are scanned independently in
// one left-to-right pass each; overlapping spans across categories are
// allowed.
type ExtractionService struct {
	repo repositories.EntitySetRepository
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(repo repositories.EntitySetRepository) *ExtractionService {
	return &ExtractionService{repo: repo}
}

// Extract scans raw text and returns the recognized entity set. The returned
// set is not yet persisted and carries no ID.
func (s *ExtractionService) Extract(rawText string) *entities.ExtractedEntitySet {
	set := &entities.ExtractedEntitySet{
		Amounts:        extractAmounts(rawText),
		Dates:          extractSimple(rawText, datePattern, confidenceDate),
		AccountNumbers: extractKeyworded(rawText, accountPattern, confidenceAccount),
		EntityNames:    extractSimple(rawText, entityNamePattern, confidenceEntity),
		TaxIDs:         extractKeyworded(rawText, taxIDPattern, confidenceTaxID),
	}
	set.OverallConfidence = set.CoverageScore()
	return set
}

// SaveSet persists a new entity set for a document. Prior sets are retained:
// if one exists, the new set records it as superseded.
func (s *ExtractionService) SaveSet(ctx context.Context, documentID string, set *entities.ExtractedEntitySet) error {
	if set == nil {
		return apperrors.NewValidationError("entity set is nil")
	}

	set.ID = uuid.New().String()
	set.DocumentID = documentID
	set.CreatedAt = time.Now().UTC()

	if prior, err := s.repo.GetLatestByDocument(ctx, documentID); err == nil && prior != nil {
		set.SupersedesID = prior.ID
	}

	return s.repo.Create(ctx, set)
}

// GetLatest returns the newest entity set for a document.
func (s *ExtractionService) GetLatest(ctx context.Context, documentID string) (*entities.ExtractedEntitySet, error) {
	return s.repo.GetLatestByDocument(ctx, documentID)
}

// extractAmounts recognizes currency amounts and normalizes their values
// through decimal parsing so "$1,234.50" stores as "1234.5".
func extractAmounts(text string) []entities.ExtractedEntity {
	var out []entities.ExtractedEntity
	for _, loc := range amountPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		parsed := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(raw)
		if value, err := decimal.NewFromString(parsed); err == nil {
			parsed = value.String()
		}
		out = append(out, entities.ExtractedEntity{
			RawText:     raw,
			ParsedValue: parsed,
			Offset:      loc[0],
			Confidence:  confidenceAmount,
		})
	}
	return out
}

// extractSimple records each whole match as both raw and parsed value.
func extractSimple(text string, pattern *regexp.Regexp, confidence float64) []entities.ExtractedEntity {
	var out []entities.ExtractedEntity
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		out = append(out, entities.ExtractedEntity{
			RawText:     raw,
			ParsedValue: strings.TrimSpace(raw),
			Offset:      loc[0],
			Confidence:  confidence,
		})
	}
	return out
}

// extractKeyworded records matches whose pattern carries one capture group
// holding the value; the offset is the keyword's position.
func extractKeyworded(text string, pattern *regexp.Regexp, confidence float64) []entities.ExtractedEntity {
	var out []entities.ExtractedEntity
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		if len(loc) < 4 || loc[2] < 0 {
			continue
		}
		out = append(out, entities.ExtractedEntity{
			RawText:     text[loc[0]:loc[1]],
			ParsedValue: text[loc[2]:loc[3]],
			Offset:      loc[0],
			Confidence:  confidence,
		})
	}
	return out
}
