package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc/docguard/internal/domain/entities"
)

func gdprFramework() *entities.ComplianceFramework {
	return &entities.ComplianceFramework{
		ID:   "fw-gdpr",
		Name: "GDPR",
		Requirements: map[string]string{
			"data_minimization": "required",
		},
		Adjustment: entities.FrameworkAdjustment{
			Kind:   entities.AdjustmentTagPenalty,
			Tag:    "personal_data",
			Points: 5,
		},
		IsActive: true,
	}
}

func soxFramework() *entities.ComplianceFramework {
	return &entities.ComplianceFramework{
		ID:   "fw-sox",
		Name: "SOX",
		Requirements: map[string]string{
			"audit_trail": "required",
		},
		Adjustment: entities.FrameworkAdjustment{
			Kind:   entities.AdjustmentFixedBonus,
			Points: 10,
		},
		IsActive: true,
	}
}

func plainFramework(id string) *entities.ComplianceFramework {
	return &entities.ComplianceFramework{
		ID:       id,
		Name:     "ISO 27001",
		IsActive: true,
	}
}

func bareDocument() *entities.Document {
	// Empty tags, empty text, zero file size, no timestamp: only the base
	// score applies.
	return &entities.Document{ID: "doc-1"}
}

func richDocument() *entities.Document {
	text := make([]byte, 150)
	for i := range text {
		text[i] = 'x'
	}
	return &entities.Document{
		ID:        "doc-1",
		RawText:   string(text),
		Tags:      []string{"invoice"},
		MimeType:  "application/pdf",
		FileSize:  2048,
		CreatedAt: time.Now().UTC(),
	}
}

func richSet() *entities.ExtractedEntitySet {
	return &entities.ExtractedEntitySet{
		Amounts: []entities.ExtractedEntity{{RawText: "$100", ParsedValue: "100"}},
	}
}

func TestScore_BaseOnly(t *testing.T) {
	svc := NewComplianceService(newMemFrameworkRepo(), &memCheckRepo{}, &recordingAuditor{})

	// GDPR-style tag penalty does not apply when the tag is absent.
	score := svc.Score(bareDocument(), nil, gdprFramework())

	assert.Equal(t, 60, score)
	assert.Equal(t, entities.CheckStatusManualReview, entities.BandCheckScore(score))
}

func TestScore_AllBonuses(t *testing.T) {
	svc := NewComplianceService(newMemFrameworkRepo(), &memCheckRepo{}, &recordingAuditor{})

	// 60 + 10 + 10 + 10 + 5 + 5 = 100, no framework adjustment.
	score := svc.Score(richDocument(), richSet(), plainFramework("fw-iso"))

	assert.Equal(t, 100, score)
	assert.Equal(t, entities.CheckStatusPassed, entities.BandCheckScore(score))
}

func TestScore_Adjustments(t *testing.T) {
	svc := NewComplianceService(newMemFrameworkRepo(), &memCheckRepo{}, &recordingAuditor{})

	tests := []struct {
		name      string
		doc       *entities.Document
		framework *entities.ComplianceFramework
		want      int
	}{
		{"fixed bonus applies", bareDocument(), soxFramework(), 70},
		{"tag penalty applies when tagged", &entities.Document{ID: "doc-1", Tags: []string{"personal_data"}}, gdprFramework(), 65}, // 60+10 tags -5
		{"tag penalty skipped without tag", bareDocument(), gdprFramework(), 60},
		{"no adjustment", bareDocument(), plainFramework("fw-iso"), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Score(tt.doc, nil, tt.framework))
		})
	}
}

func TestBandCheckScore_Thresholds(t *testing.T) {
	assert.Equal(t, entities.CheckStatusPassed, entities.BandCheckScore(80))
	assert.Equal(t, entities.CheckStatusManualReview, entities.BandCheckScore(79))
	assert.Equal(t, entities.CheckStatusManualReview, entities.BandCheckScore(60))
	assert.Equal(t, entities.CheckStatusFailed, entities.BandCheckScore(59))
}

func TestEvaluate_PersistsCheckAndAudits(t *testing.T) {
	checks := &memCheckRepo{}
	auditor := &recordingAuditor{}
	svc := NewComplianceService(newMemFrameworkRepo(soxFramework()), checks, auditor)
	ctx := context.Background()
	actor := entities.Actor{UserID: "analyst-1"}

	check, err := svc.Evaluate(ctx, actor, bareDocument(), nil, "fw-sox")
	require.NoError(t, err)

	assert.Equal(t, 70, check.Score)
	assert.Equal(t, entities.CheckStatusManualReview, check.Status)
	assert.Len(t, checks.checks, 1)

	entries := auditor.entriesFor("compliance_checks")
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActionCreate, entries[0].ActionType)
	assert.Equal(t, []string{"SOX"}, entries[0].ComplianceTags)
}

func TestEvaluate_RerunSupersedes(t *testing.T) {
	checks := &memCheckRepo{}
	svc := NewComplianceService(newMemFrameworkRepo(soxFramework()), checks, &recordingAuditor{})
	ctx := context.Background()
	actor := entities.Actor{UserID: "analyst-1"}

	first, err := svc.Evaluate(ctx, actor, bareDocument(), nil, "fw-sox")
	require.NoError(t, err)
	second, err := svc.Evaluate(ctx, actor, bareDocument(), nil, "fw-sox")
	require.NoError(t, err)

	assert.Empty(t, first.SupersedesID)
	assert.Equal(t, first.ID, second.SupersedesID)
	// History preserved: both rows exist.
	assert.Len(t, checks.checks, 2)
}

func TestEvaluate_InactiveFramework(t *testing.T) {
	inactive := soxFramework()
	inactive.IsActive = false
	svc := NewComplianceService(newMemFrameworkRepo(inactive), &memCheckRepo{}, &recordingAuditor{})

	check, err := svc.Evaluate(context.Background(), entities.Actor{}, bareDocument(), nil, "fw-sox")

	assert.Nil(t, check)
	require.Error(t, err)
}

func TestEvaluateAll_FaultIsolation(t *testing.T) {
	// fw-missing is not configured; its evaluation fails while the
	// siblings still produce checks.
	svc := NewComplianceService(newMemFrameworkRepo(soxFramework(), gdprFramework()), &memCheckRepo{}, &recordingAuditor{})
	ctx := context.Background()
	actor := entities.Actor{UserID: "analyst-1"}

	results := svc.EvaluateAll(ctx, actor, bareDocument(), nil, []string{"fw-sox", "fw-missing", "fw-gdpr"})

	require.Len(t, results, 3)
	assert.NotNil(t, results[0].Check)
	assert.Empty(t, results[0].Err)
	assert.Nil(t, results[1].Check)
	assert.NotEmpty(t, results[1].Err)
	assert.NotNil(t, results[2].Check)
}

func TestEvaluateAll_IndependentScores(t *testing.T) {
	svc := NewComplianceService(newMemFrameworkRepo(soxFramework(), gdprFramework()), &memCheckRepo{}, &recordingAuditor{})
	doc := &entities.Document{ID: "doc-1", Tags: []string{"personal_data"}}

	results := svc.EvaluateAll(context.Background(), entities.Actor{}, doc, nil, []string{"fw-sox", "fw-gdpr"})

	require.Len(t, results, 2)
	// 60 + 10 tags + 10 fixed bonus vs 60 + 10 tags - 5 tag penalty.
	assert.Equal(t, 80, results[0].Check.Score)
	assert.Equal(t, entities.CheckStatusPassed, results[0].Check.Status)
	assert.Equal(t, 65, results[1].Check.Score)
	assert.Equal(t, entities.CheckStatusManualReview, results[1].Check.Status)
}
