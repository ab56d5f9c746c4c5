package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/providers"
	"github.com/veridoc/docguard/internal/domain/repositories"
)

// CachedAssessmentAdapter wraps a RiskAssessmentRepository with read-through
// caching of the latest assessment per document. Writes invalidate before
// hitting the database so a failed insert never leaves a stale entry behind.
type CachedAssessmentAdapter struct {
	adapter    repositories.RiskAssessmentRepository
	cache      providers.CacheProvider
	ttlSeconds int
}

// NewCachedAssessmentAdapter creates a caching wrapper around the given
// repository. ttlSeconds bounds how stale a cached latest assessment can get.
func NewCachedAssessmentAdapter(adapter repositories.RiskAssessmentRepository, cache providers.CacheProvider, ttlSeconds int) repositories.RiskAssessmentRepository {
	return &CachedAssessmentAdapter{
		adapter:    adapter,
		cache:      cache,
		ttlSeconds: ttlSeconds,
	}
}

func latestAssessmentKey(documentID string) string {
	return fmt.Sprintf("assessment:latest:%s", documentID)
}

// Create invalidates the document's cached latest assessment, then delegates.
func (a *CachedAssessmentAdapter) Create(ctx context.Context, assessment *entities.RiskAssessment) error {
	if err := a.cache.Delete(ctx, latestAssessmentKey(assessment.DocumentID)); err != nil {
		log.Warn().Err(err).Str("document_id", assessment.DocumentID).Msg("failed to invalidate cached assessment")
	}
	return a.adapter.Create(ctx, assessment)
}

// GetByID is not cached; point lookups by assessment ID are rare.
func (a *CachedAssessmentAdapter) GetByID(ctx context.Context, id string) (*entities.RiskAssessment, error) {
	return a.adapter.GetByID(ctx, id)
}

// GetLatestByDocument serves the latest assessment cache-first.
func (a *CachedAssessmentAdapter) GetLatestByDocument(ctx context.Context, documentID string) (*entities.RiskAssessment, error) {
	cacheKey := latestAssessmentKey(documentID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var assessment entities.RiskAssessment
		if err := json.Unmarshal(cached, &assessment); err == nil {
			return &assessment, nil
		}
		log.Warn().Str("document_id", documentID).Msg("discarding undecodable cached assessment")
	}

	assessment, err := a.adapter.GetLatestByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(assessment); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, a.ttlSeconds); err != nil {
			log.Warn().Err(err).Str("document_id", documentID).Msg("failed to cache assessment")
		}
	}
	return assessment, nil
}

// UpdateReview invalidates any cached copy of the assessment's document
// before delegating. The document ID has to be looked up first.
func (a *CachedAssessmentAdapter) UpdateReview(ctx context.Context, id string, review repositories.AssessmentReview) error {
	if assessment, err := a.adapter.GetByID(ctx, id); err == nil {
		if err := a.cache.Delete(ctx, latestAssessmentKey(assessment.DocumentID)); err != nil {
			log.Warn().Err(err).Str("assessment_id", id).Msg("failed to invalidate cached assessment")
		}
	}
	return a.adapter.UpdateReview(ctx, id, review)
}
