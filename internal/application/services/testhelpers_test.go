package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/providers"
	"github.com/veridoc/docguard/internal/domain/repositories"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

// In-memory fakes shared by the service tests.

type memDocRepo struct {
	mu   sync.Mutex
	docs map[string]*entities.Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: make(map[string]*entities.Document)}
}

func (r *memDocRepo) Create(_ context.Context, doc *entities.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *memDocRepo) GetByID(_ context.Context, id string) (*entities.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		return doc, nil
	}
	return nil, apperrors.NewNotFoundError("document not found")
}

func (r *memDocRepo) List(_ context.Context, _, _ int) ([]*entities.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	return out, nil
}

type memEntitySetRepo struct {
	mu   sync.Mutex
	sets []*entities.ExtractedEntitySet
}

func (r *memEntitySetRepo) Create(_ context.Context, set *entities.ExtractedEntitySet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *set
	r.sets = append(r.sets, &copied)
	return nil
}

func (r *memEntitySetRepo) GetByID(_ context.Context, id string) (*entities.ExtractedEntitySet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.sets {
		if set.ID == id {
			return set, nil
		}
	}
	return nil, apperrors.NewNotFoundError("entity set not found")
}

func (r *memEntitySetRepo) GetLatestByDocument(_ context.Context, documentID string) (*entities.ExtractedEntitySet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sets) - 1; i >= 0; i-- {
		if r.sets[i].DocumentID == documentID {
			return r.sets[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("entity set not found")
}

type memAssessmentRepo struct {
	mu          sync.Mutex
	assessments []*entities.RiskAssessment
}

func (r *memAssessmentRepo) Create(_ context.Context, assessment *entities.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *assessment
	r.assessments = append(r.assessments, &copied)
	return nil
}

func (r *memAssessmentRepo) GetByID(_ context.Context, id string) (*entities.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assessments {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("assessment not found")
}

func (r *memAssessmentRepo) GetLatestByDocument(_ context.Context, documentID string) (*entities.RiskAssessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.assessments) - 1; i >= 0; i-- {
		if r.assessments[i].DocumentID == documentID {
			copied := *r.assessments[i]
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("assessment not found")
}

func (r *memAssessmentRepo) UpdateReview(_ context.Context, id string, review repositories.AssessmentReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assessments {
		if a.ID == id {
			a.Status = review.Status
			a.ReviewerNotes = review.ReviewerNotes
			reviewedAt := review.ReviewedAt
			a.ReviewedAt = &reviewedAt
			return nil
		}
	}
	return apperrors.NewNotFoundError("assessment not found")
}

type memFrameworkRepo struct {
	mu         sync.Mutex
	frameworks map[string]*entities.ComplianceFramework
}

func newMemFrameworkRepo(frameworks ...*entities.ComplianceFramework) *memFrameworkRepo {
	r := &memFrameworkRepo{frameworks: make(map[string]*entities.ComplianceFramework)}
	for _, f := range frameworks {
		r.frameworks[f.ID] = f
	}
	return r
}

func (r *memFrameworkRepo) GetByID(_ context.Context, id string) (*entities.ComplianceFramework, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.frameworks[id]; ok {
		return f, nil
	}
	return nil, apperrors.NewNotFoundError("framework not found")
}

func (r *memFrameworkRepo) ListActive(_ context.Context) ([]*entities.ComplianceFramework, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ComplianceFramework
	for _, f := range r.frameworks {
		if f.IsActive {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memFrameworkRepo) Upsert(_ context.Context, framework *entities.ComplianceFramework) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameworks[framework.ID] = framework
	return nil
}

type memCheckRepo struct {
	mu     sync.Mutex
	checks []*entities.ComplianceCheck
}

func (r *memCheckRepo) Create(_ context.Context, check *entities.ComplianceCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *check
	r.checks = append(r.checks, &copied)
	return nil
}

func (r *memCheckRepo) GetLatest(_ context.Context, documentID, frameworkID string) (*entities.ComplianceCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.checks) - 1; i >= 0; i-- {
		if r.checks[i].DocumentID == documentID && r.checks[i].FrameworkID == frameworkID {
			return r.checks[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("check not found")
}

func (r *memCheckRepo) ListByDocument(_ context.Context, documentID string) ([]*entities.ComplianceCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ComplianceCheck
	for _, c := range r.checks {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memAuditRepo struct {
	mu     sync.Mutex
	events []*entities.AuditEvent
	fail   bool
}

func (r *memAuditRepo) Insert(_ context.Context, event *entities.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("insert failed")
	}
	copied := *event
	copied.Sequence = int64(len(r.events) + 1)
	r.events = append(r.events, &copied)
	return nil
}

func (r *memAuditRepo) ListByRecord(_ context.Context, recordID string, limit, offset int) ([]*entities.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*entities.AuditEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].RecordID == recordID {
			matched = append(matched, r.events[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memAuditRepo) eventsFor(recordID string) []*entities.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.AuditEvent
	for _, e := range r.events {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out
}

type memWorkflowRepo struct {
	mu    sync.Mutex
	steps map[string]*entities.WorkflowStep
}

func newMemWorkflowRepo() *memWorkflowRepo {
	return &memWorkflowRepo{steps: make(map[string]*entities.WorkflowStep)}
}

func (r *memWorkflowRepo) Create(_ context.Context, step *entities.WorkflowStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *step
	r.steps[step.ID] = &copied
	return nil
}

func (r *memWorkflowRepo) GetByID(_ context.Context, id string) (*entities.WorkflowStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if step, ok := r.steps[id]; ok {
		copied := *step
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("step not found")
}

func (r *memWorkflowRepo) ListByDocument(_ context.Context, documentID string) ([]*entities.WorkflowStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.WorkflowStep
	for _, step := range r.steps {
		if step.DocumentID == documentID {
			out = append(out, step)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepOrder < out[j].StepOrder })
	return out, nil
}

func (r *memWorkflowRepo) Update(_ context.Context, step *entities.WorkflowStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[step.ID]; !ok {
		return apperrors.NewNotFoundError("step not found")
	}
	copied := *step
	r.steps[step.ID] = &copied
	return nil
}

type fakeAlertPublisher struct {
	mu     sync.Mutex
	alerts []providers.OperatorAlert
}

func (p *fakeAlertPublisher) Publish(_ context.Context, alert providers.OperatorAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}

// recordingAuditor captures audit entries without any I/O.
type recordingAuditor struct {
	mu      sync.Mutex
	entries []AuditEntry
	actors  []entities.Actor
}

func (a *recordingAuditor) Record(_ context.Context, actor entities.Actor, entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	a.actors = append(a.actors, actor)
}

func (a *recordingAuditor) entriesFor(table string) []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []AuditEntry
	for _, e := range a.entries {
		if e.TableName == table {
			out = append(out, e)
		}
	}
	return out
}
