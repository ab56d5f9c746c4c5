package routes

import (
	"net/http"

	"github.com/veridoc/docguard/internal/api/handlers"
	"github.com/veridoc/docguard/internal/api/middleware"
	"github.com/veridoc/docguard/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	documentHandler   *handlers.DocumentHandler
	riskHandler       *handlers.RiskHandler
	complianceHandler *handlers.ComplianceHandler
	auditHandler      *handlers.AuditHandler
	workflowHandler   *handlers.WorkflowHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	documentHandler *handlers.DocumentHandler,
	riskHandler *handlers.RiskHandler,
	complianceHandler *handlers.ComplianceHandler,
	auditHandler *handlers.AuditHandler,
	workflowHandler *handlers.WorkflowHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		documentHandler:   documentHandler,
		riskHandler:       riskHandler,
		complianceHandler: complianceHandler,
		auditHandler:      auditHandler,
		workflowHandler:   workflowHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Document endpoints
	r.mux.HandleFunc("POST /api/documents", r.documentHandler.IngestDocument)
	r.mux.HandleFunc("GET /api/documents", r.documentHandler.ListDocuments)
	r.mux.HandleFunc("GET /api/documents/{id}", r.documentHandler.GetDocument)

	// Risk assessment endpoints
	r.mux.HandleFunc("GET /api/documents/{id}/risk", r.riskHandler.GetDocumentRisk)
	r.mux.HandleFunc("POST /api/assessments/{id}/review", r.riskHandler.ReviewAssessment)

	// Compliance endpoints
	r.mux.HandleFunc("POST /api/documents/{id}/compliance", r.complianceHandler.EvaluateCompliance)
	r.mux.HandleFunc("GET /api/documents/{id}/compliance", r.complianceHandler.ListComplianceChecks)

	// Audit trail endpoints (read-only)
	r.mux.HandleFunc("GET /api/audit/{recordId}", r.auditHandler.GetRecordAudit)

	// Workflow endpoints
	r.mux.HandleFunc("POST /api/workflow/steps", r.workflowHandler.CreateStep)
	r.mux.HandleFunc("POST /api/workflow/steps/{id}/transition", r.workflowHandler.TransitionStep)
	r.mux.HandleFunc("GET /api/documents/{id}/workflow", r.workflowHandler.ListDocumentSteps)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so every response carries its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
