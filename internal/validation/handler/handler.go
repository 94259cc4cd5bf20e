// Package handler exposes the manual validation trigger over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/httputil"
	"taxsync/pkg/requestcontext"
)

// Service defines the interface for validation operations.
type Service interface {
	Run(ctx context.Context, taxYearID id.TaxYearID) (*validation.Report, error)
}

// Authorizer checks that the authenticated accountant may touch the tax year.
// Implementations return not_found when the tax year does not exist and
// forbidden when it belongs to another accountant's client.
type Authorizer interface {
	AuthorizeTaxYear(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) error
}

// Handler wires validation endpoints to the validation service.
type Handler struct {
	service    Service
	authorizer Authorizer
	logger     *slog.Logger
}

// New constructs a validation handler with its dependencies.
func New(service Service, authorizer Authorizer, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Register mounts validation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tax-years/{taxYearID}/validations", h.HandleRun)
}

// HandleRun handles POST /tax-years/{taxYearID}/validations requests. It
// re-runs the full rule catalog and returns the fresh report.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	accountantID := requestcontext.AccountantID(ctx)
	if accountantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	taxYearID, err := id.ParseTaxYearID(chi.URLParam(r, "taxYearID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.authorizer.AuthorizeTaxYear(ctx, accountantID, taxYearID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.Run(ctx, taxYearID)
	if err != nil {
		h.logger.ErrorContext(ctx, "validation run failed",
			"request_id", requestID,
			"tax_year_id", taxYearID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "validation run triggered",
		"request_id", requestID,
		"tax_year_id", taxYearID,
		"score", report.CompletenessScore,
		"findings", len(report.Findings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}
