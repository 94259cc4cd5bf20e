// Package handler wires tax year endpoints to the tax year service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taxsync/internal/taxyear/models"
	"taxsync/internal/taxyear/service"
	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/httputil"
	"taxsync/pkg/requestcontext"
)

// Service defines the interface for tax year operations.
type Service interface {
	GetOrCreate(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID, year int) (*models.TaxYear, error)
	Get(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)
	List(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) ([]*models.TaxYear, error)
	UpdateProfile(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID, profile models.Profile) (*models.TaxYear, *validation.Report, error)
	Submit(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)
	StartReview(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)
	Complete(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)
	Reopen(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)
	Archive(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)
	GetCompleteness(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*service.CompletenessView, error)
}

// Handler serves the tax year endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a tax year handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts tax year endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clients/{clientID}/tax-years", h.HandleOpen)
	r.Get("/clients/{clientID}/tax-years", h.HandleList)

	r.Route("/tax-years/{taxYearID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/profile", h.HandleUpdateProfile)
		r.Get("/completeness", h.HandleCompleteness)
		r.Post("/submit", h.transitionHandler(h.service.Submit, "tax year submitted"))
		r.Post("/review", h.transitionHandler(h.service.StartReview, "tax year review started"))
		r.Post("/complete", h.transitionHandler(h.service.Complete, "tax year review completed"))
		r.Post("/reopen", h.transitionHandler(h.service.Reopen, "tax year reopened"))
		r.Post("/archive", h.transitionHandler(h.service.Archive, "tax year archived"))
	})
}

func (h *Handler) authenticated(w http.ResponseWriter, r *http.Request) (id.AccountantID, bool) {
	accountantID := requestcontext.AccountantID(r.Context())
	if accountantID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.AccountantID{}, false
	}
	return accountantID, true
}

func taxYearIDParam(w http.ResponseWriter, r *http.Request) (id.TaxYearID, bool) {
	taxYearID, err := id.ParseTaxYearID(chi.URLParam(r, "taxYearID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.TaxYearID{}, false
	}
	return taxYearID, true
}

// HandleOpen handles POST /clients/{clientID}/tax-years requests: lazy
// get-or-create of the filing for one calendar year.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[OpenTaxYearRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	taxYear, err := h.service.GetOrCreate(ctx, accountantID, clientID, req.Year)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTaxYear(taxYear))
}

// HandleList handles GET /clients/{clientID}/tax-years requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	taxYears, err := h.service.List(r.Context(), accountantID, clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTaxYears(taxYears))
}

// HandleGet handles GET /tax-years/{taxYearID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	taxYearID, ok := taxYearIDParam(w, r)
	if !ok {
		return
	}

	taxYear, err := h.service.Get(r.Context(), accountantID, taxYearID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTaxYear(taxYear))
}

// HandleUpdateProfile handles PUT /tax-years/{taxYearID}/profile requests.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	taxYearID, ok := taxYearIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	taxYear, report, err := h.service.UpdateProfile(ctx, accountantID, taxYearID, models.Profile(req.Profile))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "profile updated",
		"request_id", requestID,
		"tax_year_id", taxYearID,
		"revalidated", report != nil,
	)
	httputil.WriteJSON(w, http.StatusOK, &ProfileUpdateResponse{
		TaxYear: FromTaxYear(taxYear),
		Report:  FromReport(report),
	})
}

// HandleCompleteness handles GET /tax-years/{taxYearID}/completeness requests.
func (h *Handler) HandleCompleteness(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	taxYearID, ok := taxYearIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetCompleteness(r.Context(), accountantID, taxYearID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCompleteness(view))
}

type transitionFunc func(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error)

// transitionHandler builds the shared handler shape for lifecycle endpoints.
func (h *Handler) transitionHandler(fn transitionFunc, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountantID, ok := h.authenticated(w, r)
		if !ok {
			return
		}
		taxYearID, ok := taxYearIDParam(w, r)
		if !ok {
			return
		}

		taxYear, err := fn(ctx, accountantID, taxYearID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		h.logger.InfoContext(ctx, message,
			"request_id", requestcontext.RequestID(ctx),
			"tax_year_id", taxYearID,
			"status", taxYear.Status,
		)
		httputil.WriteJSON(w, http.StatusOK, FromTaxYear(taxYear))
	}
}
