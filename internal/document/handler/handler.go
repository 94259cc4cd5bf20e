// Package handler wires document endpoints to the document service. Uploads
// arrive as multipart form data; everything else is JSON.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taxsync/internal/document/models"
	"taxsync/internal/document/service"
	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/httputil"
	"taxsync/pkg/requestcontext"
)

// Service defines the interface for document operations.
type Service interface {
	Upload(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID, req service.UploadRequest) (*service.UploadResult, error)
	Get(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*models.Document, error)
	List(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) ([]*models.Document, error)
	Download(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*models.Document, io.ReadCloser, error)
	Delete(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*validation.Report, error)
	Review(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID, status models.ReviewStatus) (*models.Document, error)
	SetExtractedData(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID, data map[string]any) (*models.Document, *validation.Report, error)
}

// Handler serves the document endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a document handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tax-years/{taxYearID}/documents", h.HandleUpload)
	r.Get("/tax-years/{taxYearID}/documents", h.HandleList)

	r.Route("/documents/{documentID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Get("/content", h.HandleDownload)
		r.Delete("/", h.HandleDelete)
		r.Put("/review", h.HandleReview)
		r.Put("/extracted-data", h.HandleSetExtractedData)
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

func documentIDParam(w http.ResponseWriter, r *http.Request) (id.DocumentID, bool) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.DocumentID{}, false
	}
	return documentID, true
}

// HandleUpload handles POST /tax-years/{taxYearID}/documents requests.
// Expects multipart form data with a "file" part plus "doc_type" and
// optional "doc_subtype" fields.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	taxYearID, err := id.ParseTaxYearID(chi.URLParam(r, "taxYearID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// A little headroom over the file limit for the form fields.
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body must be multipart form data within the size limit"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file part is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.service.Upload(ctx, accountantID, taxYearID, service.UploadRequest{
		DocType:     r.FormValue("doc_type"),
		DocSubtype:  r.FormValue("doc_subtype"),
		FileName:    header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
		Content:     file,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document upload accepted",
		"request_id", requestID,
		"tax_year_id", taxYearID,
		"document_id", result.Document.ID,
		"doc_type", result.Document.DocType,
	)

	httputil.WriteJSON(w, http.StatusCreated, FromUploadResult(result))
}

// HandleList handles GET /tax-years/{taxYearID}/documents requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	taxYearID, err := id.ParseTaxYearID(chi.URLParam(r, "taxYearID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	documents, err := h.service.List(r.Context(), accountantID, taxYearID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocuments(documents))
}

// HandleGet handles GET /documents/{documentID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	documentID, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	document, err := h.service.Get(r.Context(), accountantID, documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(document))
}

// HandleDownload handles GET /documents/{documentID}/content requests,
// streaming the original file bytes.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	documentID, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	document, content, err := h.service.Download(ctx, accountantID, documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", document.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(document.SizeBytes, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+document.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.logger.WarnContext(ctx, "document download interrupted",
			"document_id", documentID,
			"error", err,
		)
	}
}

// HandleDelete handles DELETE /documents/{documentID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	documentID, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	report, err := h.service.Delete(r.Context(), accountantID, documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &DeleteResponse{Report: FromReport(report)})
}

// HandleReview handles PUT /documents/{documentID}/review requests.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	documentID, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	document, err := h.service.Review(ctx, accountantID, documentID, models.ReviewStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(document))
}

// HandleSetExtractedData handles PUT /documents/{documentID}/extracted-data
// requests: the extraction flow posting parsed slip fields.
func (h *Handler) HandleSetExtractedData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	documentID, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ExtractedDataRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	document, report, err := h.service.SetExtractedData(ctx, accountantID, documentID, req.ExtractedData)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, struct {
		Document DocumentResponse `json:"document"`
		Report   *ReportResponse  `json:"report"`
	}{Document: FromDocument(document), Report: FromReport(report)})
}
