// Package handler wires client endpoints to the client service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taxsync/internal/client/models"
	"taxsync/internal/client/service"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/httputil"
	"taxsync/pkg/requestcontext"
)

// Service defines the interface for client operations.
type Service interface {
	Create(ctx context.Context, accountantID id.AccountantID, req service.CreateRequest) (*models.Client, error)
	Get(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context, accountantID id.AccountantID) ([]*models.Client, error)
	Update(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID, req service.UpdateRequest) (*models.Client, error)
	Deactivate(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error)
}

// Handler serves the client CRUD endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a client handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts client endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{clientID}", h.HandleGet)
		r.Patch("/{clientID}", h.HandleUpdate)
		r.Delete("/{clientID}", h.HandleDeactivate)
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

func clientIDParam(w http.ResponseWriter, r *http.Request) (id.ClientID, bool) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ClientID{}, false
	}
	return clientID, true
}

// HandleCreate handles POST /clients requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client, err := h.service.Create(ctx, accountantID, req.ToServiceRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "client created",
		"request_id", requestID,
		"client_id", client.ID,
		"province", client.Province,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromClient(client))
}

// HandleList handles GET /clients requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}

	clients, err := h.service.List(r.Context(), accountantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClients(clients))
}

// HandleGet handles GET /clients/{clientID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	clientID, ok := clientIDParam(w, r)
	if !ok {
		return
	}

	client, err := h.service.Get(r.Context(), accountantID, clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClient(client))
}

// HandleUpdate handles PATCH /clients/{clientID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	clientID, ok := clientIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client, err := h.service.Update(ctx, accountantID, clientID, req.ToServiceRequest())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClient(client))
}

// HandleDeactivate handles DELETE /clients/{clientID} requests. Deactivation
// is soft: the record and its tax years remain readable.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountantID, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	clientID, ok := clientIDParam(w, r)
	if !ok {
		return
	}

	client, err := h.service.Deactivate(ctx, accountantID, clientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "client deactivated",
		"request_id", requestcontext.RequestID(ctx),
		"client_id", client.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromClient(client))
}
