// Package service orchestrates client lifecycle management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	clientmetrics "taxsync/internal/client/metrics"
	"taxsync/internal/client/models"
	"taxsync/internal/client/store"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/audit"
	"taxsync/pkg/requestcontext"
)

// ClientStore is the persistence port for client records.
type ClientStore interface {
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error)
	ListByAccountant(ctx context.Context, accountantID id.AccountantID) ([]*models.Client, error)
}

// Service orchestrates client management for one accountant at a time: every
// operation takes the authenticated accountant's ID and is scoped by it.
type Service struct {
	clients ClientStore
	logger  *slog.Logger
	auditor audit.Emitter
	metrics *clientmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(auditor audit.Emitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *clientmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(clients ClientStore, opts ...Option) *Service {
	s := &Service{clients: clients}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries the fields for a new client record.
type CreateRequest struct {
	FirstName string
	LastName  string
	Email     string
	Province  string
}

// UpdateRequest carries the mutable client fields. Nil pointers leave the
// field unchanged.
type UpdateRequest struct {
	FirstName *string
	LastName  *string
	Email     *string
	Province  *string
}

// Create registers a client under the accountant.
func (s *Service) Create(ctx context.Context, accountantID id.AccountantID, req CreateRequest) (*models.Client, error) {
	client, err := models.NewClient(id.NewClientID(), accountantID,
		req.FirstName, req.LastName, req.Email, req.Province,
		requestcontext.Now(ctx))
	if err != nil {
		// Invariant violations on externally supplied input surface as
		// validation errors.
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.clients.Create(ctx, client); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	s.emitAudit(ctx, audit.EventClientCreated, client)
	s.metrics.RecordCreated()
	return client, nil
}

// Get returns one client scoped to the accountant.
func (s *Service) Get(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, accountantID, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get client")
	}
	return client, nil
}

// List returns the accountant's clients ordered by name.
func (s *Service) List(ctx context.Context, accountantID id.AccountantID) ([]*models.Client, error) {
	clients, err := s.clients.ListByAccountant(ctx, accountantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, nil
}

// Update applies the non-nil fields of req to the client.
func (s *Service) Update(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID, req UpdateRequest) (*models.Client, error) {
	client, err := s.Get(ctx, accountantID, clientID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		client.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		client.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Province != nil {
		client.Province = strings.ToUpper(strings.TrimSpace(*req.Province))
	}

	// Re-validate the merged record against the constructor invariants.
	validated, err := models.NewClient(client.ID, client.AccountantID,
		client.FirstName, client.LastName, client.Email, client.Province,
		client.CreatedAt)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	validated.Status = client.Status
	validated.UpdatedAt = requestcontext.Now(ctx)

	if err := s.clients.Update(ctx, validated); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client")
	}
	return validated, nil
}

// Deactivate transitions the client to inactive.
func (s *Service) Deactivate(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error) {
	client, err := s.Get(ctx, accountantID, clientID)
	if err != nil {
		return nil, err
	}

	if err := client.Deactivate(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate client")
	}

	s.emitAudit(ctx, audit.EventClientDeactivated, client)
	s.metrics.RecordDeactivated()
	return client, nil
}

// RequireActive loads the client and rejects operations against inactive
// records. Single choke point used by the tax year and document services.
func (s *Service) RequireActive(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error) {
	client, err := s.Get(ctx, accountantID, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive() {
		return nil, dErrors.New(dErrors.CodeForbidden, "client is inactive")
	}
	return client, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, client *models.Client) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		ClientID:     client.ID,
		AccountantID: client.AccountantID,
		Subject:      client.ID.String(),
		Action:       string(action),
		Email:        client.Email,
		RequestID:    requestcontext.RequestID(ctx),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"client_id", client.ID,
			"action", action,
			"error", err,
		)
	}
}
