package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"taxsync/internal/client/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	txcontext "taxsync/pkg/platform/tx"
)

// Postgres persists clients in the clients table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, client *models.Client) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO clients (id, accountant_id, first_name, last_name, email, province, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		client.ID.String(), client.AccountantID.String(),
		client.FirstName, client.LastName, client.Email, client.Province,
		string(client.Status), client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dErrors.New(dErrors.CodeConflict, "client email already registered")
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, client *models.Client) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE clients
		SET first_name = $1, last_name = $2, email = $3, province = $4, status = $5, updated_at = $6
		WHERE id = $7
	`,
		client.FirstName, client.LastName, client.Email, client.Province,
		string(client.Status), client.UpdatedAt, client.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, accountant_id, first_name, last_name, email, province, status, created_at, updated_at
		FROM clients
		WHERE id = $1 AND accountant_id = $2
	`, clientID.String(), accountantID.String())

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return client, nil
}

func (s *Postgres) ListByAccountant(ctx context.Context, accountantID id.AccountantID) ([]*models.Client, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, accountant_id, first_name, last_name, email, province, status, created_at, updated_at
		FROM clients
		WHERE accountant_id = $1
		ORDER BY last_name, first_name
	`, accountantID.String())
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		client          models.Client
		clientIDRaw     string
		accountantIDRaw string
		status          string
	)
	err := row.Scan(&clientIDRaw, &accountantIDRaw,
		&client.FirstName, &client.LastName, &client.Email, &client.Province,
		&status, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	client.ID, err = id.ParseClientID(clientIDRaw)
	if err != nil {
		return nil, err
	}
	client.AccountantID, err = id.ParseAccountantID(accountantIDRaw)
	if err != nil {
		return nil, err
	}
	client.Status = models.ClientStatus(status)
	return &client, nil
}
