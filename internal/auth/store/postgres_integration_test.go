//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"taxsync/internal/auth/models"
	"taxsync/internal/auth/store"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "accountants")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) accountant(email string) *models.Accountant {
	accountant, err := models.NewAccountant(id.NewAccountantID(), email,
		"Chantal Bergeron", "$2a$10$hash", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	return accountant
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	created := s.accountant("chantal@example.ca")
	s.Require().NoError(s.store.Create(ctx, created))

	byID, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Email, byID.Email)
	s.Equal(created.Name, byID.Name)
	s.Equal(created.PasswordHash, byID.PasswordHash)

	byEmail, err := s.store.FindByEmail(ctx, "CHANTAL@example.ca")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID, "email lookup is case-insensitive")
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.accountant("dup@example.ca")))

	err := s.store.Create(ctx, s.accountant("dup@example.ca"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PostgresStoreSuite) TestFindMissing() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, id.NewAccountantID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.store.FindByEmail(ctx, uuid.NewString()+"@example.ca")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
