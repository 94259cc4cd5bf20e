package handler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"taxsync/internal/auth/handler/mocks"
	"taxsync/internal/auth/models"
	"taxsync/internal/auth/service"
	"taxsync/internal/auth/token"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/auth-mocks.go -package=mocks Service

// =============================================================================
// Auth Handler Test Suite
// =============================================================================

type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) newHandler() (*chi.Mux, *mocks.MockService) {
	ctrl := gomock.NewController(s.T())
	s.T().Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger)
	router := chi.NewRouter()
	handler.RegisterPublic(router)
	handler.RegisterProtected(router)
	return router, mockService
}

func session(email string) *service.Session {
	accountantID := id.NewAccountantID()
	return &service.Session{
		Accountant: &models.Accountant{ID: accountantID, Email: email, Name: "Chantal Bergeron"},
		Token:      "signed.jwt.token",
		Claims: &token.Claims{
			AccountantID: accountantID,
			Role:         models.RoleAccountant,
			JTI:          "jti-1",
			ExpiresAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
	}
}

func (s *AuthHandlerSuite) TestRegister() {
	s.Run("valid registration returns the session", func() {
		router, mockService := s.newHandler()
		mockService.EXPECT().Register(gomock.Any(), service.RegisterRequest{
			Email: "chantal@example.com", Name: "Chantal Bergeron", Password: "correct horse battery",
		}).Return(session("chantal@example.com"), nil)

		req := testutil.NewJSONRequest(s.T(), "POST", "/auth/register", RegisterRequest{
			Email: "chantal@example.com", Name: "Chantal Bergeron", Password: "correct horse battery",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(s.T(), rr, 201)
		resp := testutil.UnmarshalResponse[SessionResponse](s.T(), rr)
		s.Equal("chantal@example.com", resp.Accountant.Email)
		s.Equal("signed.jwt.token", resp.Token)
	})

	s.Run("missing email is rejected before the service", func() {
		router, _ := s.newHandler()
		req := testutil.NewJSONRequest(s.T(), "POST", "/auth/register", RegisterRequest{
			Name: "X", Password: "long enough password",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(s.T(), rr, 400, "validation")
	})

	s.Run("duplicate email maps to 409", func() {
		router, mockService := s.newHandler()
		mockService.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists"))

		req := testutil.NewJSONRequest(s.T(), "POST", "/auth/register", RegisterRequest{
			Email: "dup@example.com", Name: "X", Password: "long enough password",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(s.T(), rr, 409, "conflict")
	})
}

func (s *AuthHandlerSuite) TestLogin() {
	s.Run("valid credentials return the session", func() {
		router, mockService := s.newHandler()
		mockService.EXPECT().Login(gomock.Any(), "marie@example.com", "correct horse battery").
			Return(session("marie@example.com"), nil)

		req := testutil.NewJSONRequest(s.T(), "POST", "/auth/login", LoginRequest{
			Email: "marie@example.com", Password: "correct horse battery",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[SessionResponse](s.T(), rr)
		s.NotEmpty(resp.Token)
	})

	s.Run("bad credentials map to 401", func() {
		router, mockService := s.newHandler()
		mockService.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))

		req := testutil.NewJSONRequest(s.T(), "POST", "/auth/login", LoginRequest{
			Email: "marie@example.com", Password: "wrong",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(s.T(), rr, 401, "unauthorized")
	})

	s.Run("locked account maps to 403", func() {
		router, mockService := s.newHandler()
		mockService.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "account temporarily locked, try again later"))

		req := testutil.NewJSONRequest(s.T(), "POST", "/auth/login", LoginRequest{
			Email: "paul@example.com", Password: "correct horse battery",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(s.T(), rr, 403, "forbidden")
	})
}

func (s *AuthHandlerSuite) TestLogout() {
	s.Run("without claims in context the request is unauthorized", func() {
		router, _ := s.newHandler()
		req := testutil.NewRequest(s.T(), "POST", "/auth/logout")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(s.T(), rr, 401, "unauthorized")
	})
}
