package handler

import (
	"time"

	"taxsync/internal/auth/models"
	"taxsync/internal/auth/service"
)

// AccountantResponse is the HTTP representation of an accountant.
type AccountantResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is the HTTP response for register and login.
type SessionResponse struct {
	Accountant AccountantResponse `json:"accountant"`
	Token      string             `json:"token"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

// FromAccountant converts a domain accountant to its HTTP representation.
func FromAccountant(accountant *models.Accountant) AccountantResponse {
	return AccountantResponse{
		ID:        accountant.ID.String(),
		Email:     accountant.Email,
		Name:      accountant.Name,
		CreatedAt: accountant.CreatedAt,
	}
}

// FromSession converts a fresh login session.
func FromSession(session *service.Session) *SessionResponse {
	return &SessionResponse{
		Accountant: FromAccountant(session.Accountant),
		Token:      session.Token,
		ExpiresAt:  session.Claims.ExpiresAt,
	}
}
