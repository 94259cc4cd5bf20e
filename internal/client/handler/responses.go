package handler

import (
	"time"

	"taxsync/internal/client/models"
)

// ClientResponse is the HTTP representation of a client record.
type ClientResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Province  string    `json:"province"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListClientsResponse is the HTTP response for GET /clients.
type ListClientsResponse struct {
	Clients []ClientResponse `json:"clients"`
}

// FromClient converts a domain client to its HTTP representation.
func FromClient(client *models.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID.String(),
		FirstName: client.FirstName,
		LastName:  client.LastName,
		Email:     client.Email,
		Province:  client.Province,
		Status:    string(client.Status),
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

// FromClients converts a client list; Clients is never null in the payload.
func FromClients(clients []*models.Client) *ListClientsResponse {
	out := make([]ClientResponse, len(clients))
	for i, client := range clients {
		out[i] = FromClient(client)
	}
	return &ListClientsResponse{Clients: out}
}
