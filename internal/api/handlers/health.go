package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/famtime/backend/internal/projection"
	"github.com/famtime/backend/internal/storage"
	"github.com/famtime/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	EventsCount      int  `json:"events_count"`
	Loading          bool `json:"loading"`
	Degraded         bool `json:"degraded"`
	ConnectedClients int  `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(proj *projection.Projection, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			EventsCount:      len(proj.Events()),
			Loading:          proj.Loading(),
			Degraded:         proj.Degraded(),
			ConnectedClients: hub.ClientCount(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
