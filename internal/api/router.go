// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/famtime/backend/internal/api/handlers"
	"github.com/famtime/backend/internal/api/middleware"
	"github.com/famtime/backend/internal/calendar"
	"github.com/famtime/backend/internal/family"
	"github.com/famtime/backend/internal/projection"
	"github.com/famtime/backend/internal/storage"
	"github.com/famtime/backend/internal/websocket"
)

// Deps bundles the services the router hands to its handlers.
type Deps struct {
	DB          *storage.DB
	Hub         *websocket.Hub
	Broadcaster *websocket.EventBroadcaster
	Service     *calendar.Service
	Projection  *projection.Projection
	Members     []family.Member
	Location    *time.Location
	StaticDir   string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	if d.Location == nil {
		d.Location = time.Local
	}

	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(d.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(d.Projection, d.Hub)).Methods("GET")

	// WebSocket change feed
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(d.Hub)).Methods("GET")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(d.Projection)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(d.Service, d.Broadcaster)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(d.Service, d.Projection, d.Broadcaster)).Methods("DELETE")

	// Planner endpoints
	api.HandleFunc("/planner/templates", handlers.PlannerTemplates()).Methods("GET")
	api.HandleFunc("/planner/suggestions", handlers.PlannerSuggestions(d.Location)).Methods("GET")
	api.HandleFunc("/planner/events", handlers.CreatePlannedEvent(d.Service, d.Projection, d.Broadcaster)).Methods("POST")

	// Family endpoints
	api.HandleFunc("/family/overview", handlers.FamilyOverview(d.Members, d.Projection, d.Location)).Methods("GET")
	api.HandleFunc("/family/free-slots", handlers.FreeSlots(d.Members, d.Projection, d.Location)).Methods("GET")

	// Serve static frontend files
	if d.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.StaticDir)))
	}

	return r
}
