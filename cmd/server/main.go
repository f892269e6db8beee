// Package main is the entry point for the famtime backend server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/famtime/backend/internal/api"
	"github.com/famtime/backend/internal/calendar"
	"github.com/famtime/backend/internal/config"
	"github.com/famtime/backend/internal/devicecal"
	"github.com/famtime/backend/internal/notify"
	"github.com/famtime/backend/internal/projection"
	"github.com/famtime/backend/internal/storage"
	"github.com/famtime/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// .env is optional; real config lives in the YAML file.
	_ = godotenv.Load()

	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	configPath := flag.String("config", "./famtime.yaml", "Path to the YAML config file")
	dataDir := flag.String("data", "", "Data directory for the SQLite database (overrides config)")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %q: %v", *configPath, err)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	log.Printf("Starting famtime backend (version: %s)...", version)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", cfg.DataDir, err)
	}
	db, err := storage.NewDB(cfg.DataDir + "/famtime.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// WebSocket hub for the UI change feed
	hub := websocket.NewHub()
	go hub.Run()

	// Change-notification signal shared by the service and its subscribers
	notifier := notify.NewNotifier()
	broadcaster := websocket.NewEventBroadcaster(hub)
	unbind := broadcaster.Bind(notifier)
	defer unbind()

	// Durable event store over the key-value slot
	slots := storage.NewSlotRepository(db)
	store := storage.NewEventStore(slots)

	// External calendar collaborator: ICS feeds when configured, otherwise
	// the permission-denied stub that routes everything to the local store.
	var provider devicecal.Provider = devicecal.Unavailable{}
	if len(cfg.Feeds) > 0 {
		sources := make([]devicecal.FeedSource, 0, len(cfg.Feeds))
		for _, f := range cfg.Feeds {
			sources = append(sources, devicecal.FeedSource{ID: f.ID, Name: f.Name, URL: f.URL})
		}
		provider = devicecal.NewFeedProvider(sources)
		log.Printf("External calendar: %d ICS feed(s)", len(sources))
	} else {
		log.Println("External calendar: none configured, events are stored locally")
	}

	service := calendar.NewService(store, provider, notifier, cfg.LookaheadDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proj := projection.New(service, notifier)
	proj.Start(ctx)
	defer proj.Stop()

	var scheduler *calendar.RefreshScheduler
	if len(cfg.Feeds) > 0 {
		scheduler = calendar.NewRefreshScheduler(service, notifier, cfg.RefreshCron)
		if err := scheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start refresh scheduler: %v", err)
			scheduler = nil
		}
	}

	router := api.NewRouter(api.Deps{
		DB:          db,
		Hub:         hub,
		Broadcaster: broadcaster,
		Service:     service,
		Projection:  proj,
		Members:     cfg.Members,
		Location:    cfg.Location(),
		StaticDir:   *staticDir,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
