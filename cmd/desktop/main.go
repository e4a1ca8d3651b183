// Package main provides the embedded sync server for desktop platforms.
// The UI communicates via REST/WebSocket on localhost.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rentnest/rentnest/backend/cmd/desktop/handlers"
	"github.com/rentnest/rentnest/backend/internal/config"
	"github.com/rentnest/rentnest/backend/internal/db"
	"github.com/rentnest/rentnest/backend/internal/logging"
	"github.com/rentnest/rentnest/backend/internal/remote"
	"github.com/rentnest/rentnest/backend/internal/store"
	syncpkg "github.com/rentnest/rentnest/backend/internal/sync"
	"github.com/rentnest/rentnest/backend/internal/sync/scheduler"
)

func main() {
	cfg, err := config.Load(os.Getenv("RENTNEST_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	recordStore := store.New(database)
	client := remote.NewClient(cfg.RemoteBaseURL, cfg.APIToken)
	engine := syncpkg.NewSyncEngine(recordStore, client)
	retry := syncpkg.NewRetryController(engine)

	hub := NewWSHub()
	engine.SetEventHandler(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(engine, cfg.Resources, &scheduler.Config{
		Interval: cfg.SyncInterval,
		Timeout:  scheduler.DefaultConfig().Timeout,
	})
	sched.Start(ctx)
	defer sched.Stop()

	mux := http.NewServeMux()
	handlers.NewSyncHandler(engine, retry, cfg.Resources).Register(mux)
	mux.HandleFunc("/ws", HandleWebSocket(hub))
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"rentnest-sync"}`))
	})

	server := &http.Server{
		Addr:    "localhost:" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logging.Info("Shutting down", nil)
		sched.Stop()
		server.Shutdown(context.Background())
	}()

	logging.Info("Rentnest sync server starting", map[string]interface{}{
		"addr": server.Addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
