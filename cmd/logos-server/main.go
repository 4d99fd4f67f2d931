package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/tobiakanji/logos-go/internal/api"
	"github.com/tobiakanji/logos-go/internal/core"
)

func main() {
	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// Setup the API server
	server := api.NewServer(app)

	// Retry queued note writes in the background
	scheduler := server.Notes().StartPendingProcessing(app.Config.SyncInterval)
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%d", app.Config.Port)
	log.Printf("Starting web server on %s", addr)

	// Start the HTTP server
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
