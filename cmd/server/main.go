// Package main implements the entry point for the deep research API
// server: research task intake, persistence, progress streaming, and the
// optional in-process runner.
package main

import (
	"context"
	"log"
)

// main wires configuration, logging, database, services and the HTTP
// server, then blocks until shutdown.
func main() {
	app, err := newApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.run(context.Background()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
