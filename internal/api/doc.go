// Package api contains the HTTP handlers for the research service: task
// creation and retrieval, child artifact listings, the server-sent event
// stream, and the health probes. Handlers decode and validate requests,
// delegate to the service layer, and map errors to status codes in one
// place so internal error details never reach clients.
package api
