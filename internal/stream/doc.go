// Package stream converts the stored lifecycle of a research task into an
// ordered sequence of progress events suitable for server-sent event
// delivery. The Dispatcher polls the task through a narrow reader interface
// so it stays decoupled from both the HTTP layer and the storage layer.
package stream
