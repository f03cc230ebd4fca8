package stream

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/probelabs/deepresearch/internal/domain"
)

// EventType identifies the kind of a stream event.
type EventType string

const (
	// EventTypeStatus announces the task's current status. One is emitted
	// for every observed status change, including the first observation.
	EventTypeStatus EventType = "status"

	// EventTypeComplete carries the final result. It is always the last
	// event on a successful stream.
	EventTypeComplete EventType = "complete"

	// EventTypeError carries a failure or lookup error. It is always the
	// last event on an unsuccessful stream.
	EventTypeError EventType = "error"
)

// Event is one server-sent event on a task stream. Data holds the
// already-encoded JSON payload for the event type.
type Event struct {
	Type EventType
	Data json.RawMessage
}

// StatusPayload is the data carried by a status event.
type StatusPayload struct {
	Status domain.TaskStatus `json:"status"`
	TaskID string            `json:"task_id"`
}

// CompletePayload is the data carried by a complete event.
type CompletePayload struct {
	TaskID         string                 `json:"task_id"`
	Result         *domain.Result         `json:"result"`
	ReasoningTrace []domain.ReasoningStep `json:"reasoning_trace"`
}

// ErrorPayload is the data carried by an error event.
type ErrorPayload struct {
	Error string `json:"error"`
}

func newStatusEvent(taskID uuid.UUID, status domain.TaskStatus) (Event, error) {
	data, err := json.Marshal(StatusPayload{Status: status, TaskID: taskID.String()})
	if err != nil {
		return Event{}, err
	}
	return Event{Type: EventTypeStatus, Data: data}, nil
}

func newCompleteEvent(task *domain.Task) (Event, error) {
	data, err := json.Marshal(CompletePayload{
		TaskID:         task.ID.String(),
		Result:         task.Result,
		ReasoningTrace: task.ReasoningTrace,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{Type: EventTypeComplete, Data: data}, nil
}

func newErrorEvent(message string) (Event, error) {
	data, err := json.Marshal(ErrorPayload{Error: message})
	if err != nil {
		return Event{}, err
	}
	return Event{Type: EventTypeError, Data: data}, nil
}
