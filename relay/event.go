package relay

import "time"

// Event is the notification payload shape carried on the stream. The relay
// never unmarshals events in the hot path; the type documents the contract
// with the UI and backs the tests.
type Event struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Topic      string         `json:"topic"`
	Data       map[string]any `json:"data,omitempty"`
	ReadAt     *time.Time     `json:"readAt"`
	ObjectType string         `json:"objectType"`
}
