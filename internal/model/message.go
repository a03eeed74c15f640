package model

// Message is one chat message in a room's log.
// Timestamp is epoch milliseconds from the coordinator's clock.
type Message struct {
	From      string `json:"from"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}
