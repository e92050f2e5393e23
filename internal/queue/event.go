// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Post event types.
const (
	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"
)

// PostEvent is published after a write to the post store succeeds.  Title
// and Description are empty for deletes; Count carries the matched or
// deleted count reported by the store.
type PostEvent struct {
	Type        string    `json:"type"`
	PostID      string    `json:"post_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Count       int64     `json:"count"`
	OccurredAt  time.Time `json:"occurred_at"`
}
