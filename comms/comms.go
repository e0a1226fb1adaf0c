// Package comms provides the in-process notification bus. Use cases publish
// task lifecycle notices on it; presentation and logging subscribe.
package comms

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/tareas/task"
)

// MessageType identifies the kind of notice.
type MessageType string

const (
	TypeTaskCreated  MessageType = "task.created"
	TypeTaskModified MessageType = "task.modified"
	TypeTaskDeleted  MessageType = "task.deleted"

	// TypeAll subscribes to every message type.
	TypeAll MessageType = "*"
)

// Message describes something that happened to a task.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	TaskID    string      `json:"task_id"`
	Title     string      `json:"title"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewTaskMessage builds a notice of type typ about t.
func NewTaskMessage(typ MessageType, t *task.Task) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      typ,
		TaskID:    t.ID,
		Title:     t.Title,
		Timestamp: t.UpdatedAt,
	}
}

// ShortTaskID returns the first six characters of the task ID.
func (m *Message) ShortTaskID() string {
	if len(m.TaskID) <= 6 {
		return m.TaskID
	}
	return m.TaskID[:6]
}

// Handler processes a published message.
type Handler func(ctx context.Context, msg *Message) error

// Bus delivers messages to the handlers subscribed to their type.
type Bus interface {
	// Publish delivers msg synchronously to every matching handler.
	Publish(ctx context.Context, msg *Message) error

	// Subscribe registers handler for messages of type typ (TypeAll for
	// every type). Returns an unsubscribe function.
	Subscribe(typ MessageType, handler Handler) (unsubscribe func())

	// History returns up to limit recent messages, oldest first.
	History(limit int) ([]*Message, error)
}
