package services

import (
	"sync"

	"wabridge/internal/domain"
)

// DefaultIncomingCapacity bounds the in-memory incoming feed.
const DefaultIncomingCapacity = 200

// IncomingBuffer retains the most recent inbound messages for
// collaborators polling with a unix-seconds cursor. It is a bounded
// window, not a message store; history belongs to the reader collaborator.
type IncomingBuffer struct {
	mu       sync.RWMutex
	capacity int
	messages []domain.IncomingMessage
}

// NewIncomingBuffer creates a buffer retaining at most capacity messages
func NewIncomingBuffer(capacity int) *IncomingBuffer {
	if capacity <= 0 {
		capacity = DefaultIncomingCapacity
	}
	return &IncomingBuffer{
		capacity: capacity,
		messages: make([]domain.IncomingMessage, 0, capacity),
	}
}

// Add appends a message, evicting the oldest entries beyond capacity
func (b *IncomingBuffer) Add(msg domain.IncomingMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, msg)
	if len(b.messages) > b.capacity {
		overflow := len(b.messages) - b.capacity
		b.messages = append(b.messages[:0], b.messages[overflow:]...)
	}
}

// Since returns retained messages strictly newer than the given unix
// timestamp, oldest first
func (b *IncomingBuffer) Since(unixTS int64) []domain.IncomingMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]domain.IncomingMessage, 0, len(b.messages))
	for _, msg := range b.messages {
		if msg.UnixTimestamp() > unixTS {
			result = append(result, msg)
		}
	}
	return result
}

// Len returns the number of retained messages
func (b *IncomingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.messages)
}
