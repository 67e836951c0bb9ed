package domain

import "context"

// Event is the connection-level event stream consumed by the session loop.
// All implementations are plain values; the session serializes them onto a
// single processing goroutine.
type Event interface {
	isEvent()
}

// ConnectedEvent signals a successful handshake with the server
type ConnectedEvent struct {
	JID string
}

// DisconnectedEvent signals loss of the connection. Terminal is true only
// for an explicit server-side logout; every other reason is retryable.
type DisconnectedEvent struct {
	Reason   string
	Terminal bool
}

// QRCodeEvent carries a fresh pairing challenge
type QRCodeEvent struct {
	Code string
}

// QRTimeoutEvent signals that the pairing challenge expired unscanned
type QRTimeoutEvent struct{}

// PairSuccessEvent signals that a QR scan completed and credentials were
// persisted by the protocol store
type PairSuccessEvent struct {
	JID string
}

// MessageEvent carries an inbound text message
type MessageEvent struct {
	Message IncomingMessage
}

func (ConnectedEvent) isEvent()    {}
func (DisconnectedEvent) isEvent() {}
func (QRCodeEvent) isEvent()       {}
func (QRTimeoutEvent) isEvent()    {}
func (PairSuccessEvent) isEvent()  {}
func (MessageEvent) isEvent()      {}

// Transport abstracts the protocol client underneath the session. A single
// implementation backed by whatsmeow is used in production; tests use stubs.
type Transport interface {
	// Connect establishes the single outbound connection. For an unpaired
	// device it also starts the QR pairing flow; challenges and the final
	// outcome arrive as events.
	Connect(ctx context.Context) error

	// Disconnect tears down the current connection without touching
	// stored credentials.
	Disconnect()

	// SendText delivers a text message to a normalized JID and returns the
	// provider-assigned message identifier, which may be empty.
	SendText(ctx context.Context, jid string, text string) (string, error)

	// IsLoggedIn reports whether the device holds persisted credentials
	IsLoggedIn() bool
}

// EventHandler receives transport events
type EventHandler func(Event)
