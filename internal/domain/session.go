package domain

// Status represents the connection status of the WhatsApp session
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusQRPending    Status = "qr_pending"
	StatusConnected    Status = "connected"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDisconnected, StatusQRPending, StatusConnected:
		return true
	default:
		return false
	}
}

// RenderedQR holds a pairing challenge together with its rendered forms.
// ImageDataURL may be empty when PNG rendering failed; the raw code is
// always present.
type RenderedQR struct {
	Code         string `json:"code"`
	ImageDataURL string `json:"image,omitempty"`
}

// Snapshot is a read-only copy of the session state, published atomically
// by the session loop so HTTP handlers never touch live fields.
type Snapshot struct {
	Status            Status      `json:"status"`
	ReconnectAttempts int         `json:"reconnect_attempts"`
	QR                *RenderedQR `json:"qr,omitempty"`
	Terminal          bool        `json:"terminal"`
	TerminalReason    string      `json:"terminal_reason,omitempty"`
	JID               string      `json:"jid,omitempty"`
}

// IsConnected checks if the snapshot reflects a connected session
func (s Snapshot) IsConnected() bool {
	return s.Status == StatusConnected
}
