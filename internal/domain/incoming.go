package domain

import "time"

// IncomingMessage represents a text message received over the session,
// held in memory for collaborators polling the incoming feed.
type IncomingMessage struct {
	ID        string    `json:"id"`
	ChatJID   string    `json:"chatJid"`
	SenderJID string    `json:"senderJid"`
	PushName  string    `json:"pushName"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"-"`
}

// UnixTimestamp returns the message timestamp in unix seconds, the form
// collaborators use as their polling cursor.
func (m IncomingMessage) UnixTimestamp() int64 {
	return m.Timestamp.Unix()
}
