package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// BridgeState is the durable trace of the single session, stored next to
// the protocol credential tables. One row per process (id = 1).
type BridgeState struct {
	bun.BaseModel `bun:"table:bridge_state,alias:bs"`

	ID                int64      `bun:",pk" json:"id"`
	Status            Status     `bun:",default:'disconnected'" json:"status"`
	WAJID             string     `bun:"wa_jid" json:"wa_jid"`
	ReconnectAttempts int        `bun:"reconnect_attempts,default:0" json:"reconnect_attempts"`
	LastConnectedAt   *time.Time `bun:"last_connected_at,nullzero" json:"last_connected_at,omitempty"`
	UpdatedAt         time.Time  `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// BridgeStateID is the fixed primary key of the single state row.
const BridgeStateID int64 = 1

// NewBridgeState creates the initial state row
func NewBridgeState() *BridgeState {
	return &BridgeState{
		ID:        BridgeStateID,
		Status:    StatusDisconnected,
		UpdatedAt: time.Now(),
	}
}
