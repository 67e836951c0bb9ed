// Package whatsapp adapts the whatsmeow protocol client to the transport
// surface consumed by the session core.
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// StoreManager owns the protocol credential store. Credentials live in the
// same SQLite database as the bridge's own tables; every credential
// rotation is persisted by the sqlstore before the client applies it.
type StoreManager struct {
	container *sqlstore.Container
}

// NewStoreManager creates the credential store over a shared database
// handle and upgrades its schema
func NewStoreManager(db *sql.DB, logger waLog.Logger) (*StoreManager, error) {
	container := sqlstore.NewWithDB(db, "sqlite3", logger)

	ctx := context.Background()
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade whatsmeow database schema: %w", err)
	}

	log.Info().Msg("WhatsApp credential store initialized")
	return &StoreManager{container: container}, nil
}

// GetDevice returns the stored device, or a fresh unpaired one when no
// credentials exist yet
func (sm *StoreManager) GetDevice(ctx context.Context) (*store.Device, error) {
	devices, err := sm.container.GetAllDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored devices: %w", err)
	}

	if len(devices) > 0 {
		log.Info().Str("jid", devices[0].ID.String()).Msg("Restored stored WhatsApp device")
		return devices[0], nil
	}

	log.Info().Msg("No stored credentials, created new WhatsApp device")
	return sm.container.NewDevice(), nil
}

// Container returns the underlying sqlstore container
func (sm *StoreManager) Container() *sqlstore.Container {
	return sm.container
}
