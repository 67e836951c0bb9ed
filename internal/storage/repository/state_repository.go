package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wabridge/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

// StateRepository persists the single bridge_state row. It satisfies the
// session core's StateStore.
type StateRepository struct {
	db *bun.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *bun.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Save upserts the state row
func (r *StateRepository) Save(ctx context.Context, state *domain.BridgeState) error {
	_, err := r.db.NewInsert().
		Model(state).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("wa_jid = EXCLUDED.wa_jid").
		Set("reconnect_attempts = EXCLUDED.reconnect_attempts").
		Set("last_connected_at = EXCLUDED.last_connected_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		log.Error().Err(err).Str("status", string(state.Status)).Msg("Failed to save bridge state")
		return fmt.Errorf("failed to save bridge state: %w", err)
	}

	return nil
}

// Load returns the stored state row, or a fresh one when none exists yet
func (r *StateRepository) Load(ctx context.Context) (*domain.BridgeState, error) {
	state := new(domain.BridgeState)
	err := r.db.NewSelect().
		Model(state).
		Where("id = ?", domain.BridgeStateID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return domain.NewBridgeState(), nil
		}
		log.Error().Err(err).Msg("Failed to load bridge state")
		return nil, fmt.Errorf("failed to load bridge state: %w", err)
	}

	return state, nil
}
