package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/leadroom/internal/domain"
)

// PostgresClientStore is the durable ClientStore.
type PostgresClientStore struct {
	db *sql.DB
}

// NewPostgresClientStore creates a client store over the given database.
func NewPostgresClientStore(db *sql.DB) *PostgresClientStore {
	return &PostgresClientStore{db: db}
}

// GetOverride implements ClientStore.
func (s *PostgresClientStore) GetOverride(ctx context.Context, clientID string) (*domain.ClientSettings, error) {
	var (
		cs            domain.ClientSettings
		thresholdsRaw []byte
		scoringRaw    []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT client_id, thresholds_override, scoring_override, version, updated_at
		 FROM client_settings WHERE client_id = $1`,
		clientID,
	).Scan(&cs.ClientID, &thresholdsRaw, &scoringRaw, &cs.Version, &cs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get override: %v", domain.ErrStorage, err)
	}

	if len(thresholdsRaw) > 0 {
		var t domain.RoomThresholds
		if err := json.Unmarshal(thresholdsRaw, &t); err != nil {
			return nil, fmt.Errorf("%w: decode thresholds override: %v", domain.ErrStorage, err)
		}
		cs.ThresholdsOverride = &t
	}
	if len(scoringRaw) > 0 {
		if err := json.Unmarshal(scoringRaw, &cs.ScoringOverride); err != nil {
			return nil, fmt.Errorf("%w: decode scoring override: %v", domain.ErrStorage, err)
		}
	}
	return &cs, nil
}

// Save implements ClientStore. Version 0 inserts a fresh row; any other
// version is a compare-and-swap update.
func (s *PostgresClientStore) Save(ctx context.Context, cs *domain.ClientSettings) error {
	var thresholdsRaw, scoringRaw []byte
	var err error
	if cs.ThresholdsOverride != nil {
		if thresholdsRaw, err = json.Marshal(cs.ThresholdsOverride); err != nil {
			return fmt.Errorf("%w: encode thresholds override: %v", domain.ErrStorage, err)
		}
	}
	if len(cs.ScoringOverride) > 0 {
		if scoringRaw, err = json.Marshal(cs.ScoringOverride); err != nil {
			return fmt.Errorf("%w: encode scoring override: %v", domain.ErrStorage, err)
		}
	}

	if cs.Version == 0 {
		err = s.db.QueryRowContext(ctx,
			`INSERT INTO client_settings (client_id, thresholds_override, scoring_override, version, updated_at)
			 VALUES ($1, $2, $3, 1, NOW())
			 ON CONFLICT (client_id) DO NOTHING
			 RETURNING version, updated_at`,
			cs.ClientID, thresholdsRaw, scoringRaw,
		).Scan(&cs.Version, &cs.UpdatedAt)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: client %s already has an override", domain.ErrVersionConflict, cs.ClientID)
		}
		if err != nil {
			return fmt.Errorf("%w: insert override: %v", domain.ErrStorage, err)
		}
		return nil
	}

	err = s.db.QueryRowContext(ctx,
		`UPDATE client_settings
		 SET thresholds_override = $2, scoring_override = $3, version = version + 1, updated_at = NOW()
		 WHERE client_id = $1 AND version = $4
		 RETURNING version, updated_at`,
		cs.ClientID, thresholdsRaw, scoringRaw, cs.Version,
	).Scan(&cs.Version, &cs.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: client %s version %d is stale", domain.ErrVersionConflict, cs.ClientID, cs.Version)
	}
	if err != nil {
		return fmt.Errorf("%w: update override: %v", domain.ErrStorage, err)
	}
	return nil
}

// Put implements ClientStore: an unconditional upsert of a
// version-stamped snapshot. Only the cache tier's flusher calls this.
func (s *PostgresClientStore) Put(ctx context.Context, cs *domain.ClientSettings) error {
	var thresholdsRaw, scoringRaw []byte
	var err error
	if cs.ThresholdsOverride != nil {
		if thresholdsRaw, err = json.Marshal(cs.ThresholdsOverride); err != nil {
			return fmt.Errorf("%w: encode thresholds override: %v", domain.ErrStorage, err)
		}
	}
	if len(cs.ScoringOverride) > 0 {
		if scoringRaw, err = json.Marshal(cs.ScoringOverride); err != nil {
			return fmt.Errorf("%w: encode scoring override: %v", domain.ErrStorage, err)
		}
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO client_settings (client_id, thresholds_override, scoring_override, version, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (client_id) DO UPDATE
		 SET thresholds_override = EXCLUDED.thresholds_override,
		     scoring_override = EXCLUDED.scoring_override,
		     version = EXCLUDED.version,
		     updated_at = EXCLUDED.updated_at`,
		cs.ClientID, thresholdsRaw, scoringRaw, cs.Version, cs.UpdatedAt,
	); err != nil {
		return fmt.Errorf("%w: put override: %v", domain.ErrStorage, err)
	}
	return nil
}

// Delete implements ClientStore.
func (s *PostgresClientStore) Delete(ctx context.Context, clientID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM client_settings WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("%w: delete override: %v", domain.ErrStorage, err)
	}
	return nil
}

// PostgresGlobalStore is the durable GlobalConfigStore: one row holding
// the thresholds and the full rule catalog as JSONB. An empty table
// serves the shipped defaults so a fresh install scores sensibly.
type PostgresGlobalStore struct {
	db *sql.DB
}

// NewPostgresGlobalStore creates a global store over the given database.
func NewPostgresGlobalStore(db *sql.DB) *PostgresGlobalStore {
	return &PostgresGlobalStore{db: db}
}

// GetThresholds implements GlobalConfigStore.
func (s *PostgresGlobalStore) GetThresholds(ctx context.Context) (domain.RoomThresholds, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT thresholds FROM global_config WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return DefaultThresholds(), nil
	}
	if err != nil {
		return domain.RoomThresholds{}, fmt.Errorf("%w: get global thresholds: %v", domain.ErrStorage, err)
	}
	var t domain.RoomThresholds
	if err := json.Unmarshal(raw, &t); err != nil {
		return domain.RoomThresholds{}, fmt.Errorf("%w: decode global thresholds: %v", domain.ErrStorage, err)
	}
	return t, nil
}

// GetScoringRules implements GlobalConfigStore.
func (s *PostgresGlobalStore) GetScoringRules(ctx context.Context) (domain.RulesByRoom, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT rules FROM global_config WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return DefaultScoringRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get global rules: %v", domain.ErrStorage, err)
	}
	out := make(domain.RulesByRoom)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode global rules: %v", domain.ErrStorage, err)
	}
	return out, nil
}

// SetGlobalConfig replaces the global thresholds and rule catalog in a
// single write.
func (s *PostgresGlobalStore) SetGlobalConfig(ctx context.Context, t domain.RoomThresholds, rules domain.RulesByRoom) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	thresholdsRaw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%w: encode thresholds: %v", domain.ErrStorage, err)
	}
	rulesRaw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("%w: encode rules: %v", domain.ErrStorage, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO global_config (id, thresholds, rules, updated_at)
		 VALUES (1, $1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET thresholds = $1, rules = $2, updated_at = NOW()`,
		thresholdsRaw, rulesRaw); err != nil {
		return fmt.Errorf("%w: save global config: %v", domain.ErrStorage, err)
	}
	return nil
}
