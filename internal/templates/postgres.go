package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/leadroom/internal/domain"
)

// PostgresStore is the durable template Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a template store over the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const templateColumns = `id, campaign_id, room, name, prompt_sections, slot_order, created_at, updated_at`

// ListByCampaign implements Store.
func (s *PostgresStore) ListByCampaign(ctx context.Context, campaignID int64, room domain.Room) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM content_templates
		 WHERE campaign_id = $1 AND room = $2
		 ORDER BY slot_order, created_at`,
		campaignID, room)
	if err != nil {
		return nil, fmt.Errorf("%w: list campaign templates: %v", domain.ErrStorage, err)
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// ListGlobal implements Store.
func (s *PostgresStore) ListGlobal(ctx context.Context, room domain.Room) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM content_templates
		 WHERE campaign_id = 0 AND room = $1
		 ORDER BY slot_order, created_at`,
		room)
	if err != nil {
		return nil, fmt.Errorf("%w: list global templates: %v", domain.ErrStorage, err)
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func scanTemplates(rows *sql.Rows) ([]domain.Template, error) {
	var out []domain.Template
	for rows.Next() {
		var (
			t           domain.Template
			sectionsRaw []byte
		)
		if err := rows.Scan(&t.ID, &t.CampaignID, &t.Room, &t.Name,
			&sectionsRaw, &t.Order, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan template: %v", domain.ErrStorage, err)
		}
		if len(sectionsRaw) > 0 {
			if err := json.Unmarshal(sectionsRaw, &t.PromptSections); err != nil {
				return nil, fmt.Errorf("%w: decode prompt sections: %v", domain.ErrStorage, err)
			}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate templates: %v", domain.ErrStorage, err)
	}
	return out, nil
}
