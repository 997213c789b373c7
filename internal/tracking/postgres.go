package tracking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/leadroom/internal/domain"
)

// PostgresStore is the durable tracking Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a tracking store over the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `id, prospect_id, email_number, room, subject, body_html, body_text,
	generated_by_ai, template_used, prompt_tokens, completion_tokens, url_included,
	tracking_token, status, copied_at, sent_at, opened_at, clicked_at, created_at`

// CreateRecord implements Store.
func (s *PostgresStore) CreateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_tracking (`+recordColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		rec.ID, rec.ProspectID, rec.EmailNumber, string(rec.Room), rec.Subject,
		rec.BodyHTML, rec.BodyText, rec.GeneratedByAI, rec.TemplateUsed,
		rec.PromptTokens, rec.CompletionTokens, rec.URLIncluded, rec.TrackingToken,
		string(rec.Status), rec.CopiedAt, rec.SentAt, rec.OpenedAt, rec.ClickedAt,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create tracking record: %v", domain.ErrStorage, err)
	}
	return nil
}

// GetRecord implements Store.
func (s *PostgresStore) GetRecord(ctx context.Context, id uuid.UUID) (*domain.EmailTrackingRecord, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM email_tracking WHERE id = $1`, id))
}

// GetRecordByToken implements Store.
func (s *PostgresStore) GetRecordByToken(ctx context.Context, token string) (*domain.EmailTrackingRecord, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM email_tracking WHERE tracking_token = $1`, token))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*domain.EmailTrackingRecord, error) {
	var rec domain.EmailTrackingRecord
	var room, status string
	err := row.Scan(
		&rec.ID, &rec.ProspectID, &rec.EmailNumber, &room, &rec.Subject,
		&rec.BodyHTML, &rec.BodyText, &rec.GeneratedByAI, &rec.TemplateUsed,
		&rec.PromptTokens, &rec.CompletionTokens, &rec.URLIncluded, &rec.TrackingToken,
		&status, &rec.CopiedAt, &rec.SentAt, &rec.OpenedAt, &rec.ClickedAt,
		&rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: tracking record", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get tracking record: %v", domain.ErrStorage, err)
	}
	rec.Room = domain.Room(room)
	rec.Status = domain.EmailStatus(status)
	return &rec, nil
}

// UpdateRecord implements Store. Only the mutable lifecycle columns are
// written; content columns stay as created.
func (s *PostgresStore) UpdateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error {
	return s.updateRecord(ctx, s.db, rec)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) updateRecord(ctx context.Context, db execer, rec *domain.EmailTrackingRecord) error {
	res, err := db.ExecContext(ctx,
		`UPDATE email_tracking
		 SET status = $2, copied_at = $3, sent_at = $4, opened_at = $5, clicked_at = $6
		 WHERE id = $1`,
		rec.ID, string(rec.Status), rec.CopiedAt, rec.SentAt, rec.OpenedAt, rec.ClickedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: update tracking record: %v", domain.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: tracking record %s", domain.ErrNotFound, rec.ID)
	}
	return nil
}

// ApplyCopy implements Store. Record and prospect commit in one
// transaction.
func (s *PostgresStore) ApplyCopy(ctx context.Context, rec *domain.EmailTrackingRecord, p *domain.Prospect) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin copy tx: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	if err := s.updateRecord(ctx, tx, rec); err != nil {
		return err
	}
	if err := updateProspect(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit copy tx: %v", domain.ErrStorage, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

// PostgresProspectStore is the durable ProspectStore.
type PostgresProspectStore struct {
	db *sql.DB
}

// NewPostgresProspectStore creates a prospect store over the given
// database.
func NewPostgresProspectStore(db *sql.DB) *PostgresProspectStore {
	return &PostgresProspectStore{db: db}
}

// GetProspect implements ProspectStore.
func (s *PostgresProspectStore) GetProspect(ctx context.Context, prospectID string) (*domain.Prospect, error) {
	var (
		p        domain.Prospect
		room     string
		attrsRaw []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, client_id, email, attributes, current_room, sent_urls,
		        email_sequence_position, last_email_at, created_at, updated_at
		 FROM prospects WHERE id = $1`,
		prospectID,
	).Scan(&p.ID, &p.ClientID, &p.Email, &attrsRaw, &room,
		pq.Array(&p.SentURLs), &p.EmailSequencePosition, &p.LastEmailAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: prospect %s", domain.ErrNotFound, prospectID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get prospect: %v", domain.ErrStorage, err)
	}
	if len(attrsRaw) > 0 {
		if err := json.Unmarshal(attrsRaw, &p.Attributes); err != nil {
			return nil, fmt.Errorf("%w: decode prospect attributes: %v", domain.ErrStorage, err)
		}
	}
	p.CurrentRoom = domain.Room(room)
	return &p, nil
}

// UpdateProspect implements ProspectStore.
func (s *PostgresProspectStore) UpdateProspect(ctx context.Context, p *domain.Prospect) error {
	return updateProspect(ctx, s.db, p)
}

func updateProspect(ctx context.Context, db execer, p *domain.Prospect) error {
	attrsRaw, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("%w: encode prospect attributes: %v", domain.ErrStorage, err)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE prospects
		 SET attributes = $2, current_room = $3, sent_urls = $4,
		     email_sequence_position = $5, last_email_at = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, attrsRaw, string(p.CurrentRoom), pq.Array(p.SentURLs),
		p.EmailSequencePosition, p.LastEmailAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: update prospect: %v", domain.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: prospect %s", domain.ErrNotFound, p.ID)
	}
	return nil
}

var _ ProspectStore = (*PostgresProspectStore)(nil)
