package tracking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/leadroom/internal/domain"
)

// Store persists tracking records.
type Store interface {
	CreateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*domain.EmailTrackingRecord, error)
	GetRecordByToken(ctx context.Context, token string) (*domain.EmailTrackingRecord, error)
	UpdateRecord(ctx context.Context, rec *domain.EmailTrackingRecord) error

	// ApplyCopy persists a copy event: the updated record and the updated
	// prospect commit together or not at all.
	ApplyCopy(ctx context.Context, rec *domain.EmailTrackingRecord, p *domain.Prospect) error
}

// ProspectStore persists prospects.
type ProspectStore interface {
	GetProspect(ctx context.Context, prospectID string) (*domain.Prospect, error)
	UpdateProspect(ctx context.Context, p *domain.Prospect) error
}
