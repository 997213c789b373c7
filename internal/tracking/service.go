package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/pkg/logger"
)

// Service drives the email engagement state machine.
type Service struct {
	store     Store
	prospects ProspectStore
	signer    *Signer
}

// NewService creates the tracking service.
func NewService(store Store, prospects ProspectStore, signer *Signer) *Service {
	return &Service{store: store, prospects: prospects, signer: signer}
}

// Signer exposes the URL signer so handlers can build tracking links.
func (s *Service) Signer() *Signer { return s.signer }

// MarkCopied records that the operator copied the generated email for
// sending. The record advances to copied, the URL joins the prospect's
// deduplicated SentURLs, and the sequence position advances by exactly
// one per call regardless of whether the URL was a duplicate. Record
// and prospect commit together.
func (s *Service) MarkCopied(ctx context.Context, trackingID uuid.UUID, prospectID, url string) (*domain.EmailTrackingRecord, error) {
	rec, err := s.store.GetRecord(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if rec.ProspectID != prospectID {
		return nil, fmt.Errorf("%w: record %s does not belong to prospect %s", domain.ErrValidation, trackingID, prospectID)
	}

	prospect, err := s.prospects.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if rec.Status.CanAdvanceTo(domain.EmailCopied) {
		rec.Status = domain.EmailCopied
	}
	if rec.CopiedAt == nil {
		rec.CopiedAt = &now
	}

	if url != "" && !prospect.HasSentURL(url) {
		prospect.SentURLs = append(prospect.SentURLs, url)
	}
	prospect.EmailSequencePosition++
	prospect.LastEmailAt = &now
	prospect.UpdatedAt = now

	if err := s.store.ApplyCopy(ctx, rec, prospect); err != nil {
		return nil, err
	}

	logger.Info("email copied",
		"tracking_id", trackingID.String(),
		"prospect_id", prospectID,
		"sequence_position", prospect.EmailSequencePosition)
	return rec, nil
}

// MarkOpened processes a tracking-pixel hit. The signature is checked
// before storage is touched; OpenedAt is stamped on first open and the
// status advances only if opened is forward from the current milestone.
func (s *Service) MarkOpened(ctx context.Context, encoded, signature string) error {
	token, ok := s.signer.Verify(encoded, signature)
	if !ok {
		return fmt.Errorf("%w: bad tracking signature", domain.ErrValidation)
	}
	rec, err := s.store.GetRecordByToken(ctx, token)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.OpenedAt == nil {
		rec.OpenedAt = &now
	}
	if rec.Status.CanAdvanceTo(domain.EmailOpened) {
		rec.Status = domain.EmailOpened
	}
	if err := s.store.UpdateRecord(ctx, rec); err != nil {
		return err
	}
	logger.Debug("email opened", "tracking_id", rec.ID.String())
	return nil
}

// MarkClicked processes a click-redirect hit and returns the URL to
// redirect to. ClickedAt is stamped independently of the status, so a
// click that arrives before the open pixel still lands both timestamps
// eventually.
func (s *Service) MarkClicked(ctx context.Context, encoded, signature string) (string, error) {
	token, ok := s.signer.Verify(encoded, signature)
	if !ok {
		return "", fmt.Errorf("%w: bad tracking signature", domain.ErrValidation)
	}
	rec, err := s.store.GetRecordByToken(ctx, token)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if rec.ClickedAt == nil {
		rec.ClickedAt = &now
	}
	if rec.Status.CanAdvanceTo(domain.EmailClicked) {
		rec.Status = domain.EmailClicked
	}
	if err := s.store.UpdateRecord(ctx, rec); err != nil {
		return "", err
	}
	logger.Debug("email clicked", "tracking_id", rec.ID.String())
	return rec.URLIncluded, nil
}
