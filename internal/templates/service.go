package templates

import (
	"context"
	"fmt"

	"github.com/ignite/leadroom/internal/domain"
)

// Service resolves the effective template list for a campaign.
type Service struct {
	store Store
}

// NewService creates a template service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve returns the merged, ordered template list for a (campaign,
// room) pair, at most five entries.
func (s *Service) Resolve(ctx context.Context, campaignID int64, room domain.Room) ([]domain.Template, error) {
	if !room.Valid() {
		return nil, fmt.Errorf("%w: unknown room %q", domain.ErrValidation, room)
	}
	campaignTmpls, err := s.store.ListByCampaign(ctx, campaignID, room)
	if err != nil {
		return nil, fmt.Errorf("list campaign templates: %w", err)
	}
	globalTmpls, err := s.store.ListGlobal(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("list global templates: %w", err)
	}
	return MergeForRoom(campaignTmpls, globalTmpls, room), nil
}

// Pick returns the template the generation pipeline should use for a
// given email number: templates cycle through the merged list in slot
// order. Returns domain.ErrNotFound when the room has no templates at
// all.
func (s *Service) Pick(ctx context.Context, campaignID int64, room domain.Room, emailNumber int) (domain.Template, error) {
	merged, err := s.Resolve(ctx, campaignID, room)
	if err != nil {
		return domain.Template{}, err
	}
	if len(merged) == 0 {
		return domain.Template{}, fmt.Errorf("%w: no templates for campaign %d room %s", domain.ErrNotFound, campaignID, room)
	}
	if emailNumber < 1 {
		emailNumber = 1
	}
	return merged[(emailNumber-1)%len(merged)], nil
}
