package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// The seven fixed prompt section keys every template carries.
const (
	SectionPersona      = "persona"
	SectionTone         = "tone"
	SectionObjective    = "objective"
	SectionContext      = "context"
	SectionStructure    = "structure"
	SectionCallToAction = "call_to_action"
	SectionConstraints  = "constraints"
)

// PromptSectionKeys lists the fixed section keys in render order.
var PromptSectionKeys = []string{
	SectionPersona, SectionTone, SectionObjective, SectionContext,
	SectionStructure, SectionCallToAction, SectionConstraints,
}

// MaxTemplateOrder is the highest valid order slot. Together with slot 0
// this caps the merged view at five templates per (campaign, room).
const MaxTemplateOrder = 4

// MaxTemplatesPerRoom is the merged-view cap per (campaign, room).
const MaxTemplatesPerRoom = MaxTemplateOrder + 1

// Template is a content template scoped to a campaign or global
// (CampaignID zero). Order is the template's slot within its room;
// campaign templates shadow globals occupying the same slot.
type Template struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	CampaignID     int64             `json:"campaign_id" db:"campaign_id"`
	Room           Room              `json:"room" db:"room"`
	Name           string            `json:"name" db:"name"`
	PromptSections map[string]string `json:"prompt_sections" db:"prompt_sections"`
	Order          int               `json:"order" db:"slot_order"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// IsGlobal reports whether the template is globally scoped.
func (t Template) IsGlobal() bool { return t.CampaignID == 0 }

// Validate checks room, order range, and section keys.
func (t Template) Validate() error {
	if !t.Room.Valid() {
		return fmt.Errorf("%w: unknown room %q", ErrValidation, t.Room)
	}
	if t.Order < 0 || t.Order > MaxTemplateOrder {
		return fmt.Errorf("%w: order %d out of range [0,%d]", ErrValidation, t.Order, MaxTemplateOrder)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	for key := range t.PromptSections {
		if !validSectionKey(key) {
			return fmt.Errorf("%w: unknown prompt section %q", ErrValidation, key)
		}
	}
	return nil
}

func validSectionKey(key string) bool {
	for _, k := range PromptSectionKeys {
		if k == key {
			return true
		}
	}
	return false
}
