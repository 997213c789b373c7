package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus enumerates the milestones of a generated email. Status
// records the furthest milestone reached; transitions never regress.
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailCopied  EmailStatus = "copied"
	EmailOpened  EmailStatus = "opened"
	EmailClicked EmailStatus = "clicked"
	// EmailFailed marks a generation that produced no usable output even
	// after the fallback path. Terminal.
	EmailFailed EmailStatus = "failed"
)

var statusRank = map[EmailStatus]int{
	EmailPending: 0,
	EmailCopied:  1,
	EmailOpened:  2,
	EmailClicked: 3,
	EmailFailed:  4,
}

// Rank orders statuses for monotonic milestone advancement.
func (s EmailStatus) Rank() int { return statusRank[s] }

// CanAdvanceTo reports whether moving to next is a forward transition.
func (s EmailStatus) CanAdvanceTo(next EmailStatus) bool {
	if s == EmailFailed {
		return false
	}
	return next.Rank() > s.Rank()
}

// EmailTrackingRecord is the persisted artifact for one generated email
// and its engagement lifecycle. Append-only except for status and the
// timestamp fields.
type EmailTrackingRecord struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	ProspectID       string      `json:"prospect_id" db:"prospect_id"`
	EmailNumber      int         `json:"email_number" db:"email_number"`
	Room             Room        `json:"room" db:"room"`
	Subject          string      `json:"subject" db:"subject"`
	BodyHTML         string      `json:"body_html" db:"body_html"`
	BodyText         string      `json:"body_text" db:"body_text"`
	GeneratedByAI    bool        `json:"generated_by_ai" db:"generated_by_ai"`
	TemplateUsed     *uuid.UUID  `json:"template_used,omitempty" db:"template_used"`
	PromptTokens     int         `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int         `json:"completion_tokens" db:"completion_tokens"`
	URLIncluded      string      `json:"url_included,omitempty" db:"url_included"`
	TrackingToken    string      `json:"tracking_token" db:"tracking_token"`
	Status           EmailStatus `json:"status" db:"status"`
	CopiedAt         *time.Time  `json:"copied_at,omitempty" db:"copied_at"`
	SentAt           *time.Time  `json:"sent_at,omitempty" db:"sent_at"`
	OpenedAt         *time.Time  `json:"opened_at,omitempty" db:"opened_at"`
	ClickedAt        *time.Time  `json:"clicked_at,omitempty" db:"clicked_at"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}
