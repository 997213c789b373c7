package domain

import "time"

// ProspectAttributes carries the scorable facts about a prospect, split
// by shape: engagement counters, boolean signals, and categorical traits
// (revenue band, company size, industry, state).
type ProspectAttributes struct {
	Counts map[string]int    `json:"counts,omitempty"`
	Flags  map[string]bool   `json:"flags,omitempty"`
	Traits map[string]string `json:"traits,omitempty"`
}

// Count returns the named counter, folding boolean signals in as 0/1 so
// presence rules can target either shape.
func (a ProspectAttributes) Count(name string) int {
	if n, ok := a.Counts[name]; ok {
		return n
	}
	if a.Flags[name] {
		return 1
	}
	return 0
}

// Trait returns the named categorical trait and whether it was set.
func (a ProspectAttributes) Trait(name string) (string, bool) {
	v, ok := a.Traits[name]
	return v, ok
}

// Prospect is the engagement state the tracking pipeline maintains for
// one lead. SentURLs is a deduplicated append-only set; the sequence
// position advances once per distinct copy event.
type Prospect struct {
	ID                    string             `json:"id" db:"id"`
	ClientID              string             `json:"client_id" db:"client_id"`
	Email                 string             `json:"email" db:"email"`
	Attributes            ProspectAttributes `json:"attributes"`
	CurrentRoom           Room               `json:"current_room" db:"current_room"`
	SentURLs              []string           `json:"sent_urls" db:"sent_urls"`
	EmailSequencePosition int                `json:"email_sequence_position" db:"email_sequence_position"`
	LastEmailAt           *time.Time         `json:"last_email_at,omitempty" db:"last_email_at"`
	CreatedAt             time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" db:"updated_at"`
}

// HasSentURL reports whether the URL was already recorded for this
// prospect.
func (p *Prospect) HasSentURL(url string) bool {
	for _, u := range p.SentURLs {
		if u == url {
			return true
		}
	}
	return false
}
