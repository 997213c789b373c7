package settings

import "github.com/ignite/leadroom/internal/domain"

// DefaultThresholds is the shipped room boundary set.
func DefaultThresholds() domain.RoomThresholds {
	return domain.RoomThresholds{ProblemMax: 40, SolutionMax: 60, OfferMin: 61}
}

// DefaultScoringRules is the shipped rule catalog. Clients override
// individual fields per rule; the catalog itself only changes through
// the global admin path.
func DefaultScoringRules() domain.RulesByRoom {
	return domain.RulesByRoom{
		domain.RoomProblem: {
			"email_open": domain.PresenceRule{
				RuleCore:  domain.RuleCore{Key: "email_open", Enabled: true, Points: 5},
				Attribute: "email_opens",
			},
			"page_visit": domain.PresenceRule{
				RuleCore:      domain.RuleCore{Key: "page_visit", Enabled: true, Points: 0},
				Attribute:     "page_visits",
				PointsPerUnit: 3,
				UnitCap:       5,
				MaxPoints:     15,
				MinimumCount:  2,
			},
			"revenue": domain.ValueMatchRule{
				RuleCore:  domain.RuleCore{Key: "revenue", Enabled: true, Points: 10},
				Attribute: "revenue",
				Values:    []string{"Over $100M", "$50M - $100M"},
			},
			"minimum_threshold": domain.GatingRule{
				RuleCore:      domain.RuleCore{Key: "minimum_threshold", Enabled: true},
				RequiredScore: 10,
			},
		},
		domain.RoomSolution: {
			"email_click": domain.PresenceRule{
				RuleCore:     domain.RuleCore{Key: "email_click", Enabled: true, Points: 10},
				Attribute:    "email_clicks",
				MinimumCount: 1,
			},
			"company_size": domain.ValueMatchRule{
				RuleCore:  domain.RuleCore{Key: "company_size", Enabled: true, Points: 10},
				Attribute: "company_size",
				Values:    []string{"201-500", "501-1000", "1000+"},
			},
			"industry_alignment": domain.ExclusionRule{
				RuleCore:        domain.RuleCore{Key: "industry_alignment", Enabled: true, Points: 20},
				Attribute:       "industry",
				Values:          []string{"Software", "Financial Services", "Healthcare"},
				ExcludedValues:  []string{"Gambling", "Tobacco"},
				ExclusionPoints: -200,
			},
		},
		domain.RoomOffer: {
			"pricing_page_visit": domain.PresenceRule{
				RuleCore:     domain.RuleCore{Key: "pricing_page_visit", Enabled: true, Points: 15},
				Attribute:    "pricing_page_visits",
				MinimumCount: 1,
			},
			"state": domain.ValueMatchRule{
				RuleCore:  domain.RuleCore{Key: "state", Enabled: true, Points: 5},
				Attribute: "state",
				// Empty list: any state qualifies unless a client narrows it.
			},
			"demo_request": domain.PresenceRule{
				RuleCore:  domain.RuleCore{Key: "demo_request", Enabled: true, Points: 25},
				Attribute: "demo_requested",
			},
		},
	}
}
