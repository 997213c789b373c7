package templates

import (
	"sort"

	"github.com/ignite/leadroom/internal/domain"
)

// MergeForRoom merges campaign-scoped and global templates for one
// room. Campaign templates are included unconditionally and claim
// their order slots; global templates survive only if their slot is
// unclaimed. The result is sorted ascending by order, campaign before
// global on an exact tie, and truncated to the slot capacity.
func MergeForRoom(campaignTmpls, globalTmpls []domain.Template, room domain.Room) []domain.Template {
	claimed := make(map[int]bool)
	merged := make([]domain.Template, 0, domain.MaxTemplatesPerRoom)

	for _, t := range campaignTmpls {
		if t.Room != room {
			continue
		}
		claimed[t.Order] = true
		merged = append(merged, t)
	}
	for _, t := range globalTmpls {
		if t.Room != room || claimed[t.Order] {
			continue
		}
		merged = append(merged, t)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Order != merged[j].Order {
			return merged[i].Order < merged[j].Order
		}
		return !merged[i].IsGlobal() && merged[j].IsGlobal()
	})

	if len(merged) > domain.MaxTemplatesPerRoom {
		merged = merged[:domain.MaxTemplatesPerRoom]
	}
	return merged
}
