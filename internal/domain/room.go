package domain

import "fmt"

// Room enumerates the pipeline stages a prospect can be classified into.
type Room string

const (
	RoomProblem  Room = "problem"
	RoomSolution Room = "solution"
	RoomOffer    Room = "offer"
)

// Rooms lists all valid rooms in pipeline order.
var Rooms = []Room{RoomProblem, RoomSolution, RoomOffer}

// Valid reports whether r is a known room.
func (r Room) Valid() bool {
	return r == RoomProblem || r == RoomSolution || r == RoomOffer
}

// RoomThresholds defines the score boundaries between rooms.
// Invariant: 0 < ProblemMax < SolutionMax < OfferMin.
type RoomThresholds struct {
	ProblemMax  int `json:"problem_max" db:"problem_max"`
	SolutionMax int `json:"solution_max" db:"solution_max"`
	OfferMin    int `json:"offer_min" db:"offer_min"`
}

// Validate checks the threshold ordering invariant.
func (t RoomThresholds) Validate() error {
	if t.ProblemMax <= 0 {
		return fmt.Errorf("%w: problem_max must be positive, got %d", ErrValidation, t.ProblemMax)
	}
	if t.SolutionMax <= t.ProblemMax {
		return fmt.Errorf("%w: solution_max (%d) must exceed problem_max (%d)", ErrValidation, t.SolutionMax, t.ProblemMax)
	}
	if t.OfferMin <= t.SolutionMax {
		return fmt.Errorf("%w: offer_min (%d) must exceed solution_max (%d)", ErrValidation, t.OfferMin, t.SolutionMax)
	}
	return nil
}

// HasDeadZone reports whether a gap exists between SolutionMax and
// OfferMin. Scores in the gap fall back to the solution room; the
// configuration is legal but worth a warning at save time.
func (t RoomThresholds) HasDeadZone() bool {
	return t.OfferMin > t.SolutionMax+1
}

// Classify maps a total score onto a room. The mapping is total and
// non-overlapping for valid thresholds: scores above SolutionMax but
// below OfferMin classify as solution.
func (t RoomThresholds) Classify(score int) Room {
	switch {
	case score <= t.ProblemMax:
		return RoomProblem
	case score >= t.OfferMin:
		return RoomOffer
	default:
		return RoomSolution
	}
}

// SettingsSource records whether effective settings derive from global
// defaults or a client override.
type SettingsSource string

const (
	SourceGlobal SettingsSource = "global"
	SourceClient SettingsSource = "client"
)
