package brackets

import (
	"context"
	"errors"
)

var (
	ErrInsufficientParticipants = errors.New("at least two participants are required to build a schedule")
	ErrDuplicateParticipant     = errors.New("participant appears more than once")
)

type GenerateScheduleParams struct {
	Participants []int
	// Legs is 1 for a single round robin and 2 for a double one.
	Legs int
}

// Pairing is one scheduled meeting; Side1 plays as side1 of the match.
type Pairing struct {
	Side1 int `json:"side1"`
	Side2 int `json:"side2"`
}

type RoundPairings struct {
	Number   int       `json:"number"`
	Pairings []Pairing `json:"pairings"`
	// Byes lists participants sitting the round out.
	Byes []int `json:"byes,omitempty"`
}

type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]RoundPairings, error)

	GetName() string
}
