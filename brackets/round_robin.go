package brackets

import (
	"context"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

func (g *RoundRobinGenerator) GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]RoundPairings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return GenerateRoundRobin(params.Participants, params.Legs)
}

// GenerateRoundRobin builds a circle-method schedule. An odd field is padded
// with a bye; the participant drawn against it sits the round out. With two
// legs the second leg repeats the first with sides swapped.
func GenerateRoundRobin(participants []int, legs int) ([]RoundPairings, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientParticipants, len(participants))
	}
	seen := make(map[int]struct{}, len(participants))
	for _, id := range participants {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateParticipant, id)
		}
		seen[id] = struct{}{}
	}
	if legs != 2 {
		legs = 1
	}

	// Slots hold indexes into participants; bye marks the padding slot.
	n := len(participants)
	bye := -1
	if n%2 == 1 {
		n++
	}
	slots := make([]int, n)
	for i := range slots {
		if i < len(participants) {
			slots[i] = i
		} else {
			slots[i] = bye
		}
	}

	firstLeg := make([]RoundPairings, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := RoundPairings{Number: r + 1, Pairings: make([]Pairing, 0, n/2)}
		for i := 0; i < n/2; i++ {
			a, b := slots[i], slots[n-1-i]
			// Alternate the fixed participant's side so it is not always side1.
			if i == 0 && r%2 == 1 {
				a, b = b, a
			}
			switch {
			case a == bye:
				round.Byes = append(round.Byes, participants[b])
			case b == bye:
				round.Byes = append(round.Byes, participants[a])
			default:
				round.Pairings = append(round.Pairings, Pairing{Side1: participants[a], Side2: participants[b]})
			}
		}
		firstLeg = append(firstLeg, round)
		rotate(slots)
	}

	if legs == 1 {
		return firstLeg, nil
	}
	schedule := make([]RoundPairings, 0, 2*len(firstLeg))
	schedule = append(schedule, firstLeg...)
	for _, r := range firstLeg {
		mirrored := RoundPairings{
			Number:   r.Number + len(firstLeg),
			Pairings: make([]Pairing, 0, len(r.Pairings)),
			Byes:     append([]int(nil), r.Byes...),
		}
		for _, p := range r.Pairings {
			mirrored.Pairings = append(mirrored.Pairings, Pairing{Side1: p.Side2, Side2: p.Side1})
		}
		schedule = append(schedule, mirrored)
	}
	return schedule, nil
}

// rotate keeps slot 0 fixed and moves every other slot one position on.
func rotate(slots []int) {
	if len(slots) < 3 {
		return
	}
	last := slots[len(slots)-1]
	copy(slots[2:], slots[1:len(slots)-1])
	slots[1] = last
}
