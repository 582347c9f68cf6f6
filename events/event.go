package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	MatchUpdated        EventType = "match.updated"
	MatchCompleted      EventType = "match.completed"
	TeamMatchUpdated    EventType = "team_match.updated"
	TeamMatchCompleted  EventType = "team_match.completed"
	TournamentUpdated   EventType = "tournament.updated"
	StandingsRecomputed EventType = "tournament.standings"
)

// Event is a state change of one document. Room is the document ID that live
// viewers subscribe to.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	Room      string      `json:"room_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

func NewEvent(t EventType, room string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Room:      room,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout delivers an event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
