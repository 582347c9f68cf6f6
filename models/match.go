package models

import "time"

type MatchStatus string

const (
	StatusScheduled      MatchStatus = "scheduled"
	StatusInProgress     MatchStatus = "in_progress"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

type MatchType string

const (
	MatchTypeSingles MatchType = "singles"
	MatchTypeDoubles MatchType = "doubles"
)

// SetTally counts games won per side.
type SetTally struct {
	Side1 int `json:"side1"`
	Side2 int `json:"side2"`
}

func (t SetTally) For(side Side) int {
	if side.Base() == Side2 {
		return t.Side2
	}
	return t.Side1
}

// Scoresheet is the game-by-game state shared by individual matches and the
// submatches of a team match.
type Scoresheet struct {
	NumberOfSets int         `json:"number_of_sets"`
	Games        []Game      `json:"games"`
	CurrentGame  int         `json:"current_game"`
	SetTally     SetTally    `json:"set_tally"`
	Status       MatchStatus `json:"status"`
	Winner       *Side       `json:"winner,omitempty"`
	FirstServer  *Side       `json:"first_server,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// NewScoresheet returns a scheduled sheet holding an empty game 1.
func NewScoresheet(numberOfSets int) Scoresheet {
	return Scoresheet{
		NumberOfSets: numberOfSets,
		Games:        []Game{NewGame(1)},
		CurrentGame:  1,
		Status:       StatusScheduled,
	}
}

// Game returns the game with the given number, or nil.
func (s *Scoresheet) Game(number int) *Game {
	for i := range s.Games {
		if s.Games[i].GameNumber == number {
			return &s.Games[i]
		}
	}
	return nil
}

// Current returns the game being played, or nil on a malformed sheet.
func (s *Scoresheet) Current() *Game {
	return s.Game(s.CurrentGame)
}

func (s *Scoresheet) IsTerminal() bool {
	return s.Status == MatchStatusCompleted || s.Status == MatchStatusCancelled
}

// Match is an individual (singles or doubles) match document.
type Match struct {
	ID           string    `json:"id"`
	TournamentID *string   `json:"tournament_id,omitempty"`
	Round        *int      `json:"round,omitempty"`
	Type         MatchType `json:"type"`
	// Participants holds 2 player IDs for singles and 4 for doubles; the
	// first half plays for side1, the second half for side2.
	Participants []int     `json:"participants"`
	ScorerID     int       `json:"scorer_id"`
	CreatedBy    int       `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	Version      int       `json:"version"`

	Scoresheet
}

func (m *Match) SidePlayers(side Side) []int {
	half := len(m.Participants) / 2
	switch side.Base() {
	case Side1:
		return m.Participants[:half]
	case Side2:
		return m.Participants[half:]
	}
	return nil
}

// SideOfPlayer resolves a participant to the side they play for.
func (m *Match) SideOfPlayer(playerID int) (Side, bool) {
	for i, id := range m.Participants {
		if id == playerID {
			if i < len(m.Participants)/2 {
				return Side1, true
			}
			return Side2, true
		}
	}
	return "", false
}

func (m *Match) DocumentID() string { return m.ID }
func (m *Match) DocumentVersion() int { return m.Version }
func (m *Match) SetDocumentVersion(v int) { m.Version = v }
