package models

import "time"

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// Round groups the match documents scheduled for one round of play.
type Round struct {
	Number    int      `json:"number"`
	MatchIDs  []string `json:"match_ids"`
	Byes      []int    `json:"byes,omitempty"`
	Completed bool     `json:"completed"`
}

// Tournament is a round-robin competition between players or teams.
type Tournament struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Description     *string               `json:"description,omitempty"`
	ParticipantType FormatParticipantType `json:"participant_type"`
	Participants    []int                 `json:"participants"`
	NumberOfSets    int                   `json:"number_of_sets"`
	TeamFormat      *TeamFormat           `json:"team_format,omitempty"`
	Settings        RoundRobinSettings    `json:"settings"`
	Rounds          []Round               `json:"rounds"`
	Standings       []Standing            `json:"standings"`
	Status          TournamentStatus      `json:"status"`
	OrganizerID     int                   `json:"organizer_id"`
	ScorerID        int                   `json:"scorer_id"`
	CreatedAt       time.Time             `json:"created_at"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	StandingsAt     *time.Time            `json:"standings_updated_at,omitempty"`
	Version         int                   `json:"version"`
}

// MatchIDs lists every match reference across all rounds, in round order.
func (t *Tournament) MatchIDs() []string {
	ids := make([]string, 0)
	for _, r := range t.Rounds {
		ids = append(ids, r.MatchIDs...)
	}
	return ids
}

func (t *Tournament) DocumentID() string { return t.ID }
func (t *Tournament) DocumentVersion() int { return t.Version }
func (t *Tournament) SetDocumentVersion(v int) { t.Version = v }
