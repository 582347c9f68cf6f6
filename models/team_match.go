package models

import "time"

// TeamFormat determines the submatch line-up of a team match.
type TeamFormat string

const (
	FormatSwaythling         TeamFormat = "swaythling_format"
	FormatSingleDoubleSingle TeamFormat = "single_double_single"
	FormatFiveSinglesFull    TeamFormat = "five_singles_full"
	FormatThreeSingles       TeamFormat = "three_singles"
)

// Role is a roster position label. Home teams use A–E, away teams X, Y, Z, P, Q.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
	RoleC Role = "C"
	RoleD Role = "D"
	RoleE Role = "E"
	RoleX Role = "X"
	RoleY Role = "Y"
	RoleZ Role = "Z"
	RoleP Role = "P"
	RoleQ Role = "Q"
)

// RoleAssignments maps a role to the player filling it.
type RoleAssignments map[Role]int

type TeamTally struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// SubMatch is one tie of a team match.
type SubMatch struct {
	Number       int       `json:"number"`
	Type         MatchType `json:"type"`
	Side1Roles   []Role    `json:"side1_roles"`
	Side2Roles   []Role    `json:"side2_roles"`
	Side1Players []int     `json:"side1_players"`
	Side2Players []int     `json:"side2_players"`

	Scoresheet
}

// SideOfPlayer resolves a submatch participant to their side.
func (s *SubMatch) SideOfPlayer(playerID int) (Side, bool) {
	for _, id := range s.Side1Players {
		if id == playerID {
			return Side1, true
		}
	}
	for _, id := range s.Side2Players {
		if id == playerID {
			return Side2, true
		}
	}
	return "", false
}

// TeamMatch is a tie between two teams played as a series of submatches.
// Side1 stands for Team1 and Side2 for Team2.
type TeamMatch struct {
	ID              string          `json:"id"`
	TournamentID    *string         `json:"tournament_id,omitempty"`
	Round           *int            `json:"round,omitempty"`
	Team1ID         int             `json:"team1_id"`
	Team2ID         int             `json:"team2_id"`
	Format          TeamFormat      `json:"format"`
	NumberOfSets    int             `json:"number_of_sets"`
	Team1Roles      RoleAssignments `json:"team1_roles,omitempty"`
	Team2Roles      RoleAssignments `json:"team2_roles,omitempty"`
	SubMatches      []SubMatch      `json:"submatches"`
	CurrentSubMatch int             `json:"current_submatch"`
	Tally           TeamTally       `json:"tally"`
	Status          MatchStatus     `json:"status"`
	Winner          *Side           `json:"winner,omitempty"`
	WinnerTeamID    *int            `json:"winner_team_id,omitempty"`
	ScorerID        int             `json:"scorer_id"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	Version         int             `json:"version"`
}

func (t *TeamMatch) TeamID(side Side) int {
	if side.Base() == Side2 {
		return t.Team2ID
	}
	return t.Team1ID
}

func (t *TeamMatch) IsTerminal() bool {
	return t.Status == MatchStatusCompleted || t.Status == MatchStatusCancelled
}

func (t *TeamMatch) DocumentID() string { return t.ID }
func (t *TeamMatch) DocumentVersion() int { return t.Version }
func (t *TeamMatch) SetDocumentVersion(v int) { t.Version = v }
