package models

type FormatParticipantType string

const (
	FormatParticipantSolo FormatParticipantType = "solo"
	FormatParticipantTeam FormatParticipantType = "team"
)

// RoundRobinSettings configures schedule generation and standings points.
type RoundRobinSettings struct {
	Legs          int `json:"legs"` // 1 for single round-robin, 2 for double
	PointsForWin  int `json:"points_for_win"`
	PointsForLoss int `json:"points_for_loss"`
	// PointsForDraw is kept for forward compatibility; every completed match
	// currently has a winner.
	PointsForDraw int `json:"points_for_draw"`
}

// DefaultRoundRobinSettings mirrors the usual table-tennis league scoring.
func DefaultRoundRobinSettings() RoundRobinSettings {
	return RoundRobinSettings{Legs: 1, PointsForWin: 2, PointsForLoss: 1, PointsForDraw: 0}
}

// Normalize fills in defaults for zero or out-of-range values.
func (s RoundRobinSettings) Normalize() RoundRobinSettings {
	if s.Legs < 1 || s.Legs > 2 {
		s.Legs = 1
	}
	if s.PointsForWin == 0 && s.PointsForLoss == 0 && s.PointsForDraw == 0 {
		d := DefaultRoundRobinSettings()
		s.PointsForWin, s.PointsForLoss, s.PointsForDraw = d.PointsForWin, d.PointsForLoss, d.PointsForDraw
	}
	return s
}
