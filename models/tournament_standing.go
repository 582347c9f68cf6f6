package models

// Standing is one participant's row in the tournament table.
type Standing struct {
	ParticipantID int `json:"participant_id"`
	Played        int `json:"played"`
	Won           int `json:"won"`
	Lost          int `json:"lost"`
	Draws         int `json:"draws"`
	SetsWon       int `json:"sets_won"`
	SetsLost      int `json:"sets_lost"`
	Points        int `json:"points"`
	Rank          int `json:"rank"`
}

func (s Standing) SetDifference() int {
	return s.SetsWon - s.SetsLost
}
