package models

import "time"

type Stroke string

const (
	StrokeServe    Stroke = "serve"
	StrokeForehand Stroke = "forehand"
	StrokeBackhand Stroke = "backhand"
	StrokeSmash    Stroke = "smash"
	StrokeLoop     Stroke = "loop"
	StrokePush     Stroke = "push"
	StrokeBlock    Stroke = "block"
	StrokeFlick    Stroke = "flick"
	StrokeLob      Stroke = "lob"
	StrokeChop     Stroke = "chop"
)

type ShotOutcome string

const (
	OutcomeWinner ShotOutcome = "winner"
	OutcomeError  ShotOutcome = "error"
	OutcomeLet    ShotOutcome = "let"
	// OutcomeInPlay marks rally shots before the point-ending one.
	OutcomeInPlay ShotOutcome = "in_play"
)

type ErrorType string

const (
	ErrorNet        ErrorType = "net"
	ErrorOut        ErrorType = "out"
	ErrorServeFault ErrorType = "serve_fault"
	ErrorMiss       ErrorType = "miss"
)

// Shot is one entry of a game's shot log. Shots appended by the same scoring
// event share a Rally number; the last shot of a rally ended the point.
type Shot struct {
	Side      Side        `json:"side"`
	PlayerID  *int        `json:"player_id,omitempty"`
	Stroke    Stroke      `json:"stroke,omitempty"`
	Outcome   ShotOutcome `json:"outcome"`
	ErrorType *ErrorType  `json:"error_type,omitempty"`
	Rally     int         `json:"rally"`
	PointTo   Side        `json:"point_to"`
	Timestamp time.Time   `json:"timestamp"`
}

// Game is a single game to 11, win by 2.
type Game struct {
	GameNumber int        `json:"game_number"`
	Side1Score int        `json:"side1_score"`
	Side2Score int        `json:"side2_score"`
	Shots      []Shot     `json:"shots"`
	Winner     *Side      `json:"winner,omitempty"`
	Completed  bool       `json:"completed"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
}

func NewGame(number int) Game {
	return Game{GameNumber: number, Shots: []Shot{}}
}

// Score returns the score of the given base side.
func (g *Game) Score(side Side) int {
	if side.Base() == Side2 {
		return g.Side2Score
	}
	return g.Side1Score
}

// TotalPoints is the number of rallies won so far in the game.
func (g *Game) TotalPoints() int {
	return g.Side1Score + g.Side2Score
}

// IsEmpty reports a game nobody has scored in yet.
func (g *Game) IsEmpty() bool {
	return g.Side1Score == 0 && g.Side2Score == 0 && len(g.Shots) == 0 && g.Winner == nil
}

// LastRally returns the highest rally number in the shot log, 0 if none.
func (g *Game) LastRally() int {
	last := 0
	for _, shot := range g.Shots {
		if shot.Rally > last {
			last = shot.Rally
		}
	}
	return last
}
