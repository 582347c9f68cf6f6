package models

import "fmt"

// Side identifies one of the two competing sides of a match. Doubles positions
// (main/partner) fold onto their base side for scoring purposes.
type Side string

const (
	Side1        Side = "side1"
	Side2        Side = "side2"
	Side1Main    Side = "side1_main"
	Side1Partner Side = "side1_partner"
	Side2Main    Side = "side2_main"
	Side2Partner Side = "side2_partner"
)

// ParseSide accepts only the closed set of side values.
func ParseSide(s string) (Side, error) {
	side := Side(s)
	if !side.Valid() {
		return "", fmt.Errorf("unknown side %q", s)
	}
	return side, nil
}

func (s Side) Valid() bool {
	switch s {
	case Side1, Side2, Side1Main, Side1Partner, Side2Main, Side2Partner:
		return true
	}
	return false
}

// Base returns Side1 or Side2 for any valid side, and "" otherwise.
func (s Side) Base() Side {
	switch s {
	case Side1, Side1Main, Side1Partner:
		return Side1
	case Side2, Side2Main, Side2Partner:
		return Side2
	}
	return ""
}

func (s Side) Opponent() Side {
	switch s.Base() {
	case Side1:
		return Side2
	case Side2:
		return Side1
	}
	return ""
}

// SidePtr is a small helper for the nullable winner fields.
func SidePtr(s Side) *Side {
	return &s
}
