package scoring

import "errors"

// Error kinds returned by the scoring core. Operations either apply fully or
// return one of these and leave their input unchanged.
var (
	ErrInvalidSide             = errors.New("side does not belong to this match")
	ErrInvalidScore            = errors.New("score must be a non-negative integer")
	ErrGameAlreadyCompleted    = errors.New("game is already completed")
	ErrGameNotFound            = errors.New("game not found")
	ErrMissingRoleAssignment   = errors.New("required role is not assigned on the roster")
	ErrInvalidRole             = errors.New("role is not valid for this team")
	ErrUnknownTeamFormat       = errors.New("unknown team match format")
	ErrInvalidNumberOfSets     = errors.New("number of sets must be odd and between 1 and 9")
	ErrSubMatchNotFound        = errors.New("submatch not found")
	ErrSubMatchNotDecided      = errors.New("submatch result does not match its scoresheet")
	ErrMatchNotActive          = errors.New("match is not in play")
	ErrMatchAlreadyCompleted   = errors.New("match is already completed")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
)
