package services

import "errors"

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	// ErrVersionConflict means another request saved the document first; the
	// client should reload and retry.
	ErrVersionConflict = errors.New("document was changed by another request")

	ErrMatchNotFound      = errors.New("match not found")
	ErrTeamMatchNotFound  = errors.New("team match not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	ErrInvalidParticipants = errors.New("participants do not fit the match type")
	ErrSideRequired        = errors.New("either side or player_id is required")
	ErrLineupLocked        = errors.New("line-up cannot change once submatches exist")
	ErrNoSubMatches        = errors.New("submatches have not been generated")

	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentFormatRequired          = errors.New("team tournaments need a team format")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotStarted              = errors.New("tournament has no schedule yet")
)
