package tournamentservice

import "errors"

var (
	// ErrTournamentNotFound is returned when the referenced tournament does
	// not exist.
	ErrTournamentNotFound = errors.New("tournament not found")

	// ErrParseFailed reports a protocol whose result table could not be
	// detected or was missing required columns.
	ErrParseFailed = errors.New("protocol parse failed")
)
