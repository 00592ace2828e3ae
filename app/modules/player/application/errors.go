package playerservice

import "errors"

// Domain errors for the player service.
var (
	// ErrAmbiguousPlayer indicates multiple candidates matched and no
	// resolver or remembered rule could disambiguate them.
	ErrAmbiguousPlayer = errors.New("ambiguous player match")

	// ErrImportCancelled indicates the resolver cancelled the import.
	ErrImportCancelled = errors.New("import cancelled")

	// ErrPlayerNotFound indicates the requested player does not exist.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrSamePlayer indicates a merge of a player into itself.
	ErrSamePlayer = errors.New("cannot merge a player into itself")

	// ErrUnknownCandidate indicates the resolver selected a player id that
	// was not among the offered candidates.
	ErrUnknownCandidate = errors.New("selected player is not among the candidates")
)
