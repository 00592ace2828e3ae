package tournamentdb

import (
	"context"

	"github.com/uptrace/bun"
)

// TournamentRepository defines tournament data operations.
type TournamentRepository interface {
	Create(ctx context.Context, db bun.IDB, tournament *Tournament) error
	Get(ctx context.Context, db bun.IDB, id int64) (*Tournament, error)
	Update(ctx context.Context, db bun.IDB, tournament *Tournament) error
	// Delete removes the tournament and cascades its results.
	Delete(ctx context.Context, db bun.IDB, id int64) error
	List(ctx context.Context, db bun.IDB) ([]*Tournament, error)
	GetLatest(ctx context.Context, db bun.IDB) (*Tournament, error)
	ListCategoryCodes(ctx context.Context, db bun.IDB) ([]string, error)
}

// ResultRepository defines result data operations, including the joined
// queries the rating and recalculation flows read from.
type ResultRepository interface {
	Create(ctx context.Context, db bun.IDB, result *Result) error
	Get(ctx context.Context, db bun.IDB, id int64) (*Result, error)
	Update(ctx context.Context, db bun.IDB, result *Result) error
	Delete(ctx context.Context, db bun.IDB, id int64) error
	GetByPair(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*Result, error)
	ListForPlayer(ctx context.Context, db bun.IDB, playerID int64) ([]*Result, error)
	// ReassignPlayer moves one result row to another player.
	ReassignPlayer(ctx context.Context, db bun.IDB, resultID, playerID int64) error
	DeleteForPlayer(ctx context.Context, db bun.IDB, playerID int64) error
	// ListWithPlayers returns a tournament's results with player rows
	// attached, ordered by points descending then place ascending.
	ListWithPlayers(ctx context.Context, db bun.IDB, tournamentID int64) ([]*Result, error)
	// ListResultsForRating returns joined result+player+tournament rows
	// ordered by tournament date descending.
	ListResultsForRating(ctx context.Context, db bun.IDB, categoryCode, searchTerm string) ([]RatingEntry, error)
}
