package tournamentdb

import (
	"context"

	"github.com/uptrace/bun"
)

// FakeTournamentRepository is a fake TournamentRepository for testing.
type FakeTournamentRepository struct {
	CreateFn            func(ctx context.Context, db bun.IDB, tournament *Tournament) error
	GetFn               func(ctx context.Context, db bun.IDB, id int64) (*Tournament, error)
	UpdateFn            func(ctx context.Context, db bun.IDB, tournament *Tournament) error
	DeleteFn            func(ctx context.Context, db bun.IDB, id int64) error
	ListFn              func(ctx context.Context, db bun.IDB) ([]*Tournament, error)
	GetLatestFn         func(ctx context.Context, db bun.IDB) (*Tournament, error)
	ListCategoryCodesFn func(ctx context.Context, db bun.IDB) ([]string, error)
}

func (f *FakeTournamentRepository) Create(ctx context.Context, db bun.IDB, tournament *Tournament) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, db, tournament)
	}
	return nil
}

func (f *FakeTournamentRepository) Get(ctx context.Context, db bun.IDB, id int64) (*Tournament, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeTournamentRepository) Update(ctx context.Context, db bun.IDB, tournament *Tournament) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, db, tournament)
	}
	return nil
}

func (f *FakeTournamentRepository) Delete(ctx context.Context, db bun.IDB, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, db, id)
	}
	return nil
}

func (f *FakeTournamentRepository) List(ctx context.Context, db bun.IDB) ([]*Tournament, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, db)
	}
	return nil, nil
}

func (f *FakeTournamentRepository) GetLatest(ctx context.Context, db bun.IDB) (*Tournament, error) {
	if f.GetLatestFn != nil {
		return f.GetLatestFn(ctx, db)
	}
	return nil, ErrNotFound
}

func (f *FakeTournamentRepository) ListCategoryCodes(ctx context.Context, db bun.IDB) ([]string, error) {
	if f.ListCategoryCodesFn != nil {
		return f.ListCategoryCodesFn(ctx, db)
	}
	return nil, nil
}

// FakeResultRepository is a fake ResultRepository for testing.
type FakeResultRepository struct {
	CreateFn               func(ctx context.Context, db bun.IDB, result *Result) error
	GetFn                  func(ctx context.Context, db bun.IDB, id int64) (*Result, error)
	UpdateFn               func(ctx context.Context, db bun.IDB, result *Result) error
	DeleteFn               func(ctx context.Context, db bun.IDB, id int64) error
	GetByPairFn            func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*Result, error)
	ListForPlayerFn        func(ctx context.Context, db bun.IDB, playerID int64) ([]*Result, error)
	ReassignPlayerFn       func(ctx context.Context, db bun.IDB, resultID, playerID int64) error
	DeleteForPlayerFn      func(ctx context.Context, db bun.IDB, playerID int64) error
	ListWithPlayersFn      func(ctx context.Context, db bun.IDB, tournamentID int64) ([]*Result, error)
	ListResultsForRatingFn func(ctx context.Context, db bun.IDB, categoryCode, searchTerm string) ([]RatingEntry, error)
}

func (f *FakeResultRepository) Create(ctx context.Context, db bun.IDB, result *Result) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, db, result)
	}
	return nil
}

func (f *FakeResultRepository) Get(ctx context.Context, db bun.IDB, id int64) (*Result, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeResultRepository) Update(ctx context.Context, db bun.IDB, result *Result) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, db, result)
	}
	return nil
}

func (f *FakeResultRepository) Delete(ctx context.Context, db bun.IDB, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, db, id)
	}
	return nil
}

func (f *FakeResultRepository) GetByPair(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*Result, error) {
	if f.GetByPairFn != nil {
		return f.GetByPairFn(ctx, db, tournamentID, playerID)
	}
	return nil, ErrNotFound
}

func (f *FakeResultRepository) ListForPlayer(ctx context.Context, db bun.IDB, playerID int64) ([]*Result, error) {
	if f.ListForPlayerFn != nil {
		return f.ListForPlayerFn(ctx, db, playerID)
	}
	return nil, nil
}

func (f *FakeResultRepository) ReassignPlayer(ctx context.Context, db bun.IDB, resultID, playerID int64) error {
	if f.ReassignPlayerFn != nil {
		return f.ReassignPlayerFn(ctx, db, resultID, playerID)
	}
	return nil
}

func (f *FakeResultRepository) DeleteForPlayer(ctx context.Context, db bun.IDB, playerID int64) error {
	if f.DeleteForPlayerFn != nil {
		return f.DeleteForPlayerFn(ctx, db, playerID)
	}
	return nil
}

func (f *FakeResultRepository) ListWithPlayers(ctx context.Context, db bun.IDB, tournamentID int64) ([]*Result, error) {
	if f.ListWithPlayersFn != nil {
		return f.ListWithPlayersFn(ctx, db, tournamentID)
	}
	return nil, nil
}

func (f *FakeResultRepository) ListResultsForRating(ctx context.Context, db bun.IDB, categoryCode, searchTerm string) ([]RatingEntry, error) {
	if f.ListResultsForRatingFn != nil {
		return f.ListResultsForRatingFn(ctx, db, categoryCode, searchTerm)
	}
	return nil, nil
}
