package playerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	CreateFn func(ctx context.Context, db bun.IDB, player *Player) error
	GetFn    func(ctx context.Context, db bun.IDB, id int64) (*Player, error)
	UpdateFn func(ctx context.Context, db bun.IDB, player *Player) error
	DeleteFn func(ctx context.Context, db bun.IDB, id int64) error
	ListFn   func(ctx context.Context, db bun.IDB) ([]*Player, error)
	SearchFn func(ctx context.Context, db bun.IDB, term string) ([]*Player, error)
}

func (f *FakeRepository) Create(ctx context.Context, db bun.IDB, player *Player) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, db, player)
	}
	return nil
}

func (f *FakeRepository) Get(ctx context.Context, db bun.IDB, id int64) (*Player, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) Update(ctx context.Context, db bun.IDB, player *Player) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, db, player)
	}
	return nil
}

func (f *FakeRepository) Delete(ctx context.Context, db bun.IDB, id int64) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, db, id)
	}
	return nil
}

func (f *FakeRepository) List(ctx context.Context, db bun.IDB) ([]*Player, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, db)
	}
	return nil, nil
}

func (f *FakeRepository) Search(ctx context.Context, db bun.IDB, term string) ([]*Player, error) {
	if f.SearchFn != nil {
		return f.SearchFn(ctx, db, term)
	}
	return nil, nil
}
