package playerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines player data operations. Callers pass the bun.IDB to
// run against, so the same methods work inside and outside transactions.
type Repository interface {
	Create(ctx context.Context, db bun.IDB, player *Player) error
	Get(ctx context.Context, db bun.IDB, id int64) (*Player, error)
	Update(ctx context.Context, db bun.IDB, player *Player) error
	Delete(ctx context.Context, db bun.IDB, id int64) error
	List(ctx context.Context, db bun.IDB) ([]*Player, error)
	Search(ctx context.Context, db bun.IDB, term string) ([]*Player, error)
}
