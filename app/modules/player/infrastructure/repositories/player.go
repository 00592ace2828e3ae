package playerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// PlayerDBImpl is the bun-backed player repository.
type PlayerDBImpl struct{}

// NewRepository creates a player repository.
func NewRepository() *PlayerDBImpl {
	return &PlayerDBImpl{}
}

func (r *PlayerDBImpl) Create(ctx context.Context, db bun.IDB, player *Player) error {
	if _, err := db.NewInsert().Model(player).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *PlayerDBImpl) Get(ctx context.Context, db bun.IDB, id int64) (*Player, error) {
	player := &Player{}
	err := db.NewSelect().Model(player).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

func (r *PlayerDBImpl) Update(ctx context.Context, db bun.IDB, player *Player) error {
	player.UpdatedAt = time.Now()
	result, err := db.NewUpdate().Model(player).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *PlayerDBImpl) Delete(ctx context.Context, db bun.IDB, id int64) error {
	result, err := db.NewDelete().Model((*Player)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *PlayerDBImpl) List(ctx context.Context, db bun.IDB) ([]*Player, error) {
	var players []*Player
	err := db.NewSelect().
		Model(&players).
		Order("last_name ASC", "first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// Search matches case-insensitively in Go rather than SQL: sqlite's lower()
// folds ASCII only, which breaks Cyrillic names.
func (r *PlayerDBImpl) Search(ctx context.Context, db bun.IDB, term string) ([]*Player, error) {
	var players []*Player
	err := db.NewSelect().
		Model(&players).
		Order("last_name ASC", "first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return players, nil
	}
	contains := func(value *string) bool {
		return value != nil && strings.Contains(strings.ToLower(*value), needle)
	}
	var matched []*Player
	for _, p := range players {
		if strings.Contains(strings.ToLower(p.LastName), needle) ||
			strings.Contains(strings.ToLower(p.FirstName), needle) ||
			contains(p.MiddleName) || contains(p.Club) || contains(p.Coach) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
