package tournamentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// TournamentDBImpl is the bun-backed tournament repository.
type TournamentDBImpl struct{}

// NewTournamentRepository creates a tournament repository.
func NewTournamentRepository() *TournamentDBImpl {
	return &TournamentDBImpl{}
}

func (r *TournamentDBImpl) Create(ctx context.Context, db bun.IDB, tournament *Tournament) error {
	if _, err := db.NewInsert().Model(tournament).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *TournamentDBImpl) Get(ctx context.Context, db bun.IDB, id int64) (*Tournament, error) {
	tournament := &Tournament{}
	err := db.NewSelect().Model(tournament).Where("t.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (r *TournamentDBImpl) Update(ctx context.Context, db bun.IDB, tournament *Tournament) error {
	tournament.UpdatedAt = time.Now()
	result, err := db.NewUpdate().Model(tournament).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.ID, err)
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

// Delete removes the tournament and its results. The results delete is
// explicit so cascade behavior does not depend on driver FK enforcement.
func (r *TournamentDBImpl) Delete(ctx context.Context, db bun.IDB, id int64) error {
	if _, err := db.NewDelete().Model((*Result)(nil)).Where("tournament_id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete results of tournament %d: %w", id, err)
	}
	result, err := db.NewDelete().Model((*Tournament)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
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

func (r *TournamentDBImpl) List(ctx context.Context, db bun.IDB) ([]*Tournament, error) {
	var tournaments []*Tournament
	err := db.NewSelect().
		Model(&tournaments).
		Order("date DESC", "name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *TournamentDBImpl) GetLatest(ctx context.Context, db bun.IDB) (*Tournament, error) {
	tournament := &Tournament{}
	err := db.NewSelect().
		Model(tournament).
		Order("date DESC", "id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest tournament: %w", err)
	}
	return tournament, nil
}

func (r *TournamentDBImpl) ListCategoryCodes(ctx context.Context, db bun.IDB) ([]string, error) {
	var codes []string
	err := db.NewSelect().
		Model((*Tournament)(nil)).
		ColumnExpr("DISTINCT category_code").
		Where("category_code IS NOT NULL AND category_code != ''").
		Order("category_code ASC").
		Scan(ctx, &codes)
	if err != nil {
		return nil, fmt.Errorf("failed to list category codes: %w", err)
	}
	return codes, nil
}
