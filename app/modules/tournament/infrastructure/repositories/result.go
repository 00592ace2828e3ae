package tournamentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// ResultDBImpl is the bun-backed result repository.
type ResultDBImpl struct{}

// NewResultRepository creates a result repository.
func NewResultRepository() *ResultDBImpl {
	return &ResultDBImpl{}
}

func (r *ResultDBImpl) Create(ctx context.Context, db bun.IDB, result *Result) error {
	if _, err := db.NewInsert().Model(result).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *ResultDBImpl) Get(ctx context.Context, db bun.IDB, id int64) (*Result, error) {
	result := &Result{}
	err := db.NewSelect().Model(result).Where("r.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get result %d: %w", id, err)
	}
	return result, nil
}

func (r *ResultDBImpl) Update(ctx context.Context, db bun.IDB, result *Result) error {
	res, err := db.NewUpdate().Model(result).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update result %d: %w", result.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *ResultDBImpl) Delete(ctx context.Context, db bun.IDB, id int64) error {
	res, err := db.NewDelete().Model((*Result)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete result %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *ResultDBImpl) GetByPair(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*Result, error) {
	result := &Result{}
	err := db.NewSelect().
		Model(result).
		Where("r.tournament_id = ? AND r.player_id = ?", tournamentID, playerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get result for tournament %d player %d: %w", tournamentID, playerID, err)
	}
	return result, nil
}

func (r *ResultDBImpl) ListForPlayer(ctx context.Context, db bun.IDB, playerID int64) ([]*Result, error) {
	var results []*Result
	err := db.NewSelect().
		Model(&results).
		Where("r.player_id = ?", playerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for player %d: %w", playerID, err)
	}
	return results, nil
}

func (r *ResultDBImpl) ReassignPlayer(ctx context.Context, db bun.IDB, resultID, playerID int64) error {
	res, err := db.NewUpdate().
		Model((*Result)(nil)).
		Set("player_id = ?", playerID).
		Where("id = ?", resultID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reassign result %d: %w", resultID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *ResultDBImpl) DeleteForPlayer(ctx context.Context, db bun.IDB, playerID int64) error {
	if _, err := db.NewDelete().Model((*Result)(nil)).Where("player_id = ?", playerID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete results for player %d: %w", playerID, err)
	}
	return nil
}

func (r *ResultDBImpl) ListWithPlayers(ctx context.Context, db bun.IDB, tournamentID int64) ([]*Result, error) {
	var results []*Result
	err := db.NewSelect().
		Model(&results).
		Relation("Player").
		Where("r.tournament_id = ?", tournamentID).
		Order("points_total DESC", "place ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results of tournament %d: %w", tournamentID, err)
	}
	return results, nil
}

func (r *ResultDBImpl) ListResultsForRating(ctx context.Context, db bun.IDB, categoryCode, searchTerm string) ([]RatingEntry, error) {
	q := db.NewSelect().
		ColumnExpr("r.player_id AS player_id").
		ColumnExpr("r.points_total AS points_total").
		ColumnExpr("t.id AS tournament_id").
		ColumnExpr("t.date AS tournament_date").
		ColumnExpr("p.last_name AS last_name").
		ColumnExpr("p.first_name AS first_name").
		ColumnExpr("p.middle_name AS middle_name").
		TableExpr("results AS r").
		Join("JOIN tournaments AS t ON t.id = r.tournament_id").
		Join("JOIN players AS p ON p.id = r.player_id").
		OrderExpr("t.date DESC").
		OrderExpr("t.id DESC")

	if categoryCode != "" {
		q = q.Where("t.category_code = ?", categoryCode)
	}

	var entries []RatingEntry
	if err := q.Scan(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to list rating results: %w", err)
	}

	// Name filtering happens in Go: sqlite's lower() folds ASCII only,
	// which breaks Cyrillic names.
	needle := strings.ToLower(strings.TrimSpace(searchTerm))
	if needle == "" {
		return entries, nil
	}
	var matched []RatingEntry
	for _, entry := range entries {
		middle := ""
		if entry.MiddleName != nil {
			middle = *entry.MiddleName
		}
		if strings.Contains(strings.ToLower(entry.LastName), needle) ||
			strings.Contains(strings.ToLower(entry.FirstName), needle) ||
			strings.Contains(strings.ToLower(middle), needle) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}
