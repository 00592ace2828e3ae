// Package bundb wires the bun database service: driver selection, model
// registration and schema initialization.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/nanashi-new/darts/app/modules/audit"
	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
	"github.com/nanashi-new/darts/config"
)

// DBService holds the shared bun.DB and the repository implementations.
type DBService struct {
	PlayerDB     *playerdb.PlayerDBImpl
	TournamentDB *tournamentdb.TournamentDBImpl
	ResultDB     *tournamentdb.ResultDBImpl

	db *bun.DB
}

// GetDB returns the underlying database handle.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the underlying connection.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewDBService opens the configured database (SQLite single-file store by
// default, Postgres when configured), registers models and ensures the
// schema exists.
func NewDBService(ctx context.Context, cfg config.DatabaseConfig) (*DBService, error) {
	sqldb, db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	if err := sqldb.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.RegisterModel(
		(*playerdb.Player)(nil),
		(*tournamentdb.Tournament)(nil),
		(*tournamentdb.Result)(nil),
		(*audit.Event)(nil),
	)

	if err := initSchema(ctx, db, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}

	return &DBService{
		PlayerDB:     playerdb.NewRepository(),
		TournamentDB: tournamentdb.NewTournamentRepository(),
		ResultDB:     tournamentdb.NewResultRepository(),
		db:           db,
	}, nil
}

func open(cfg config.DatabaseConfig) (*sql.DB, *bun.DB, error) {
	switch cfg.Driver {
	case "", "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Path+"?_pragma=foreign_keys(1)")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return sqldb, bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		return sqldb, bun.NewDB(sqldb, pgdialect.New()), nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func initSchema(ctx context.Context, db *bun.DB, driver string) error {
	if driver == "" || driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	models := []any{
		(*playerdb.Player)(nil),
		(*tournamentdb.Tournament)(nil),
		(*tournamentdb.Result)(nil),
		(*audit.Event)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().WithForeignKeys().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		name    string
		unique  bool
		model   any
		columns []string
	}{
		{"idx_players_name", false, (*playerdb.Player)(nil), []string{"last_name", "first_name"}},
		{"idx_players_birth_date", false, (*playerdb.Player)(nil), []string{"birth_date"}},
		{"idx_results_tournament", false, (*tournamentdb.Result)(nil), []string{"tournament_id"}},
		{"idx_results_player", false, (*tournamentdb.Result)(nil), []string{"player_id"}},
		{"uq_results_tournament_player", true, (*tournamentdb.Result)(nil), []string{"tournament_id", "player_id"}},
	}
	for _, idx := range indexes {
		q := db.NewCreateIndex().Model(idx.model).IfNotExists().Index(idx.name).Column(idx.columns...)
		if idx.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
