package playerdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	"github.com/nanashi-new/darts/config"
	"github.com/nanashi-new/darts/db/bundb"
)

func setupDB(t *testing.T) *bundb.DBService {
	t.Helper()
	dbs, err := bundb.NewDBService(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "darts.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { dbs.Close() })
	return dbs
}

func strPtr(v string) *string { return &v }

func TestPlayerCRUD(t *testing.T) {
	dbs := setupDB(t)
	repo := dbs.PlayerDB
	db := dbs.GetDB()
	ctx := context.Background()

	player := &playerdb.Player{
		LastName:  "Иванов",
		FirstName: "Иван",
		BirthDate: strPtr("2013-05-10"),
	}
	require.NoError(t, repo.Create(ctx, db, player))
	require.NotZero(t, player.ID)

	got, err := repo.Get(ctx, db, player.ID)
	require.NoError(t, err)
	require.Equal(t, "Иванов", got.LastName)
	require.Equal(t, strPtr("2013-05-10"), got.BirthDate)

	got.Gender = strPtr("М")
	require.NoError(t, repo.Update(ctx, db, got))
	got, err = repo.Get(ctx, db, player.ID)
	require.NoError(t, err)
	require.Equal(t, strPtr("М"), got.Gender)

	require.NoError(t, repo.Delete(ctx, db, player.ID))
	_, err = repo.Get(ctx, db, player.ID)
	require.ErrorIs(t, err, playerdb.ErrNotFound)
}

func TestPlayerUpdateMissing(t *testing.T) {
	dbs := setupDB(t)
	ctx := context.Background()

	err := dbs.PlayerDB.Update(ctx, dbs.GetDB(), &playerdb.Player{ID: 999, LastName: "Нет"})
	require.ErrorIs(t, err, playerdb.ErrNoRowsAffected)
	require.ErrorIs(t, dbs.PlayerDB.Delete(ctx, dbs.GetDB(), 999), playerdb.ErrNoRowsAffected)
}

func TestPlayerListOrder(t *testing.T) {
	dbs := setupDB(t)
	ctx := context.Background()
	db := dbs.GetDB()

	for _, p := range []*playerdb.Player{
		{LastName: "Сидоров", FirstName: "Сидор"},
		{LastName: "Иванов", FirstName: "Пётр"},
		{LastName: "Иванов", FirstName: "Иван"},
	} {
		require.NoError(t, dbs.PlayerDB.Create(ctx, db, p))
	}

	players, err := dbs.PlayerDB.List(ctx, db)
	require.NoError(t, err)
	require.Len(t, players, 3)
	require.Equal(t, "Иван", players[0].FirstName)
	require.Equal(t, "Пётр", players[1].FirstName)
	require.Equal(t, "Сидоров", players[2].LastName)
}

func TestPlayerSearch(t *testing.T) {
	dbs := setupDB(t)
	ctx := context.Background()
	db := dbs.GetDB()

	for _, p := range []*playerdb.Player{
		{LastName: "Иванов", FirstName: "Иван", Coach: strPtr("Смирнова О.")},
		{LastName: "Петров", FirstName: "Пётр", Club: strPtr("Метеор")},
		{LastName: "Сидоров", FirstName: "Сидор"},
	} {
		require.NoError(t, dbs.PlayerDB.Create(ctx, db, p))
	}

	tests := []struct {
		term string
		want int
	}{
		{"иванов", 1},
		{"ИВАНОВ", 1},
		{"метеор", 1},
		{"смирнова", 1},
		{"ов", 3},
		{"нет такого", 0},
	}
	for _, tt := range tests {
		players, err := dbs.PlayerDB.Search(ctx, db, tt.term)
		require.NoError(t, err)
		require.Len(t, players, tt.want, "term %q", tt.term)
	}
}
