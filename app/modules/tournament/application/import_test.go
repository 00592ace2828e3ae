package tournamentservice

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nanashi-new/darts/app/modules/classify"
	playerservice "github.com/nanashi-new/darts/app/modules/player/application"
	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
	"github.com/nanashi-new/darts/config"
	"github.com/nanashi-new/darts/db/bundb"
)

type fixture struct {
	svc     *Service
	players *playerservice.Service
	dbs     *bundb.DBService
	dir     string
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	dbs, err := bundb.NewDBService(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(dir, "darts.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { dbs.Close() })

	logger := slog.Default()
	rules := playerservice.NewFileRuleStore(filepath.Join(dir, "match_rules.json"))
	players := playerservice.NewService(dbs.GetDB(), dbs.PlayerDB, dbs.ResultDB, rules, nil, nil, logger)
	svc := NewService(dbs.GetDB(), dbs.TournamentDB, dbs.ResultDB, players,
		classify.NewLoader(), filepath.Join(dir, "norms.xlsx"), &parsers.Detector{}, nil, logger)
	return &fixture{svc: svc, players: players, dbs: dbs, dir: dir}
}

func writeProtocol(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func standardProtocol() [][]any {
	return [][]any{
		{"ФИО", "Дата рождения", "Место", "Очки"},
		{"Иванов Иван", "10.05.2013", 1, 350},
		{"Петров Пётр", "2012", 2, 320},
	}
}

func TestImportTournament(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	path := filepath.Join(f.dir, "Кубок_города_2024-05-18.xlsx")
	writeProtocol(t, path, standardProtocol())

	report, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: path})
	require.NoError(t, err)
	require.Equal(t, 2, report.Imported)
	require.Zero(t, report.Skipped)
	require.True(t, report.NormsLoaded)

	tournament, err := f.svc.Get(ctx, report.TournamentID)
	require.NoError(t, err)
	require.Equal(t, "Кубок города", tournament.Name)
	require.Equal(t, "2024-05-18", tournament.DateString())
	require.Equal(t, []string{path}, tournament.GetSourceFiles())

	results, err := f.svc.Results(ctx, report.TournamentID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		require.Equal(t, result.PointsPlace+result.PointsClassification, result.PointsTotal)
		require.Equal(t, "v2", result.CalcVersion)
	}
	// Winner first: 14 place points, no classification without a gender.
	require.Equal(t, 14, results[0].PointsTotal)
	require.Equal(t, 12, results[1].PointsTotal)

	players, err := f.players.List(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2)
}

func TestImportTournamentExplicitOptions(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	path := filepath.Join(f.dir, "protocol.xlsx")
	writeProtocol(t, path, standardProtocol())

	report, err := f.svc.ImportTournament(ctx, ImportOptions{
		FilePath:     path,
		Name:         "Первенство области",
		Date:         "2024-06-01",
		CategoryCode: "U12",
	})
	require.NoError(t, err)

	tournament, err := f.svc.Get(ctx, report.TournamentID)
	require.NoError(t, err)
	require.Equal(t, "Первенство области", tournament.Name)
	require.Equal(t, "2024-06-01", tournament.DateString())
	require.Equal(t, "U12", *tournament.CategoryCode)
}

func TestImportTournamentReusesKnownPlayers(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	first := filepath.Join(f.dir, "тур1_2024-03-01.xlsx")
	writeProtocol(t, first, standardProtocol())
	second := filepath.Join(f.dir, "тур2_2024-04-01.xlsx")
	writeProtocol(t, second, standardProtocol())

	_, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: first})
	require.NoError(t, err)
	_, err = f.svc.ImportTournament(ctx, ImportOptions{FilePath: second})
	require.NoError(t, err)

	players, err := f.players.List(ctx)
	require.NoError(t, err)
	require.Len(t, players, 2, "the same players must not be duplicated")
}

func TestImportTournamentSkipsEmptyAndRepeatedRows(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	path := filepath.Join(f.dir, "протокол_2024-05-18.xlsx")
	writeProtocol(t, path, [][]any{
		{"ФИО", "Место", "Очки"},
		{"Иванов Иван", 1, 350},
		{"", 2, 300},
		{"Иванов Иван", 3, 280},
	})

	report, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: path})
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)
	require.Equal(t, 2, report.Skipped)
	require.NotEmpty(t, report.Warnings)
}

func TestImportTournamentUnparseableProtocol(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	path := filepath.Join(f.dir, "пусто.xlsx")
	writeProtocol(t, path, [][]any{
		{"Протокол без таблицы"},
	})

	_, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: path})
	require.ErrorIs(t, err, ErrParseFailed)

	tournaments, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, tournaments, "an unparseable protocol must not create a tournament")
}

func TestImportTournamentFailedRowsKeepTournamentRecord(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// Two namesake players with no resolver make the row unresolvable.
	for _, birth := range []string{"2012-03-01", "2013-05-10"} {
		b := birth
		player := &playerdb.Player{LastName: "Иванов", FirstName: "Иван", BirthDate: &b}
		require.NoError(t, f.dbs.PlayerDB.Create(ctx, f.dbs.GetDB(), player))
	}

	path := filepath.Join(f.dir, "Кубок_города_2024-05-18.xlsx")
	writeProtocol(t, path, [][]any{
		{"ФИО", "Место", "Очки"},
		{"Иванов Иван", 1, 350},
	})

	_, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: path})
	require.ErrorIs(t, err, playerservice.ErrAmbiguousPlayer)

	// The tournament row survives as a record of the attempt; the rows do not.
	tournaments, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tournaments, 1)
	require.Equal(t, "Кубок города", tournaments[0].Name)
	require.Equal(t, []string{path}, tournaments[0].GetSourceFiles())

	results, err := f.svc.Results(ctx, tournaments[0].ID)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRecalculateTournament(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	path := filepath.Join(f.dir, "Кубок_2024-05-18.xlsx")
	writeProtocol(t, path, standardProtocol())
	imported, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: path})
	require.NoError(t, err)

	t.Run("recalculation over unchanged data updates nothing", func(t *testing.T) {
		report, err := f.svc.RecalculateTournament(ctx, imported.TournamentID)
		require.NoError(t, err)
		require.Equal(t, 2, report.Processed)
		require.Zero(t, report.Updated)
	})

	t.Run("a gender backfill changes classification on recalc", func(t *testing.T) {
		players, err := f.players.Search(ctx, "Иванов")
		require.NoError(t, err)
		require.Len(t, players, 1)
		players[0].Gender = strPtr("М")
		require.NoError(t, f.dbs.PlayerDB.Update(ctx, f.dbs.GetDB(), players[0]))

		report, err := f.svc.RecalculateTournament(ctx, imported.TournamentID)
		require.NoError(t, err)
		require.Equal(t, 1, report.Updated)

		results, err := f.svc.Results(ctx, imported.TournamentID)
		require.NoError(t, err)
		for _, result := range results {
			require.Equal(t, result.PointsPlace+result.PointsClassification, result.PointsTotal)
			if result.Player.LastName == "Иванов" {
				// Born 2013-05-10, tournament 2024-05-18: U12; a 350 set
				// score clears the 320 threshold.
				require.Equal(t, strPtr("1юн"), result.RankSet)
				require.Equal(t, 6, result.PointsClassification)
				require.Equal(t, 20, result.PointsTotal)
			}
		}
	})

	t.Run("missing tournament", func(t *testing.T) {
		_, err := f.svc.RecalculateTournament(ctx, 999)
		require.ErrorIs(t, err, ErrTournamentNotFound)
	})
}

func TestRecalculateAll(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, name := range []string{"тур1_2024-03-01.xlsx", "тур2_2024-04-01.xlsx"} {
		path := filepath.Join(f.dir, name)
		writeProtocol(t, path, standardProtocol())
		_, err := f.svc.ImportTournament(ctx, ImportOptions{FilePath: path})
		require.NoError(t, err)
	}

	report, err := f.svc.RecalculateAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Tournaments)
	require.Equal(t, 4, report.Processed)
	require.Zero(t, report.Updated)
	require.Empty(t, report.Errors)
}

func TestImportFolder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	folder := filepath.Join(f.dir, "protocols")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	writeProtocol(t, filepath.Join(folder, "тур1_2024-03-01.xlsx"), standardProtocol())
	writeProtocol(t, filepath.Join(folder, "тур2_2024-04-01.xlsx"), standardProtocol())
	require.NoError(t, os.WriteFile(filepath.Join(folder, "битый.xlsx"), []byte("not a workbook"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "~$тур1.xlsx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "заметки.txt"), []byte("text"), 0o644))

	report, err := f.svc.ImportFolder(ctx, folder)
	require.NoError(t, err)
	require.Equal(t, 3, report.Total)
	require.Equal(t, 2, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, report.Total, report.Succeeded+report.Failed)

	tournaments, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tournaments, 2)
}

func TestNameAndDateFromFile(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantDate *string
	}{
		{"Кубок_города_2024-05-18.xlsx", "Кубок города", strPtr("2024-05-18")},
		{"Кубок города 18.05.2024.xlsx", "Кубок города", strPtr("2024-05-18")},
		{"протокол.xlsx", "протокол", nil},
		{"2024-05-18.xlsx", "2024-05-18", strPtr("2024-05-18")},
	}

	for _, tt := range tests {
		name, date := nameAndDateFromFile(tt.in)
		require.Equal(t, tt.wantName, name, "input %q", tt.in)
		require.Equal(t, tt.wantDate, date, "input %q", tt.in)
	}
}

func strPtr(v string) *string { return &v }
