package rating

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

func exportRows() []Row {
	return []Row{
		{Place: 1, PlayerID: 1, FIO: "Иванов Иван", Points: 26, Tournaments: 2},
		{Place: 2, PlayerID: 2, FIO: "Петров Пётр", Points: 12, Tournaments: 1},
	}
}

func TestWriteTxt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rating.txt")
	require.NoError(t, WriteTxt(path, "Рейтинг U12", exportRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "Рейтинг U12")
	require.Contains(t, text, "Место")
	require.Contains(t, text, "Иванов Иван")
	require.Contains(t, text, "26")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rating.xlsx")
	require.NoError(t, WriteXLSX(path, "Рейтинг", exportRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{ratingSheet}, f.GetSheetList())
	rows, err := f.GetRows(ratingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4) // title + header + 2 players
	require.Equal(t, "Иванов Иван", rows[2][1])
	require.Equal(t, "12", rows[3][2])
}

func TestExportTxtIdempotent(t *testing.T) {
	entries := []tournamentdb.RatingEntry{
		entry(1, 30, 14, "2024-05-01", "Иванов"),
		entry(2, 30, 12, "2024-05-01", "Петров"),
		entry(1, 20, 8, "2024-04-01", "Иванов"),
	}
	svc := serviceWithEntries(entries, 6)
	ctx := context.Background()
	dir := t.TempDir()

	// Unchanged data exports to byte-identical files on repeated runs.
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	require.NoError(t, svc.ExportRating(ctx, first, "Рейтинг", Options{}))
	require.NoError(t, svc.ExportRating(ctx, second, "Рейтинг", Options{}))

	firstData, err := os.ReadFile(first)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, firstData, secondData)
}

func TestWriteChartPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rating.png")
	require.NoError(t, WriteChartPNG(path, "Рейтинг", exportRows()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	require.Error(t, WriteChartPNG(path, "Рейтинг", nil))
}
