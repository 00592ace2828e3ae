package rating

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

func entry(playerID, tournamentID int64, points int, date, lastName string) tournamentdb.RatingEntry {
	return tournamentdb.RatingEntry{
		PlayerID:       playerID,
		TournamentID:   tournamentID,
		PointsTotal:    points,
		TournamentDate: &date,
		LastName:       lastName,
		FirstName:      "Тест",
	}
}

func serviceWithEntries(entries []tournamentdb.RatingEntry, window int) *Service {
	results := &tournamentdb.FakeResultRepository{
		ListResultsForRatingFn: func(_ context.Context, _ bun.IDB, _, _ string) ([]tournamentdb.RatingEntry, error) {
			return entries, nil
		},
	}
	return NewService(nil, &tournamentdb.FakeTournamentRepository{}, results, window, nil, slog.Default())
}

func TestComputeSumsAndOrders(t *testing.T) {
	// Entries arrive newest first, as the repository query orders them.
	entries := []tournamentdb.RatingEntry{
		entry(1, 30, 14, "2024-05-01", "Иванов"),
		entry(2, 30, 12, "2024-05-01", "Петров"),
		entry(1, 20, 8, "2024-04-01", "Иванов"),
		entry(2, 20, 14, "2024-04-01", "Петров"),
		entry(3, 10, 6, "2024-03-01", "Сидоров"),
	}

	rows, err := serviceWithEntries(entries, 6).Compute(context.Background(), Options{})
	require.NoError(t, err)

	want := []Row{
		{Place: 1, PlayerID: 2, FIO: "Петров Тест", Points: 26, Tournaments: 2},
		{Place: 2, PlayerID: 1, FIO: "Иванов Тест", Points: 22, Tournaments: 2},
		{Place: 3, PlayerID: 3, FIO: "Сидоров Тест", Points: 6, Tournaments: 1},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rating mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeWindowCapsOldTournaments(t *testing.T) {
	entries := []tournamentdb.RatingEntry{
		entry(1, 40, 14, "2024-06-01", "Иванов"),
		entry(1, 30, 12, "2024-05-01", "Иванов"),
		entry(1, 20, 10, "2024-04-01", "Иванов"),
	}

	rows, err := serviceWithEntries(entries, 2).Compute(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// Only the two most recent tournaments count.
	require.Equal(t, 26, rows[0].Points)
	require.Equal(t, 2, rows[0].Tournaments)
}

func TestComputeOptionWindowOverridesDefault(t *testing.T) {
	entries := []tournamentdb.RatingEntry{
		entry(1, 40, 14, "2024-06-01", "Иванов"),
		entry(1, 30, 12, "2024-05-01", "Иванов"),
	}

	rows, err := serviceWithEntries(entries, 6).Compute(context.Background(), Options{Window: 1})
	require.NoError(t, err)
	require.Equal(t, 14, rows[0].Points)
	require.Equal(t, 1, rows[0].Tournaments)
}

func TestComputeCountsTournamentOnce(t *testing.T) {
	// Two results in one tournament (e.g. a residual duplicate) count once.
	entries := []tournamentdb.RatingEntry{
		entry(1, 30, 14, "2024-05-01", "Иванов"),
		entry(1, 30, 12, "2024-05-01", "Иванов"),
	}

	rows, err := serviceWithEntries(entries, 6).Compute(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, 14, rows[0].Points)
	require.Equal(t, 1, rows[0].Tournaments)
}

func TestComputeTiedPointsSharePlace(t *testing.T) {
	entries := []tournamentdb.RatingEntry{
		entry(1, 30, 14, "2024-05-01", "Иванов"),
		entry(2, 30, 14, "2024-05-01", "Петров"),
		entry(3, 30, 8, "2024-05-01", "Сидоров"),
	}

	rows, err := serviceWithEntries(entries, 6).Compute(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, 1, rows[0].Place)
	require.Equal(t, 1, rows[1].Place)
	require.Equal(t, 3, rows[2].Place)
}

func TestComputeIdempotent(t *testing.T) {
	entries := []tournamentdb.RatingEntry{
		entry(1, 30, 14, "2024-05-01", "Иванов"),
		entry(2, 20, 12, "2024-04-01", "Петров"),
	}
	svc := serviceWithEntries(entries, 6)

	first, err := svc.Compute(context.Background(), Options{})
	require.NoError(t, err)
	second, err := svc.Compute(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Кубок города", "кубок-города"},
		{"U12 (мальчики)", "u12-мальчики"},
		{"  уже---чисто  ", "уже-чисто"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, slug(tt.in), "input %q", tt.in)
	}
}
