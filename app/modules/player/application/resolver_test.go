package playerservice

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// stubResolver returns a scripted decision and records that it was asked.
type stubResolver struct {
	decision MatchDecision
	asked    bool
}

func (r *stubResolver) Resolve(_ context.Context, _ string, _ string, _ []*playerdb.Player) (MatchDecision, error) {
	r.asked = true
	return r.decision, nil
}

func testPlayers() []*playerdb.Player {
	return []*playerdb.Player{
		{ID: 1, LastName: "Иванов", FirstName: "Иван", BirthDate: strPtr("2014-05-10")},
		{ID: 2, LastName: "Иванов", FirstName: "Иван", BirthDate: strPtr("2012-09-01")},
		{ID: 3, LastName: "Петров", FirstName: "Пётр"},
	}
}

func newTestService(t *testing.T, repo playerdb.Repository, resolver MatchResolver) *Service {
	t.Helper()
	rules := NewFileRuleStore(filepath.Join(t.TempDir(), "match_rules.json"))
	return NewService(nil, repo, &tournamentdb.FakeResultRepository{}, rules, resolver, nil, slog.Default())
}

func TestNormalizeFIO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Иванов Иван", "иванов иван"},
		{"  Иванов   Иван  ", "иванов иван"},
		{"ПЁТРОВ Пётр", "петров петр"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeFIO(tt.in), "input %q", tt.in)
	}
}

func TestFindCandidates(t *testing.T) {
	repo := &playerdb.FakeRepository{
		ListFn: func(_ context.Context, _ bun.IDB) ([]*playerdb.Player, error) {
			return testPlayers(), nil
		},
	}
	s := newTestService(t, repo, nil)
	ctx := context.Background()

	t.Run("name alone matches every namesake", func(t *testing.T) {
		candidates, err := s.FindCandidates(ctx, nil, "Иванов Иван", "")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
	})

	t.Run("full birth date narrows to one", func(t *testing.T) {
		candidates, err := s.FindCandidates(ctx, nil, "Иванов Иван", "2014-05-10")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		require.Equal(t, int64(1), candidates[0].ID)
	})

	t.Run("year token matches by prefix", func(t *testing.T) {
		candidates, err := s.FindCandidates(ctx, nil, "Иванов Иван", "2012")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		require.Equal(t, int64(2), candidates[0].ID)
	})

	t.Run("birth token excludes players without a recorded date", func(t *testing.T) {
		candidates, err := s.FindCandidates(ctx, nil, "Петров Пётр", "2013")
		require.NoError(t, err)
		require.Empty(t, candidates)
	})

	t.Run("case and spacing do not matter", func(t *testing.T) {
		candidates, err := s.FindCandidates(ctx, nil, "  иванов  ИВАН ", "")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
	})

	t.Run("empty name matches nothing", func(t *testing.T) {
		candidates, err := s.FindCandidates(ctx, nil, "   ", "")
		require.NoError(t, err)
		require.Empty(t, candidates)
	})
}

func TestResolveForImportCreatesWhenUnknown(t *testing.T) {
	var created *playerdb.Player
	repo := &playerdb.FakeRepository{
		ListFn: func(_ context.Context, _ bun.IDB) ([]*playerdb.Player, error) {
			return nil, nil
		},
		CreateFn: func(_ context.Context, _ bun.IDB, player *playerdb.Player) error {
			player.ID = 42
			created = player
			return nil
		},
	}
	s := newTestService(t, repo, nil)

	resolved, err := s.ResolveForImport(context.Background(), nil,
		parsers.FIO{LastName: "Сидоров", FirstName: "Сидор"},
		strPtr("2013-02-03"), strPtr("2013"), strPtr("Смирнова О."))
	require.NoError(t, err)
	require.True(t, resolved.Created)
	require.Equal(t, int64(42), resolved.Player.ID)
	require.NotNil(t, created)
	require.Equal(t, "Сидоров", created.LastName)
	require.Equal(t, strPtr("2013-02-03"), created.BirthDate)
	require.Equal(t, strPtr("Смирнова О."), created.Coach)
}

func TestResolveForImportSingleCandidate(t *testing.T) {
	repo := &playerdb.FakeRepository{
		ListFn: func(_ context.Context, _ bun.IDB) ([]*playerdb.Player, error) {
			return testPlayers(), nil
		},
	}
	resolver := &stubResolver{}
	s := newTestService(t, repo, resolver)

	resolved, err := s.ResolveForImport(context.Background(), nil,
		parsers.FIO{LastName: "Иванов", FirstName: "Иван"}, strPtr("2014-05-10"), nil, nil)
	require.NoError(t, err)
	require.False(t, resolved.Created)
	require.Equal(t, int64(1), resolved.Player.ID)
	require.False(t, resolver.asked, "unambiguous match must not prompt")
}

func TestResolveForImportAmbiguous(t *testing.T) {
	repo := &playerdb.FakeRepository{
		ListFn: func(_ context.Context, _ bun.IDB) ([]*playerdb.Player, error) {
			return testPlayers(), nil
		},
	}
	fio := parsers.FIO{LastName: "Иванов", FirstName: "Иван"}
	ctx := context.Background()

	t.Run("without a resolver the import fails", func(t *testing.T) {
		s := newTestService(t, repo, nil)
		_, err := s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.ErrorIs(t, err, ErrAmbiguousPlayer)
	})

	t.Run("cancel aborts the import", func(t *testing.T) {
		s := newTestService(t, repo, &stubResolver{decision: MatchDecision{Action: MatchCancel}})
		_, err := s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.ErrorIs(t, err, ErrImportCancelled)
	})

	t.Run("select picks the chosen candidate", func(t *testing.T) {
		s := newTestService(t, repo, &stubResolver{decision: MatchDecision{Action: MatchSelect, PlayerID: 2}})
		resolved, err := s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.NoError(t, err)
		require.Equal(t, int64(2), resolved.Player.ID)
	})

	t.Run("selecting an unknown id fails", func(t *testing.T) {
		s := newTestService(t, repo, &stubResolver{decision: MatchDecision{Action: MatchSelect, PlayerID: 99}})
		_, err := s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.ErrorIs(t, err, ErrUnknownCandidate)
	})

	t.Run("remembered selection is reused without prompting", func(t *testing.T) {
		resolver := &stubResolver{decision: MatchDecision{Action: MatchSelect, PlayerID: 2, Remember: true}}
		s := newTestService(t, repo, resolver)

		resolved, err := s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.NoError(t, err)
		require.Equal(t, int64(2), resolved.Player.ID)
		require.True(t, resolver.asked)

		resolver.asked = false
		resolved, err = s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.NoError(t, err)
		require.Equal(t, int64(2), resolved.Player.ID)
		require.False(t, resolver.asked, "the saved rule must short-circuit the prompt")
	})

	t.Run("create makes a new player despite candidates", func(t *testing.T) {
		createRepo := &playerdb.FakeRepository{
			ListFn: func(_ context.Context, _ bun.IDB) ([]*playerdb.Player, error) {
				return testPlayers(), nil
			},
			CreateFn: func(_ context.Context, _ bun.IDB, player *playerdb.Player) error {
				player.ID = 7
				return nil
			},
		}
		s := newTestService(t, createRepo, &stubResolver{decision: MatchDecision{Action: MatchCreate}})
		resolved, err := s.ResolveForImport(ctx, nil, fio, nil, nil, nil)
		require.NoError(t, err)
		require.True(t, resolved.Created)
		require.Equal(t, int64(7), resolved.Player.ID)
	})
}

func TestFileRuleStore(t *testing.T) {
	store := NewFileRuleStore(filepath.Join(t.TempDir(), "match_rules.json"))

	_, ok, err := store.Get("иванов иван", "2014")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(MatchRule{FIO: "иванов иван", BirthToken: "2014", PlayerID: 5}))
	require.NoError(t, store.Save(MatchRule{FIO: "иванов иван", BirthToken: "2012", PlayerID: 6}))

	id, ok, err := store.Get("иванов иван", "2014")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(5), id)

	// Same key replaces, not appends.
	require.NoError(t, store.Save(MatchRule{FIO: "иванов иван", BirthToken: "2014", PlayerID: 9}))
	id, ok, err = store.Get("иванов иван", "2014")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(9), id)

	rules, err := store.List()
	require.NoError(t, err)
	require.Len(t, rules, 2)
}

func strPtr(v string) *string { return &v }
