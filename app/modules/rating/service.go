// Package rating computes the rolling player rating and exports it to
// spreadsheet, text and chart files.
package rating

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// Auditor records operation events. Satisfied by *audit.Service.
type Auditor interface {
	Log(ctx context.Context, eventType, title, details string, correlationID uuid.UUID, fields map[string]any) error
}

// Row is one line of a computed rating table. Players with equal points
// share a place.
type Row struct {
	Place    int
	PlayerID int64
	FIO      string
	// Points is the sum over the player's counted tournaments.
	Points int
	// Tournaments is how many tournaments were counted, at most the
	// window.
	Tournaments int
}

// Options filter and size one rating computation.
type Options struct {
	// Window caps how many most recent tournaments count per player;
	// zero or negative uses the service default.
	Window       int
	CategoryCode string
	Search       string
}

// Service computes rolling ratings.
type Service struct {
	db          *bun.DB
	tournaments tournamentdb.TournamentRepository
	results     tournamentdb.ResultRepository
	window      int
	auditor     Auditor
	logger      *slog.Logger
}

// NewService creates a rating service with the given default window.
func NewService(
	db *bun.DB,
	tournaments tournamentdb.TournamentRepository,
	results tournamentdb.ResultRepository,
	window int,
	auditor Auditor,
	logger *slog.Logger,
) *Service {
	if window <= 0 {
		window = 6
	}
	return &Service{
		db:          db,
		tournaments: tournaments,
		results:     results,
		window:      window,
		auditor:     auditor,
		logger:      logger,
	}
}

// Compute builds the rating table: per player, the sum of points over their
// most recent tournaments, capped by the window. Multiple results of one
// player in the same tournament count once.
func (s *Service) Compute(ctx context.Context, opts Options) ([]Row, error) {
	window := opts.Window
	if window <= 0 {
		window = s.window
	}

	entries, err := s.results.ListResultsForRating(ctx, s.db, opts.CategoryCode, opts.Search)
	if err != nil {
		return nil, err
	}

	type tally struct {
		fio    string
		points int
		count  int
		seen   map[int64]bool
	}
	players := make(map[int64]*tally)
	var order []int64

	// Entries arrive newest tournament first, so the first window distinct
	// tournaments per player are exactly the ones that count.
	for _, entry := range entries {
		player := players[entry.PlayerID]
		if player == nil {
			player = &tally{fio: entryFIO(entry), seen: make(map[int64]bool)}
			players[entry.PlayerID] = player
			order = append(order, entry.PlayerID)
		}
		if player.seen[entry.TournamentID] || player.count >= window {
			continue
		}
		player.seen[entry.TournamentID] = true
		player.count++
		player.points += entry.PointsTotal
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		player := players[id]
		rows = append(rows, Row{
			PlayerID:    id,
			FIO:         player.fio,
			Points:      player.points,
			Tournaments: player.count,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].FIO < rows[j].FIO
	})
	for i := range rows {
		if i > 0 && rows[i].Points == rows[i-1].Points {
			rows[i].Place = rows[i-1].Place
			continue
		}
		rows[i].Place = i + 1
	}
	return rows, nil
}

func entryFIO(entry tournamentdb.RatingEntry) string {
	parts := []string{entry.LastName, entry.FirstName}
	if entry.MiddleName != nil {
		parts = append(parts, *entry.MiddleName)
	}
	var kept []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

func (s *Service) audit(ctx context.Context, eventType, title, details string, correlationID uuid.UUID, fields map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Log(ctx, eventType, title, details, correlationID, fields); err != nil {
		s.logger.WarnContext(ctx, "failed to write audit event",
			slog.String("event_type", eventType),
			slog.Any("error", err))
	}
}
