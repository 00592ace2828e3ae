// Package tournamentservice orchestrates protocol imports, recalculation and
// tournament management on top of the protocol parsers, the player identity
// service and the classification engine.
package tournamentservice

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/nanashi-new/darts/app/modules/classify"
	playerservice "github.com/nanashi-new/darts/app/modules/player/application"
	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// calcVersion tags results computed by the current derivation rules.
const calcVersion = "v2"

// Auditor records operation events. Satisfied by *audit.Service.
type Auditor interface {
	Log(ctx context.Context, eventType, title, details string, correlationID uuid.UUID, fields map[string]any) error
}

// Service handles tournament imports and recalculation.
type Service struct {
	db          *bun.DB
	tournaments tournamentdb.TournamentRepository
	results     tournamentdb.ResultRepository
	players     *playerservice.Service
	norms       *classify.Loader
	normsPath   string
	detector    *parsers.Detector
	auditor     Auditor
	logger      *slog.Logger
}

// NewService creates a tournament service. The auditor may be nil, in which
// case operations are only logged.
func NewService(
	db *bun.DB,
	tournaments tournamentdb.TournamentRepository,
	results tournamentdb.ResultRepository,
	players *playerservice.Service,
	norms *classify.Loader,
	normsPath string,
	detector *parsers.Detector,
	auditor Auditor,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:          db,
		tournaments: tournaments,
		results:     results,
		players:     players,
		norms:       norms,
		normsPath:   normsPath,
		detector:    detector,
		auditor:     auditor,
		logger:      logger,
	}
}

// Get returns one tournament.
func (s *Service) Get(ctx context.Context, id int64) (*tournamentdb.Tournament, error) {
	return s.tournaments.Get(ctx, s.db, id)
}

// List returns all tournaments ordered by date descending.
func (s *Service) List(ctx context.Context) ([]*tournamentdb.Tournament, error) {
	return s.tournaments.List(ctx, s.db)
}

// Delete removes a tournament and its results.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.tournaments.Delete(ctx, s.db, id)
}

// Results returns a tournament's results with player rows attached, ordered
// by total points descending then place ascending.
func (s *Service) Results(ctx context.Context, tournamentID int64) ([]*tournamentdb.Result, error) {
	return s.results.ListWithPlayers(ctx, s.db, tournamentID)
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
