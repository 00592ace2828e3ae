package playerservice

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// Auditor records operation events. Satisfied by *audit.Service.
type Auditor interface {
	Log(ctx context.Context, eventType, title, details string, correlationID uuid.UUID, fields map[string]any) error
}

// Service handles player identity resolution and merging.
type Service struct {
	db       *bun.DB
	repo     playerdb.Repository
	results  tournamentdb.ResultRepository
	rules    RuleStore
	resolver MatchResolver
	auditor  Auditor
	logger   *slog.Logger
}

// NewService creates a player service. The resolver and auditor may be nil:
// without a resolver ambiguous matches fail the import, without an auditor
// merges are only logged.
func NewService(
	db *bun.DB,
	repo playerdb.Repository,
	results tournamentdb.ResultRepository,
	rules RuleStore,
	resolver MatchResolver,
	auditor Auditor,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		results:  results,
		rules:    rules,
		resolver: resolver,
		auditor:  auditor,
		logger:   logger,
	}
}

// DB exposes the shared handle for callers composing transactions.
func (s *Service) DB() *bun.DB {
	return s.db
}

// Get returns one player.
func (s *Service) Get(ctx context.Context, id int64) (*playerdb.Player, error) {
	return s.repo.Get(ctx, s.db, id)
}

// List returns all players ordered by name.
func (s *Service) List(ctx context.Context) ([]*playerdb.Player, error) {
	return s.repo.List(ctx, s.db)
}

// Search returns players matching a name/club/coach substring.
func (s *Service) Search(ctx context.Context, term string) ([]*playerdb.Player, error) {
	return s.repo.Search(ctx, s.db, term)
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
