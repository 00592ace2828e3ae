package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/nanashi-new/darts/app/modules/audit"
	"github.com/nanashi-new/darts/app/modules/classify"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// RecalcReport summarizes one recalculation run. Errors are collected per
// result so one bad row never aborts the run.
type RecalcReport struct {
	Tournaments int
	Processed   int
	Updated     int
	Warnings    []string
	Errors      []string
	NormsLoaded bool
}

// RecalculateTournament rederives ranks and points for every result of one
// tournament from the stored scores and the current norms table.
func (s *Service) RecalculateTournament(ctx context.Context, tournamentID int64) (*RecalcReport, error) {
	tournament, err := s.tournaments.Get(ctx, s.db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrTournamentNotFound, tournamentID)
		}
		return nil, err
	}

	load := s.norms.Load(s.normsPath)
	report := &RecalcReport{Tournaments: 1, NormsLoaded: load.Loaded}
	if !load.Loaded {
		report.Warnings = append(report.Warnings, load.Warning)
	}

	if err := s.recalcOne(ctx, tournament, report, load.Norms); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "recalculated tournament",
		slog.Int64("tournament_id", tournamentID),
		slog.Int("processed", report.Processed),
		slog.Int("updated", report.Updated),
		slog.Int("errors", len(report.Errors)))
	s.audit(ctx, audit.EventRecalcOne, "Recalculated "+tournament.Name,
		fmt.Sprintf("%d results processed, %d updated", report.Processed, report.Updated),
		uuid.New(), map[string]any{
			"tournament_id": tournamentID,
			"processed":     report.Processed,
			"updated":       report.Updated,
			"errors":        len(report.Errors),
		})
	return report, nil
}

// RecalculateAll rederives every stored result. Tournaments are processed
// independently so a failure in one is reported and the rest continue.
func (s *Service) RecalculateAll(ctx context.Context) (*RecalcReport, error) {
	tournaments, err := s.tournaments.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	load := s.norms.Load(s.normsPath)
	report := &RecalcReport{NormsLoaded: load.Loaded}
	if !load.Loaded {
		report.Warnings = append(report.Warnings, load.Warning)
	}

	for _, tournament := range tournaments {
		report.Tournaments++
		if err := s.recalcOne(ctx, tournament, report, load.Norms); err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("tournament %d (%s): %v", tournament.ID, tournament.Name, err))
		}
	}

	s.logger.InfoContext(ctx, "recalculated all tournaments",
		slog.Int("tournaments", report.Tournaments),
		slog.Int("processed", report.Processed),
		slog.Int("updated", report.Updated),
		slog.Int("errors", len(report.Errors)))
	s.audit(ctx, audit.EventRecalcAll, "Recalculated all tournaments",
		fmt.Sprintf("%d tournaments, %d results processed, %d updated",
			report.Tournaments, report.Processed, report.Updated),
		uuid.New(), map[string]any{
			"tournaments": report.Tournaments,
			"processed":   report.Processed,
			"updated":     report.Updated,
			"errors":      len(report.Errors),
		})
	return report, nil
}

func (s *Service) recalcOne(ctx context.Context, tournament *tournamentdb.Tournament, report *RecalcReport, norms *classify.Norms) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		results, err := s.results.ListWithPlayers(ctx, tx, tournament.ID)
		if err != nil {
			return err
		}

		for _, result := range results {
			report.Processed++
			if result.Player == nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("result %d: player %d is missing", result.ID, result.PlayerID))
				continue
			}

			before := *result
			if warning := applyDerived(result, result.Player, tournament.DateString(), norms); warning != "" {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("result %d (%s): %s", result.ID, result.Player.FullName(), warning))
			}
			if derivedEqual(&before, result) {
				continue
			}
			if err := s.results.Update(ctx, tx, result); err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("result %d: failed to save: %v", result.ID, err))
				continue
			}
			report.Updated++
		}
		return nil
	})
}

func derivedEqual(a, b *tournamentdb.Result) bool {
	return ptrEqual(a.RankSet, b.RankSet) &&
		ptrEqual(a.RankSector20, b.RankSector20) &&
		ptrEqual(a.RankBigRound, b.RankBigRound) &&
		a.PointsClassification == b.PointsClassification &&
		a.PointsPlace == b.PointsPlace &&
		a.PointsTotal == b.PointsTotal &&
		a.CalcVersion == b.CalcVersion
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
