package playerservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/nanashi-new/darts/app/modules/audit"
	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// MergeStrategy decides a (tournament, player) collision during a merge.
type MergeStrategy string

const (
	// PreferPrimary keeps the primary player's result on collision.
	PreferPrimary MergeStrategy = "prefer_primary"
	// PreferDuplicate keeps the duplicate's result when it scored strictly
	// more total points.
	PreferDuplicate MergeStrategy = "prefer_duplicate"
)

// DuplicateGroup is a set of players sharing one normalized full name.
type DuplicateGroup struct {
	NormalizedFIO string
	Players       []*playerdb.Player
}

// MergeReport summarizes one merge.
type MergeReport struct {
	PrimaryID          int64
	DuplicateID        int64
	ResultsTransferred int
	DuplicatesRemoved  int
}

// FindPossibleDuplicates groups players by normalized full name and returns
// the groups with more than one member, sorted by name.
func (s *Service) FindPossibleDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	players, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]*playerdb.Player)
	for _, player := range players {
		normalized := NormalizeFIO(player.FullName())
		if normalized == "" {
			continue
		}
		grouped[normalized] = append(grouped[normalized], player)
	}
	var groups []DuplicateGroup
	for normalized, members := range grouped {
		if len(members) > 1 {
			groups = append(groups, DuplicateGroup{NormalizedFIO: normalized, Players: members})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].NormalizedFIO < groups[j].NormalizedFIO })
	return groups, nil
}

// Merge folds the duplicate player into the primary one atomically:
// non-colliding results move to the primary, collisions resolve per
// strategy, the primary's empty coach/club/notes backfill from the
// duplicate, and the duplicate is deleted. No duplicate
// (tournament, player) pairs remain afterwards.
func (s *Service) Merge(ctx context.Context, primaryID, duplicateID int64, strategy MergeStrategy) (MergeReport, error) {
	if primaryID == duplicateID {
		return MergeReport{}, ErrSamePlayer
	}
	report := MergeReport{PrimaryID: primaryID, DuplicateID: duplicateID}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		primary, err := s.repo.Get(ctx, tx, primaryID)
		if err != nil {
			if errors.Is(err, playerdb.ErrNotFound) {
				return fmt.Errorf("%w: primary %d", ErrPlayerNotFound, primaryID)
			}
			return err
		}
		duplicate, err := s.repo.Get(ctx, tx, duplicateID)
		if err != nil {
			if errors.Is(err, playerdb.ErrNotFound) {
				return fmt.Errorf("%w: duplicate %d", ErrPlayerNotFound, duplicateID)
			}
			return err
		}

		duplicateResults, err := s.results.ListForPlayer(ctx, tx, duplicateID)
		if err != nil {
			return err
		}

		for _, result := range duplicateResults {
			existing, err := s.results.GetByPair(ctx, tx, result.TournamentID, primaryID)
			if err != nil {
				if !errors.Is(err, tournamentdb.ErrNotFound) {
					return err
				}
				if err := s.results.ReassignPlayer(ctx, tx, result.ID, primaryID); err != nil {
					return err
				}
				report.ResultsTransferred++
				continue
			}

			keepDuplicate := strategy == PreferDuplicate && result.PointsTotal > existing.PointsTotal
			if keepDuplicate {
				if err := s.results.Delete(ctx, tx, existing.ID); err != nil {
					return err
				}
				if err := s.results.ReassignPlayer(ctx, tx, result.ID, primaryID); err != nil {
					return err
				}
				report.ResultsTransferred++
			} else {
				if err := s.results.Delete(ctx, tx, result.ID); err != nil {
					return err
				}
				report.DuplicatesRemoved++
			}
		}

		if primary.Coach == nil {
			primary.Coach = duplicate.Coach
		}
		if primary.Club == nil {
			primary.Club = duplicate.Club
		}
		if primary.Notes == nil {
			primary.Notes = duplicate.Notes
		}
		if err := s.repo.Update(ctx, tx, primary); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, duplicateID)
	})
	if err != nil {
		return MergeReport{}, err
	}

	s.logger.Info("merged duplicate player",
		"primary_id", primaryID,
		"duplicate_id", duplicateID,
		"transferred", report.ResultsTransferred,
		"removed", report.DuplicatesRemoved,
	)
	s.audit(ctx, audit.EventMergePlayers,
		"player merge",
		fmt.Sprintf("merged player #%d into #%d", duplicateID, primaryID),
		uuid.New(),
		map[string]any{
			"primary_id":          primaryID,
			"duplicate_id":        duplicateID,
			"merge_strategy":      string(strategy),
			"results_transferred": report.ResultsTransferred,
			"duplicates_removed":  report.DuplicatesRemoved,
		},
	)
	return report, nil
}
