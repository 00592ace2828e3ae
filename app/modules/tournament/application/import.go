package tournamentservice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/nanashi-new/darts/app/modules/audit"
	"github.com/nanashi-new/darts/app/modules/classify"
	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

// ImportOptions describe one protocol import.
type ImportOptions struct {
	FilePath string
	// Name overrides the tournament name; empty derives it from the file
	// name.
	Name string
	// Date is an ISO tournament date; empty takes a date found in the file
	// name, if any.
	Date         string
	CategoryCode string
	LeagueCode   string
	// CorrelationID links the import to a batch run; uuid.Nil gets a fresh
	// one.
	CorrelationID uuid.UUID
}

// ImportReport summarizes one protocol import.
type ImportReport struct {
	TournamentID int64
	Name         string
	Imported     int
	Skipped      int
	Warnings     []string
	// NormsLoaded is false when classification ran without a norms table
	// and every classification point total is zero.
	NormsLoaded bool
}

var fileDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`),
}

// nameAndDateFromFile derives a tournament name and optional ISO date from a
// protocol file name.
func nameAndDateFromFile(path string) (string, *string) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var date *string
	for _, pattern := range fileDatePatterns {
		token := pattern.FindString(base)
		if token == "" {
			continue
		}
		if parsed, ok := classify.ParseFlexDate(token); ok {
			iso := parsed.Format("2006-01-02")
			date = &iso
			base = strings.Replace(base, token, "", 1)
			break
		}
	}

	name := strings.TrimSpace(strings.Trim(strings.ReplaceAll(base, "_", " "), " -"))
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return name, date
}

// ImportTournament parses one protocol workbook and persists the tournament
// with one result per player row. The tournament row is committed before row
// processing, so a failed or cancelled import still leaves an auditable
// partial record; the rows themselves run in a single transaction.
func (s *Service) ImportTournament(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	parsed, err := s.detector.ParseFile(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol %s: %w", opts.FilePath, err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, strings.Join(parsed.Errors, "; "))
	}

	load := s.norms.Load(s.normsPath)
	report := &ImportReport{NormsLoaded: load.Loaded}
	report.Warnings = append(report.Warnings, parsed.Warnings...)
	if !load.Loaded {
		report.Warnings = append(report.Warnings, load.Warning)
	}

	name, fileDate := nameAndDateFromFile(opts.FilePath)
	if opts.Name != "" {
		name = opts.Name
	}
	date := fileDate
	if opts.Date != "" {
		date = &opts.Date
	}

	correlationID := opts.CorrelationID
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}

	tournament := &tournamentdb.Tournament{Name: name, Date: date}
	if opts.CategoryCode != "" {
		tournament.CategoryCode = &opts.CategoryCode
	}
	if opts.LeagueCode != "" {
		tournament.LeagueCode = &opts.LeagueCode
	}
	tournament.SetSourceFiles([]string{opts.FilePath})
	if err := s.tournaments.Create(ctx, s.db, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	report.TournamentID = tournament.ID
	report.Name = name

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		seen := make(map[int64]bool)
		for i, row := range parsed.Rows {
			rowNum := i + 1
			if row.FIO.Full() == "" {
				report.Skipped++
				continue
			}

			resolved, err := s.players.ResolveForImport(ctx, tx, row.FIO, row.BirthDate, row.BirthYear, row.Coach)
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", rowNum, row.FIO.Full(), err)
			}
			if seen[resolved.Player.ID] {
				report.Skipped++
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("row %d: player %s appears more than once, keeping the first row", rowNum, row.FIO.Full()))
				continue
			}
			seen[resolved.Player.ID] = true

			result := &tournamentdb.Result{
				TournamentID:  tournament.ID,
				PlayerID:      resolved.Player.ID,
				Place:         row.Place,
				ScoreSet:      row.Scores.Set,
				ScoreSector20: row.Scores.Sector20,
				ScoreBigRound: row.Scores.BigRound,
			}
			if warning := applyDerived(result, resolved.Player, tournament.DateString(), load.Norms); warning != "" {
				report.Warnings = append(report.Warnings, fmt.Sprintf("row %d: %s", rowNum, warning))
			}
			if err := s.results.Create(ctx, tx, result); err != nil {
				return fmt.Errorf("row %d (%s): failed to save result: %w", rowNum, row.FIO.Full(), err)
			}
			report.Imported++
		}
		return nil
	})
	if err != nil {
		s.audit(ctx, audit.EventError, "Import failed",
			err.Error(), correlationID, map[string]any{"file": opts.FilePath})
		return nil, err
	}

	s.logger.InfoContext(ctx, "imported tournament protocol",
		slog.Int64("tournament_id", report.TournamentID),
		slog.String("name", report.Name),
		slog.String("file", opts.FilePath),
		slog.Int("imported", report.Imported),
		slog.Int("skipped", report.Skipped),
		slog.Bool("norms_loaded", report.NormsLoaded))
	s.audit(ctx, audit.EventImportFile, "Imported "+report.Name,
		fmt.Sprintf("%d results from %s", report.Imported, filepath.Base(opts.FilePath)),
		correlationID, map[string]any{
			"tournament_id": report.TournamentID,
			"file":          opts.FilePath,
			"imported":      report.Imported,
			"skipped":       report.Skipped,
			"warnings":      len(report.Warnings),
			"norms_loaded":  report.NormsLoaded,
		})
	return report, nil
}

// applyDerived recomputes the classification ranks and point totals of one
// result in place. The returned warning is non-empty when the place value
// could not be scored.
func applyDerived(result *tournamentdb.Result, player *playerdb.Player, tournamentDate string, norms *classify.Norms) string {
	gender := ""
	if player.Gender != nil {
		gender = *player.Gender
	}
	birth := ""
	if player.BirthDate != nil {
		birth = *player.BirthDate
	}

	scores := classify.Scores{
		Set:      result.ScoreSet,
		Sector20: result.ScoreSector20,
		BigRound: result.ScoreBigRound,
	}
	ranks, pointsClassification := classify.Classify(scores, gender, birth, tournamentDate, norms)

	warning := ""
	pointsPlace, err := classify.PointsForPlace(result.Place)
	if err != nil {
		warning = fmt.Sprintf("place %d is not scoreable, counting 0 place points", *result.Place)
		pointsPlace = 0
	}

	result.RankSet = ranks.Set
	result.RankSector20 = ranks.Sector20
	result.RankBigRound = ranks.BigRound
	result.PointsClassification = pointsClassification
	result.PointsPlace = pointsPlace
	result.PointsTotal = pointsPlace + pointsClassification
	result.CalcVersion = calcVersion
	return warning
}
