package rating

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/nanashi-new/darts/app/modules/audit"
)

// BatchExportReport summarizes one batch export run.
type BatchExportReport struct {
	Dir      string
	Ratings  int
	Results  int
	Warnings []string
}

// slug converts a display name into a file-name token.
func slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// ExportBatch writes the full export set under baseDir: the overall rating
// and one rating per category code into ratings/, and every tournament's
// results table into tournaments/. The run directory is dated so repeated
// runs never overwrite each other.
func (s *Service) ExportBatch(ctx context.Context, baseDir string) (*BatchExportReport, error) {
	runDir := filepath.Join(baseDir, time.Now().Format("2006-01-02")+"_run")
	ratingsDir := filepath.Join(runDir, "ratings")
	tournamentsDir := filepath.Join(runDir, "tournaments")
	for _, dir := range []string{ratingsDir, tournamentsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create export folder %s: %w", dir, err)
		}
	}

	report := &BatchExportReport{Dir: runDir}
	correlationID := uuid.New()

	categories, err := s.tournaments.ListCategoryCodes(ctx, s.db)
	if err != nil {
		return nil, err
	}
	// The empty category is the overall rating.
	categories = append([]string{""}, categories...)

	for _, category := range categories {
		name := "overall"
		title := "Рейтинг"
		if category != "" {
			name = slug(category)
			title = "Рейтинг " + category
		}
		rows, err := s.Compute(ctx, Options{CategoryCode: category})
		if err != nil {
			return nil, err
		}

		base := filepath.Join(ratingsDir, "rating_"+name)
		if err := WriteXLSX(base+".xlsx", title, rows); err != nil {
			return nil, err
		}
		if err := WriteTxt(base+".txt", title, rows); err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("rating %s is empty, chart skipped", title))
		} else if err := WriteChartPNG(base+".png", title, rows); err != nil {
			return nil, err
		}
		report.Ratings++
	}

	tournaments, err := s.tournaments.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	for _, tournament := range tournaments {
		results, err := s.results.ListWithPlayers(ctx, s.db, tournament.ID)
		if err != nil {
			return nil, err
		}
		name := slug(tournament.Name)
		if name == "" {
			name = fmt.Sprintf("tournament-%d", tournament.ID)
		}
		if date := tournament.DateString(); date != "" {
			name = date + "_" + name
		}
		title := tournament.Name
		if date := tournament.DateString(); date != "" {
			title += " (" + date + ")"
		}
		path := filepath.Join(tournamentsDir, name+".xlsx")
		if err := WriteResultsXLSX(path, title, results); err != nil {
			return nil, err
		}
		report.Results++
	}

	s.logger.InfoContext(ctx, "exported batch",
		slog.String("dir", runDir),
		slog.Int("ratings", report.Ratings),
		slog.Int("tournaments", report.Results))
	s.audit(ctx, audit.EventExportBatch, "Exported batch",
		fmt.Sprintf("%d ratings and %d tournament tables to %s", report.Ratings, report.Results, runDir),
		correlationID, map[string]any{
			"dir":         runDir,
			"ratings":     report.Ratings,
			"tournaments": report.Results,
			"warnings":    len(report.Warnings),
		})
	return report, nil
}
