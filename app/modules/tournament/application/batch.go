package tournamentservice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nanashi-new/darts/app/modules/audit"
)

// FileOutcome is the per-file result of a folder import.
type FileOutcome struct {
	File         string
	TournamentID int64
	Imported     int
	Skipped      int
	Err          string
}

// BatchReport summarizes a folder import. Succeeded plus Failed always
// equals Total.
type BatchReport struct {
	Total     int
	Succeeded int
	Failed    int
	Files     []FileOutcome
}

// ImportFolder imports every workbook of a directory in file-name order.
// Files fail independently: one broken protocol never stops the batch. All
// imports of one run share a correlation id in the audit log.
func (s *Service) ImportFolder(ctx context.Context, dir string) (*BatchReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// "~$" files are spreadsheet editor lock files.
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	correlationID := uuid.New()
	report := &BatchReport{Total: len(files)}

	for _, name := range files {
		path := filepath.Join(dir, name)
		outcome := FileOutcome{File: name}

		imported, err := s.ImportTournament(ctx, ImportOptions{
			FilePath:      path,
			CorrelationID: correlationID,
		})
		if err != nil {
			outcome.Err = err.Error()
			report.Failed++
			s.logger.WarnContext(ctx, "failed to import protocol",
				slog.String("file", path),
				slog.Any("error", err))
		} else {
			outcome.TournamentID = imported.TournamentID
			outcome.Imported = imported.Imported
			outcome.Skipped = imported.Skipped
			report.Succeeded++
		}
		report.Files = append(report.Files, outcome)
	}

	s.logger.InfoContext(ctx, "imported protocol folder",
		slog.String("dir", dir),
		slog.Int("total", report.Total),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed))
	s.audit(ctx, audit.EventImportFolder, "Imported folder "+filepath.Base(dir),
		fmt.Sprintf("%d files: %d succeeded, %d failed", report.Total, report.Succeeded, report.Failed),
		correlationID, map[string]any{
			"dir":       dir,
			"total":     report.Total,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
		})
	return report, nil
}
