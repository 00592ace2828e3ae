package rating

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/nanashi-new/darts/app/modules/audit"
	tournamentdb "github.com/nanashi-new/darts/app/modules/tournament/infrastructure/repositories"
)

const ratingSheet = "Рейтинг"

// WriteXLSX writes a rating table workbook.
func WriteXLSX(path, title string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ratingSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.SetSheetRow(ratingSheet, "A1", &[]any{title}); err != nil {
		return err
	}
	if err := f.SetSheetRow(ratingSheet, "A2", &[]any{"Место", "ФИО", "Очки", "Турниры"}); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(ratingSheet, "A1", "D2", bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		values := []any{row.Place, row.FIO, row.Points, row.Tournaments}
		if err := f.SetSheetRow(ratingSheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ratingSheet, "B", "B", 36); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// WriteTxt writes a rating table as aligned plain text.
func WriteTxt(path, title string, rows []Row) error {
	var b strings.Builder
	b.WriteString(title + "\n\n")
	fmt.Fprintf(&b, "%-6s %-36s %8s %8s\n", "Место", "ФИО", "Очки", "Турниры")
	b.WriteString(strings.Repeat("-", 62) + "\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-6d %-36s %8d %8d\n", row.Place, row.FIO, row.Points, row.Tournaments)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// WriteResultsXLSX writes one tournament's results table workbook, in the
// order the results were given.
func WriteResultsXLSX(path, title string, results []*tournamentdb.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Результаты"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{title}); err != nil {
		return err
	}
	header := []any{"Место", "ФИО", "Сет", "Сектор 20", "Большой раунд",
		"Разряд (сет)", "Разряд (сектор 20)", "Разряд (большой раунд)",
		"Очки за место", "Очки за разряд", "Очки всего"}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "K2", bold); err != nil {
		return err
	}

	for i, result := range results {
		fio := ""
		if result.Player != nil {
			fio = result.Player.FullName()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		values := []any{
			intCell(result.Place), fio,
			intCell(result.ScoreSet), intCell(result.ScoreSector20), intCell(result.ScoreBigRound),
			textCell(result.RankSet), textCell(result.RankSector20), textCell(result.RankBigRound),
			result.PointsPlace, result.PointsClassification, result.PointsTotal,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 36); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func intCell(value *int) any {
	if value == nil {
		return ""
	}
	return *value
}

func textCell(value *string) any {
	if value == nil {
		return ""
	}
	return *value
}

// ExportRating computes a rating and writes it to path. The format follows
// the file extension: .xlsx, .txt or .png.
func (s *Service) ExportRating(ctx context.Context, path, title string, opts Options) error {
	rows, err := s.Compute(ctx, opts)
	if err != nil {
		return err
	}
	if title == "" {
		title = "Рейтинг"
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = WriteXLSX(path, title, rows)
	case ".txt":
		err = WriteTxt(path, title, rows)
	case ".png":
		err = WriteChartPNG(path, title, rows)
	default:
		return fmt.Errorf("unsupported rating export format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "exported rating",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	s.audit(ctx, audit.EventExportFile, "Exported rating",
		fmt.Sprintf("%d rows to %s", len(rows), filepath.Base(path)),
		uuid.New(), map[string]any{
			"path":     path,
			"rows":     len(rows),
			"category": opts.CategoryCode,
		})
	return nil
}
