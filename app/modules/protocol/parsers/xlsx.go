package parsers

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// ParseReport is the outcome of parsing the primary table of a workbook.
// Structural detection failures land in Errors; the caller decides whether
// to proceed (e.g. prompt for manual column mapping).
type ParseReport struct {
	Headers      []string
	Rows         []Row
	RawRows      []RawRow
	Errors       []string
	Warnings     []string
	NeedsMapping bool
	Confidence   float64
	// Profile names the adopted ImportProfile, if any.
	Profile string
}

// Parse reads the first detected table of the first sheet and builds a
// report. Only unreadable workbooks return an error; missing headers or
// columns are reported, not raised.
func (d *Detector) Parse(data []byte) (*ParseReport, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	report := &ParseReport{}
	blocks := d.ScanSheet(sheets[0], rows, false)
	if len(blocks) == 0 {
		report.Errors = append(report.Errors, "no table header found")
		report.NeedsMapping = true
		return report, nil
	}

	block := blocks[0]
	report.Headers = block.Headers
	report.RawRows = block.Rows
	report.Confidence = block.Confidence
	report.NeedsMapping = block.NeedsMapping()
	report.Profile = block.Profile
	for _, key := range d.requiredFields() {
		if _, ok := block.Columns[key]; !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("required column %q not found", key))
		}
	}
	report.Rows, report.Warnings = NormalizeRows(block.Rows)
	return report, nil
}

// ParseFile is Parse over a file path.
func (d *Detector) ParseFile(path string) (*ParseReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return d.Parse(data)
}

// ParseAllBlocks scans every sheet of the workbook in multi-table mode and
// returns all detected blocks in worksheet order.
func (d *Detector) ParseAllBlocks(data []byte) ([]TableBlock, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var blocks []TableBlock
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		blocks = append(blocks, d.ScanSheet(sheet, rows, true)...)
	}
	return blocks, nil
}
