// Package parsers locates tabular result blocks inside arbitrary,
// human-produced tournament spreadsheets and normalizes their rows.
package parsers

import (
	"strings"
	"unicode"
)

// Internal field keys of the fixed row schema.
const (
	FieldFIO           = "fio"
	FieldBirth         = "birth"
	FieldCoach         = "coach"
	FieldPlace         = "place"
	FieldScoreSet      = "score_set"
	FieldScoreSector20 = "score_sector20"
	FieldScoreBigRound = "score_big_round"
)

// AllFields lists the row schema keys in column order.
var AllFields = []string{
	FieldFIO,
	FieldBirth,
	FieldCoach,
	FieldPlace,
	FieldScoreSet,
	FieldScoreSector20,
	FieldScoreBigRound,
}

// DefaultRequiredFields are the columns a block must map for full confidence.
var DefaultRequiredFields = []string{FieldFIO, FieldPlace, FieldScoreSet}

// headerSynonyms recognizes header spellings per internal key. Matching is
// case-, space- and punctuation-insensitive.
var headerSynonyms = map[string][]string{
	FieldFIO:           {"фио", "игрок", "фамилияимя", "фамилия", "имя"},
	FieldBirth:         {"др", "датарождения", "годрождения", "рождения"},
	FieldCoach:         {"тренер", "coach"},
	FieldPlace:         {"место", "place"},
	FieldScoreSet:      {"набор", "очки", "наборочков", "score"},
	FieldScoreSector20: {"с20", "sector20", "сектор20"},
	FieldScoreBigRound: {"бр", "biground", "большойраунд"},
}

// ImportProfile is a named, reusable column-alias configuration for a
// recurring non-standard spreadsheet layout.
type ImportProfile struct {
	Name string `json:"name"`
	// Required overrides the default required field set when non-empty.
	Required []string `json:"required,omitempty"`
	// Aliases maps an internal key to recognized header spellings.
	Aliases map[string][]string `json:"aliases"`
}

// RawRow is one data row of a detected block in the fixed 7-key schema.
// Absent columns are nil; present cells keep their raw text.
type RawRow struct {
	FIO           *string
	Birth         *string
	Coach         *string
	Place         *string
	ScoreSet      *string
	ScoreSector20 *string
	ScoreBigRound *string
}

// TableBlock is one contiguous header+data region isolated in a worksheet.
type TableBlock struct {
	Sheet string
	// StartRow/EndRow are 1-based worksheet row numbers; StartRow points at
	// the header row.
	StartRow int
	EndRow   int
	// Headers are the raw header labels as they appear in the sheet.
	Headers []string
	// HeaderMapping maps a raw source header label to its internal key.
	HeaderMapping map[string]string
	// Columns maps an internal key to its zero-based column index.
	Columns map[string]int
	Rows    []RawRow
	// Confidence is found-required / total-required for this block.
	Confidence float64
	// Profile names the ImportProfile adopted to improve the mapping, if any.
	Profile string
}

// NeedsMapping reports whether manual column mapping is still required.
func (b *TableBlock) NeedsMapping() bool {
	return b.Confidence < 1.0
}

// Detector locates table blocks. Saved import profiles are consulted
// whenever the synonym dictionary alone cannot map every required column.
type Detector struct {
	// Required defaults to DefaultRequiredFields when empty.
	Required []string
	Profiles []ImportProfile
}

func (d *Detector) requiredFields() []string {
	if len(d.Required) > 0 {
		return d.Required
	}
	return DefaultRequiredFields
}

// normalizeHeader folds a header cell for synonym comparison: lowercase,
// ё→е, letters and digits only.
func normalizeHeader(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if r == 'ё' {
			r = 'е'
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchHeaders maps internal keys to column indexes using an alias table.
func matchHeaders(row []string, aliases map[string][]string) map[string]int {
	columns := make(map[string]int)
	for idx, cell := range row {
		normalized := normalizeHeader(cell)
		if normalized == "" {
			continue
		}
		for _, key := range AllFields {
			if _, taken := columns[key]; taken {
				continue
			}
			for _, alias := range aliases[key] {
				if normalized == normalizeHeader(alias) {
					columns[key] = idx
					break
				}
			}
		}
	}
	return columns
}

// DetectHeaders maps a row against the built-in synonym dictionary.
func DetectHeaders(row []string) map[string]int {
	return matchHeaders(row, headerSynonyms)
}

// isHeaderCandidate reports whether the row maps a FIO-like column, either
// through the built-in synonyms or through a saved profile's aliases.
func (d *Detector) isHeaderCandidate(row []string) bool {
	if _, ok := DetectHeaders(row)[FieldFIO]; ok {
		return true
	}
	for _, profile := range d.Profiles {
		if _, ok := matchHeaders(row, profile.Aliases)[FieldFIO]; ok {
			return true
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// hasTotalMarker reports whether any cell reads like a totals footer.
func hasTotalMarker(row []string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), "итого") {
			return true
		}
	}
	return false
}

func confidence(columns map[string]int, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	found := 0
	for _, key := range required {
		if _, ok := columns[key]; ok {
			found++
		}
	}
	return float64(found) / float64(len(required))
}

// applyBestProfile evaluates every saved profile against the raw header row
// and overlays the one yielding the highest confidence, when it beats the
// default mapping. This lets previously-taught layouts self-correct on
// repeat imports.
func (d *Detector) applyBestProfile(headerRow []string, columns map[string]int) (map[string]int, float64, string) {
	best := columns
	bestConfidence := confidence(columns, d.requiredFields())
	bestName := ""
	for _, profile := range d.Profiles {
		matched := matchHeaders(headerRow, profile.Aliases)
		merged := make(map[string]int, len(columns)+len(matched))
		for key, idx := range columns {
			merged[key] = idx
		}
		for key, idx := range matched {
			merged[key] = idx
		}
		required := d.requiredFields()
		if len(profile.Required) > 0 {
			required = profile.Required
		}
		if c := confidence(merged, required); c > bestConfidence {
			best, bestConfidence, bestName = merged, c, profile.Name
		}
	}
	return best, bestConfidence, bestName
}

func buildBlock(sheet string, headerIdx int, headerRow []string, columns map[string]int, conf float64, profile string) TableBlock {
	headers := make([]string, len(headerRow))
	for i, cell := range headerRow {
		headers[i] = strings.TrimSpace(cell)
	}
	mapping := make(map[string]string)
	for key, idx := range columns {
		if idx >= 0 && idx < len(headers) && headers[idx] != "" {
			mapping[headers[idx]] = key
		}
	}
	return TableBlock{
		Sheet:         sheet,
		StartRow:      headerIdx + 1,
		EndRow:        headerIdx + 1,
		Headers:       headers,
		HeaderMapping: mapping,
		Columns:       columns,
		Confidence:    conf,
		Profile:       profile,
	}
}

func extractRow(row []string, columns map[string]int) RawRow {
	pick := func(key string) *string {
		idx, ok := columns[key]
		if !ok || idx < 0 || idx >= len(row) {
			return nil
		}
		value := row[idx]
		return &value
	}
	return RawRow{
		FIO:           pick(FieldFIO),
		Birth:         pick(FieldBirth),
		Coach:         pick(FieldCoach),
		Place:         pick(FieldPlace),
		ScoreSet:      pick(FieldScoreSet),
		ScoreSector20: pick(FieldScoreSector20),
		ScoreBigRound: pick(FieldScoreBigRound),
	}
}

// ScanSheet walks worksheet rows top to bottom and isolates table blocks.
// With multi=false only the first block is returned. With multi=true the
// whole sheet is scanned; a row that itself qualifies as a header ends the
// current block and opens the next one, even mid-table — a coincidental data
// row matching header synonyms mis-segments here, which is the accepted
// trade-off for unattended multi-table scanning.
func (d *Detector) ScanSheet(sheet string, rows [][]string, multi bool) []TableBlock {
	var blocks []TableBlock
	var current *TableBlock

	flush := func() {
		if current != nil {
			blocks = append(blocks, *current)
			current = nil
		}
	}

	for i, row := range rows {
		if current == nil {
			if d.isHeaderCandidate(row) {
				columns := DetectHeaders(row)
				conf := confidence(columns, d.requiredFields())
				profile := ""
				if conf < 1.0 {
					columns, conf, profile = d.applyBestProfile(row, columns)
				}
				block := buildBlock(sheet, i, row, columns, conf, profile)
				current = &block
			}
			continue
		}

		if isBlankRow(row) || hasTotalMarker(row) {
			flush()
			if !multi {
				break
			}
			continue
		}
		if multi && d.isHeaderCandidate(row) {
			flush()
			columns := DetectHeaders(row)
			conf := confidence(columns, d.requiredFields())
			profile := ""
			if conf < 1.0 {
				columns, conf, profile = d.applyBestProfile(row, columns)
			}
			block := buildBlock(sheet, i, row, columns, conf, profile)
			current = &block
			continue
		}

		current.Rows = append(current.Rows, extractRow(row, current.Columns))
		current.EndRow = i + 1
	}
	flush()

	if !multi && len(blocks) > 1 {
		blocks = blocks[:1]
	}
	return blocks
}
