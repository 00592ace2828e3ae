package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// birthLayouts are the accepted birth-date spellings, tried in order.
var birthLayouts = []string{
	"02.01.2006",
	"02.01.06",
	"2006-01-02",
	"02/01/2006",
}

// FIO holds the split personal name parts. MiddleName is nil when the source
// value had fewer than three tokens.
type FIO struct {
	LastName   string
	FirstName  string
	MiddleName *string
}

// Full joins the non-empty name parts back into one string.
func (f FIO) Full() string {
	parts := []string{f.LastName, f.FirstName}
	if f.MiddleName != nil {
		parts = append(parts, *f.MiddleName)
	}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// SplitFIO takes the first whitespace-delimited token as the last name, the
// second as the first name and joins the remainder as the middle name.
func SplitFIO(value string) FIO {
	parts := strings.Fields(value)
	if len(parts) == 0 {
		return FIO{}
	}
	fio := FIO{LastName: parts[0]}
	if len(parts) > 1 {
		fio.FirstName = parts[1]
	}
	if len(parts) > 2 {
		middle := strings.Join(parts[2:], " ")
		fio.MiddleName = &middle
	}
	return fio
}

// ParseBirth converts a raw birth cell into an ISO date token and a year
// token. A bare 4-digit value in the 1900–2100 plausibility range is taken
// as year-only (both tokens carry the year). Unparseable values yield
// (nil, nil).
func ParseBirth(value string) (birthDate, birthYear *string) {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil, nil
	}
	if year, err := strconv.Atoi(text); err == nil {
		if year < 1900 || year > 2100 {
			return nil, nil
		}
		token := strconv.Itoa(year)
		return &token, &token
	}
	// Whole floats happen when a year cell carries a numeric format.
	if f, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64); err == nil {
		if f != float64(int(f)) {
			return nil, nil
		}
		year := int(f)
		if year < 1900 || year > 2100 {
			return nil, nil
		}
		token := strconv.Itoa(year)
		return &token, &token
	}
	for _, layout := range birthLayouts {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		iso := parsed.Format("2006-01-02")
		year := strconv.Itoa(parsed.Year())
		return &iso, &year
	}
	return nil, nil
}

// ParseIntCell converts a raw numeric cell into an int. Whole floats and
// decimal-comma strings are accepted; fractional values are rejected.
func ParseIntCell(value string) (*int, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil, true
	}
	if n, err := strconv.Atoi(text); err == nil {
		return &n, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return nil, false
	}
	if f != float64(int(f)) {
		return nil, false
	}
	n := int(f)
	return &n, true
}

// Row is a fully normalized protocol row ready for identity resolution and
// classification.
type Row struct {
	FIO       FIO
	BirthDate *string
	BirthYear *string
	Coach     *string
	Place     *int
	Scores    struct {
		Set      *int
		Sector20 *int
		BigRound *int
	}
}

// BirthToken returns the token used for identity matching: the full ISO date
// when known, else the bare year, else "".
func (r *Row) BirthToken() string {
	if r.BirthDate != nil {
		return *r.BirthDate
	}
	if r.BirthYear != nil {
		return *r.BirthYear
	}
	return ""
}

func rawText(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

// NormalizeRows converts raw block rows into typed rows, collecting one
// warning per empty-FIO row and one per malformed numeric field. Warnings
// are never fatal: the row is carried forward with nil fields.
func NormalizeRows(raw []RawRow) ([]Row, []string) {
	var warnings []string
	rows := make([]Row, 0, len(raw))

	for i, source := range raw {
		rowNum := i + 1
		var row Row

		fioText := rawText(source.FIO)
		if fioText == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: empty player name", rowNum))
		}
		row.FIO = SplitFIO(fioText)
		row.BirthDate, row.BirthYear = ParseBirth(rawText(source.Birth))
		if coach := rawText(source.Coach); coach != "" {
			row.Coach = &coach
		}

		numeric := []struct {
			label  string
			value  *string
			target **int
		}{
			{"place", source.Place, &row.Place},
			{"score_set", source.ScoreSet, &row.Scores.Set},
			{"score_sector20", source.ScoreSector20, &row.Scores.Sector20},
			{"score_big_round", source.ScoreBigRound, &row.Scores.BigRound},
		}
		for _, field := range numeric {
			text := rawText(field.value)
			if text == "" {
				continue
			}
			parsed, ok := ParseIntCell(text)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("row %d: field %q is not a valid number (%s)", rowNum, field.label, text))
				continue
			}
			*field.target = parsed
		}

		rows = append(rows, row)
	}
	return rows, warnings
}
