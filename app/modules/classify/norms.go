// Package classify maps raw discipline scores to classification ranks and
// rating points, using the rank-threshold tables ("norms") segmented by
// gender, age group and discipline.
package classify

import (
	"sort"
	"strings"
	"unicode"
)

// Gender is a normalized gender code.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// AgeGroup is a normalized age bucket at tournament date.
type AgeGroup string

const (
	AgeU10 AgeGroup = "U10"
	AgeU12 AgeGroup = "U12"
	AgeU15 AgeGroup = "U15"
	AgeU18 AgeGroup = "U18"
)

// Discipline is a scored darts discipline.
type Discipline string

const (
	DisciplineSet      Discipline = "SET"
	DisciplineSector20 Discipline = "SECTOR20"
	DisciplineBigRound Discipline = "BIGROUND"
)

// NormKey addresses one threshold list inside a norms table.
type NormKey struct {
	Gender     Gender
	AgeGroup   AgeGroup
	Discipline Discipline
}

// RankThreshold is one (minimum score, rank label) entry.
type RankThreshold struct {
	ScoreMin int
	Rank     string
}

// Norms is the full threshold table. Threshold lists are kept sorted
// ascending by ScoreMin; GetRank relies on that order.
type Norms struct {
	thresholds map[NormKey][]RankThreshold
}

// NewNorms builds an empty norms table.
func NewNorms() *Norms {
	return &Norms{thresholds: make(map[NormKey][]RankThreshold)}
}

// Add appends a threshold; call Finalize once all rows are loaded.
func (n *Norms) Add(key NormKey, t RankThreshold) {
	n.thresholds[key] = append(n.thresholds[key], t)
}

// Finalize sorts every threshold list ascending by minimum score.
func (n *Norms) Finalize() {
	for key, list := range n.thresholds {
		sort.Slice(list, func(i, j int) bool { return list[i].ScoreMin < list[j].ScoreMin })
		n.thresholds[key] = list
	}
}

// Thresholds returns the ascending threshold list for a key, or nil.
func (n *Norms) Thresholds(key NormKey) []RankThreshold {
	if n == nil {
		return nil
	}
	return n.thresholds[key]
}

// Empty reports whether the table has no thresholds at all.
func (n *Norms) Empty() bool {
	return n == nil || len(n.thresholds) == 0
}

// normalizeToken lowercases, folds ё to е and strips everything that is not
// a letter or digit. Comparisons over human-typed headers and tokens all go
// through this.
func normalizeToken(value string) string {
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

// NormalizeGender maps a raw gender token to a Gender code.
func NormalizeGender(value string) (Gender, bool) {
	switch normalizeToken(value) {
	case "m", "м", "male", "муж", "мужской":
		return GenderMale, true
	case "f", "ж", "female", "жен", "женский":
		return GenderFemale, true
	}
	return "", false
}

// NormalizeDiscipline maps a raw discipline token to a Discipline code.
func NormalizeDiscipline(value string) (Discipline, bool) {
	switch normalizeToken(value) {
	case "set", "набор", "наборочков", "очки", "score":
		return DisciplineSet, true
	case "sector20", "сектор20", "с20", "c20":
		return DisciplineSector20, true
	case "biground", "большойраунд", "бр":
		return DisciplineBigRound, true
	}
	return "", false
}

// normalizeAgeGroup maps a raw age-group token to an AgeGroup. Explicit
// U-codes and "до NN" spellings win; otherwise the largest digit group found
// in the token is bucketed as a numeric age.
func normalizeAgeGroup(value string) (AgeGroup, bool) {
	normalized := normalizeToken(value)
	if normalized == "" {
		return "", false
	}
	switch {
	case strings.Contains(normalized, "u10") || strings.Contains(normalized, "до10"):
		return AgeU10, true
	case strings.Contains(normalized, "u12") || strings.Contains(normalized, "до12"):
		return AgeU12, true
	case strings.Contains(normalized, "u15") || strings.Contains(normalized, "до15"):
		return AgeU15, true
	case strings.Contains(normalized, "u18") || strings.Contains(normalized, "до18"):
		return AgeU18, true
	}
	maxAge, found := 0, false
	current := 0
	inGroup := false
	flush := func() {
		if inGroup {
			if !found || current > maxAge {
				maxAge = current
			}
			found = true
			current = 0
			inGroup = false
		}
	}
	for _, r := range normalized {
		if r >= '0' && r <= '9' {
			current = current*10 + int(r-'0')
			inGroup = true
			continue
		}
		flush()
	}
	flush()
	if !found {
		return "", false
	}
	switch {
	case maxAge <= 10:
		return AgeU10, true
	case maxAge <= 12:
		return AgeU12, true
	case maxAge <= 15:
		return AgeU15, true
	}
	return AgeU18, true
}

// normalizeRank maps a raw rank token to one of the seven canonical labels.
func normalizeRank(value string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(value))
	text = strings.ReplaceAll(text, " ", "")
	switch text {
	case "3юн", "3юнош", "3юношеский":
		return "3юн", true
	case "2юн", "2юнош", "2юношеский":
		return "2юн", true
	case "1юн", "1юнош", "1юношеский":
		return "1юн", true
	case "3сп", "3спорт", "3спортивный":
		return "3сп", true
	case "2сп", "2спорт", "2спортивный":
		return "2сп", true
	case "1сп", "1спорт", "1спортивный":
		return "1сп", true
	case "кмс":
		return "КМС", true
	}
	return "", false
}
