package classify

import (
	"strconv"
	"strings"
	"time"
)

// flexDateLayouts are the date spellings accepted for birth and tournament
// dates, in the order they are tried.
var flexDateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02.01.06",
	"02/01/2006",
}

// ParseFlexDate parses a date token: ISO or common dotted/slashed layouts,
// or a bare 4-digit year (taken as January 1st).
func ParseFlexDate(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	if len(text) == 4 {
		if year, err := strconv.Atoi(text); err == nil {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	for _, layout := range flexDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeGroupAt buckets the calendar-aware age at the tournament date. The age
// is decremented when the tournament's month/day precedes the birth
// month/day. A negative age or an unparseable date yields no group.
func AgeGroupAt(birthDate, tournamentDate string) (AgeGroup, bool) {
	birth, ok := ParseFlexDate(birthDate)
	if !ok {
		return "", false
	}
	tournament, ok := ParseFlexDate(tournamentDate)
	if !ok {
		return "", false
	}
	age := tournament.Year() - birth.Year()
	if tournament.Month() < birth.Month() ||
		(tournament.Month() == birth.Month() && tournament.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return "", false
	}
	switch {
	case age < 10:
		return AgeU10, true
	case age < 12:
		return AgeU12, true
	case age < 15:
		return AgeU15, true
	}
	return AgeU18, true
}

// GetRank resolves the classification rank for one discipline score.
// The threshold list is walked in ascending ScoreMin order keeping the
// highest threshold the score still meets; the first failing threshold ends
// the scan. Nil score, unknown tokens or a missing threshold list yield nil.
func GetRank(score *int, gender, birthDate, tournamentDate string, discipline Discipline, norms *Norms) *string {
	if score == nil || norms.Empty() {
		return nil
	}
	genderKey, ok := NormalizeGender(gender)
	if !ok {
		return nil
	}
	ageGroup, ok := AgeGroupAt(birthDate, tournamentDate)
	if !ok {
		return nil
	}
	thresholds := norms.Thresholds(NormKey{Gender: genderKey, AgeGroup: ageGroup, Discipline: discipline})
	if len(thresholds) == 0 {
		return nil
	}
	var best *string
	for i := range thresholds {
		if *score < thresholds[i].ScoreMin {
			break
		}
		best = &thresholds[i].Rank
	}
	return best
}

// Scores holds the raw per-discipline results of one protocol row.
type Scores struct {
	Set      *int
	Sector20 *int
	BigRound *int
}

// RankSet holds the derived rank label per discipline. Nil means the
// discipline was not evaluated or no threshold was met.
type RankSet struct {
	Set      *string
	Sector20 *string
	BigRound *string
}

// Classify derives ranks and the classification point total for one row.
// U10 players are evaluated on the SET discipline only; the other two are
// skipped entirely. Without norms, or when the age group cannot be
// determined, all ranks are nil and the total is zero.
func Classify(scores Scores, gender, birthDate, tournamentDate string, norms *Norms) (RankSet, int) {
	var ranks RankSet
	if norms.Empty() {
		return ranks, 0
	}
	ageGroup, ok := AgeGroupAt(birthDate, tournamentDate)
	if !ok {
		return ranks, 0
	}

	type eval struct {
		discipline Discipline
		score      *int
		target     **string
	}
	evaluated := []eval{
		{DisciplineSet, scores.Set, &ranks.Set},
		{DisciplineSector20, scores.Sector20, &ranks.Sector20},
		{DisciplineBigRound, scores.BigRound, &ranks.BigRound},
	}
	if ageGroup == AgeU10 {
		evaluated = evaluated[:1]
	}

	total := 0
	for _, e := range evaluated {
		rank := GetRank(e.score, gender, birthDate, tournamentDate, e.discipline, norms)
		*e.target = rank
		if rank != nil {
			total += PointsForRank(*rank)
		}
	}
	return ranks, total
}
