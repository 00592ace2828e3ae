package classify

import (
	"errors"
	"fmt"
)

// ErrInvalidPlace indicates a non-positive finishing place.
var ErrInvalidPlace = errors.New("place must be a positive integer")

// placeBrackets maps inclusive place ranges to rating points. Places beyond
// the last bracket score zero.
var placeBrackets = []struct {
	from, to int
	points   int
}{
	{1, 1, 14},
	{2, 2, 12},
	{3, 4, 10},
	{5, 8, 8},
	{9, 16, 6},
	{17, 32, 4},
	{33, 64, 2},
}

// rankPoints is the fixed rank label -> points table. It carries both the
// short Cyrillic labels used in norms workbooks and the roman-numeral
// spellings that appear in older protocols.
var rankPoints = map[string]int{
	"3юн": 2, "IIIюн": 2,
	"2юн": 4, "IIюн": 4,
	"1юн": 6, "Iюн": 6,
	"3сп": 8, "IIIсп": 8,
	"2сп": 10, "IIсп": 10,
	"1сп": 12,
	"КМС": 14,
}

// PointsForPlace returns the rating points awarded for a finishing place.
// A nil place scores zero; places beyond 64 score zero; a non-positive place
// is an error.
func PointsForPlace(place *int) (int, error) {
	if place == nil {
		return 0, nil
	}
	if *place <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPlace, *place)
	}
	for _, b := range placeBrackets {
		if *place >= b.from && *place <= b.to {
			return b.points, nil
		}
	}
	return 0, nil
}

// PointsForRank returns the points for a classification rank label.
// Unknown or empty labels score zero.
func PointsForRank(label string) int {
	return rankPoints[label]
}
