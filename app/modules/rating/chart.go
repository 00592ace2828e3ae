package rating

import (
	"errors"
	"os"

	"github.com/wcharczuk/go-chart/v2"
)

// chartTopN caps how many players a rating chart shows.
const chartTopN = 15

// WriteChartPNG renders the top of a rating table as a bar chart.
func WriteChartPNG(path, title string, rows []Row) error {
	if len(rows) == 0 {
		return errors.New("no rating rows to chart")
	}
	if len(rows) > chartTopN {
		rows = rows[:chartTopN]
	}

	bars := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, chart.Value{
			Value: float64(row.Points),
			Label: row.FIO,
		})
	}

	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 48, Bottom: 24}},
		Width:      1024,
		Height:     512,
		BarWidth:   48,
		Bars:       bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.Render(chart.PNG, f)
}
