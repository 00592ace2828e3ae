package parsers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHeaders(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want map[string]int
	}{
		{
			name: "standard protocol header",
			row:  []string{"ФИО", "Место", "Очки"},
			want: map[string]int{FieldFIO: 0, FieldPlace: 1, FieldScoreSet: 2},
		},
		{
			name: "full header with punctuation and case noise",
			row:  []string{"Ф.И.О.", "Дата рождения", "Тренер", "МЕСТО", "Набор очков", "Сектор 20", "Большой раунд"},
			want: map[string]int{
				FieldFIO: 0, FieldBirth: 1, FieldCoach: 2, FieldPlace: 3,
				FieldScoreSet: 4, FieldScoreSector20: 5, FieldScoreBigRound: 6,
			},
		},
		{
			name: "unknown labels map nothing",
			row:  []string{"Спортсмен", "Результат"},
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetectHeaders(tt.row))
		})
	}
}

func TestScanSheetSingleBlock(t *testing.T) {
	d := &Detector{}
	rows := [][]string{
		{"Открытый турнир"},
		{},
		{"ФИО", "Место", "Очки"},
		{"Иванов Иван", "1", "350"},
		{"Петров Пётр", "2", "320"},
		{},
		{"эта строка уже не таблица"},
	}

	blocks := d.ScanSheet("Лист1", rows, false)
	require.Len(t, blocks, 1)

	block := blocks[0]
	require.Equal(t, "Лист1", block.Sheet)
	require.Equal(t, 3, block.StartRow)
	require.Equal(t, 5, block.EndRow)
	require.Len(t, block.Rows, 2)
	require.Equal(t, 1.0, block.Confidence)
	require.False(t, block.NeedsMapping())
	require.Equal(t, "Иванов Иван", *block.Rows[0].FIO)
	require.Equal(t, "2", *block.Rows[1].Place)
}

func TestScanSheetStopsAtTotalRow(t *testing.T) {
	d := &Detector{}
	rows := [][]string{
		{"ФИО", "Место", "Очки"},
		{"Иванов Иван", "1", "350"},
		{"Итого", "", "350"},
		{"Петров Пётр", "2", "320"},
	}

	blocks := d.ScanSheet("Лист1", rows, false)
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Rows, 1)
}

func TestScanSheetNeedsMappingWithoutProfile(t *testing.T) {
	d := &Detector{}
	rows := [][]string{
		{"ФИО", "Ранг", "Результат"},
		{"Иванов Иван", "1", "350"},
	}

	blocks := d.ScanSheet("Лист1", rows, false)
	require.Len(t, blocks, 1)
	require.True(t, blocks[0].NeedsMapping())
	require.InDelta(t, 1.0/3.0, blocks[0].Confidence, 1e-9)
}

func TestScanSheetAdoptsBestProfile(t *testing.T) {
	d := &Detector{
		Profiles: []ImportProfile{
			{
				Name: "городская лига",
				Aliases: map[string][]string{
					FieldPlace:    {"Ранг"},
					FieldScoreSet: {"Результат"},
				},
			},
		},
	}
	rows := [][]string{
		{"ФИО", "Ранг", "Результат"},
		{"Иванов Иван", "1", "350"},
	}

	blocks := d.ScanSheet("Лист1", rows, false)
	require.Len(t, blocks, 1)

	block := blocks[0]
	require.Equal(t, "городская лига", block.Profile)
	require.Equal(t, 1.0, block.Confidence)
	require.False(t, block.NeedsMapping())
	require.Equal(t, 1, block.Columns[FieldPlace])
	require.Equal(t, 2, block.Columns[FieldScoreSet])
	require.Equal(t, "place", block.HeaderMapping["Ранг"])
}

func TestScanSheetMultipleBlocks(t *testing.T) {
	d := &Detector{}
	rows := [][]string{
		{"ФИО", "Место", "Очки"},
		{"Иванов Иван", "1", "350"},
		{},
		{"Мальчики"},
		{"ФИО", "Место", "Очки"},
		{"Петров Пётр", "1", "320"},
		{"Сидоров Сидор", "2", "300"},
	}

	blocks := d.ScanSheet("Лист1", rows, true)
	require.Len(t, blocks, 2)
	require.Len(t, blocks[0].Rows, 1)
	require.Len(t, blocks[1].Rows, 2)
	require.Equal(t, 5, blocks[1].StartRow)
}

func TestScanSheetHeaderLookalikeSplitsBlock(t *testing.T) {
	// A data row that matches header synonyms starts a new block in multi
	// mode. Documented trade-off of unattended scanning.
	d := &Detector{}
	rows := [][]string{
		{"ФИО", "Место", "Очки"},
		{"Иванов Иван", "1", "350"},
		{"ФИО", "Место", "Очки"},
		{"Петров Пётр", "2", "320"},
	}

	blocks := d.ScanSheet("Лист1", rows, true)
	require.Len(t, blocks, 2)
	require.Len(t, blocks[0].Rows, 1)
	require.Len(t, blocks[1].Rows, 1)
}
