package classify

import (
	_ "embed"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

// Bundled fallback workbook, materialized when the configured norms file is
// missing.
//
//go:embed resources/norms.xlsx.b64
var embeddedNormsB64 string

var (
	errNoSheets = errors.New("norms workbook has no sheets")
	errNoHeader = errors.New("norms workbook has no recognizable header row")
)

// LoadResult reports the outcome of a norms load. A failed load is not an
// error: classification degrades to zero points and the Warning explains why.
type LoadResult struct {
	Norms   *Norms
	Loaded  bool
	Path    string
	Warning string
	// Version and UpdatedAt come from the workbook document properties and
	// are advisory only.
	Version   string
	UpdatedAt string
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	result  LoadResult
}

// Loader loads and caches parsed norms tables. Parsed thresholds are
// memoized per path until the file changes on disk.
type Loader struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewLoader creates a norms loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]cacheEntry)}
}

// Load parses the norms workbook at path, materializing the bundled default
// first when the file does not exist.
func (l *Loader) Load(path string) LoadResult {
	if !ensureNormsFile(path) {
		return LoadResult{
			Path:    path,
			Warning: "norms workbook not found and the bundled template could not be materialized",
		}
	}

	info, statErr := os.Stat(path)

	l.mu.Lock()
	if statErr == nil {
		if entry, ok := l.cache[path]; ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			l.mu.Unlock()
			return entry.result
		}
	}
	l.mu.Unlock()

	norms, err := ParseNormsWorkbook(path)
	if err != nil {
		return LoadResult{
			Path:    path,
			Warning: "norms workbook is corrupt or has an unexpected layout",
		}
	}

	result := LoadResult{Norms: norms, Loaded: true, Path: path}
	// Metadata is advisory; a read failure never fails the load.
	result.Version, result.UpdatedAt = readNormsMetadata(path)

	if statErr == nil {
		l.mu.Lock()
		l.cache[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), result: result}
		l.mu.Unlock()
	}
	return result
}

func ensureNormsFile(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(embeddedNormsB64), ""))
	if err != nil {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false
	}
	return os.WriteFile(path, data, 0o644) == nil
}

// normsHeaderSynonyms recognizes the five required norms columns.
var normsHeaderSynonyms = map[string][]string{
	"gender":     {"пол", "gender", "sex"},
	"age_group":  {"возраст", "возрастнаягруппа", "agegroup", "age"},
	"discipline": {"дисциплина", "discipline", "вид"},
	"score_min":  {"минимум", "минимальныйрезультат", "scoremin", "порог"},
	"rank":       {"разряд", "rank", "квалификация"},
}

func detectNormsHeader(row []string) map[string]int {
	mapping := make(map[string]int)
	for idx, cell := range row {
		normalized := normalizeToken(cell)
		if normalized == "" {
			continue
		}
		for key, synonyms := range normsHeaderSynonyms {
			if _, taken := mapping[key]; taken {
				continue
			}
			for _, s := range synonyms {
				if normalized == normalizeToken(s) {
					mapping[key] = idx
					break
				}
			}
		}
	}
	return mapping
}

// ParseNormsWorkbook reads the first sheet of an xlsx norms workbook: a
// header row covering gender/age group/discipline/minimum score/rank, then
// data rows until the first fully blank row. Rows failing any required-field
// normalization are skipped.
func ParseNormsWorkbook(path string) (*Norms, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	norms := NewNorms()
	var header map[string]int
	for _, row := range rows {
		if header == nil {
			candidate := detectNormsHeader(row)
			if len(candidate) == len(normsHeaderSynonyms) {
				header = candidate
			}
			continue
		}
		if isBlankRow(row) {
			break
		}
		gender, ok := NormalizeGender(cellAt(row, header["gender"]))
		if !ok {
			continue
		}
		ageGroup, ok := normalizeAgeGroup(cellAt(row, header["age_group"]))
		if !ok {
			continue
		}
		discipline, ok := NormalizeDiscipline(cellAt(row, header["discipline"]))
		if !ok {
			continue
		}
		rank, ok := normalizeRank(cellAt(row, header["rank"]))
		if !ok {
			continue
		}
		scoreMin, ok := parseScoreMin(cellAt(row, header["score_min"]))
		if !ok {
			continue
		}
		norms.Add(
			NormKey{Gender: gender, AgeGroup: ageGroup, Discipline: discipline},
			RankThreshold{ScoreMin: scoreMin, Rank: rank},
		)
	}
	if header == nil {
		return nil, errNoHeader
	}
	norms.Finalize()
	return norms, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseScoreMin(value string) (int, bool) {
	text := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func readNormsMetadata(path string) (version, updatedAt string) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	props, err := f.GetDocProps()
	if err != nil || props == nil {
		return "", ""
	}
	modified := props.Modified
	if modified == "" {
		modified = props.Created
	}
	if t, err := time.Parse(time.RFC3339, modified); err == nil {
		updatedAt = t.Format("2006-01-02")
	}
	return props.Version, updatedAt
}
