package tournamentdb

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"

	playerdb "github.com/nanashi-new/darts/app/modules/player/infrastructure/repositories"
)

// Tournament is one imported tournament protocol.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
	// Date is an ISO date; nil when the protocol did not carry one.
	Date         *string `bun:"date,nullzero" json:"date,omitempty"`
	CategoryCode *string `bun:"category_code,nullzero" json:"category_code,omitempty"`
	LeagueCode   *string `bun:"league_code,nullzero" json:"league_code,omitempty"`
	// SourceFiles is a JSON-encoded list of imported file references.
	SourceFiles string `bun:"source_files,nullzero" json:"source_files,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// SetSourceFiles stores the file reference list.
func (t *Tournament) SetSourceFiles(files []string) {
	data, err := json.Marshal(files)
	if err != nil {
		return
	}
	t.SourceFiles = string(data)
}

// GetSourceFiles decodes the file reference list; malformed data yields nil.
func (t *Tournament) GetSourceFiles() []string {
	var files []string
	if err := json.Unmarshal([]byte(t.SourceFiles), &files); err != nil {
		return nil
	}
	return files
}

// DateString returns the date or an empty string.
func (t *Tournament) DateString() string {
	if t.Date == nil {
		return ""
	}
	return *t.Date
}

// Result is one player's outcome in one tournament. The (tournament, player)
// pair is unique; recalculation mutates the derived fields in place.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID           int64 `bun:"id,pk,autoincrement" json:"id"`
	TournamentID int64 `bun:"tournament_id,notnull" json:"tournament_id"`
	PlayerID     int64 `bun:"player_id,notnull" json:"player_id"`

	Place         *int `bun:"place,nullzero" json:"place,omitempty"`
	ScoreSet      *int `bun:"score_set,nullzero" json:"score_set,omitempty"`
	ScoreSector20 *int `bun:"score_sector20,nullzero" json:"score_sector20,omitempty"`
	ScoreBigRound *int `bun:"score_big_round,nullzero" json:"score_big_round,omitempty"`

	RankSet      *string `bun:"rank_set,nullzero" json:"rank_set,omitempty"`
	RankSector20 *string `bun:"rank_sector20,nullzero" json:"rank_sector20,omitempty"`
	RankBigRound *string `bun:"rank_big_round,nullzero" json:"rank_big_round,omitempty"`

	PointsClassification int `bun:"points_classification,notnull,default:0" json:"points_classification"`
	PointsPlace          int `bun:"points_place,notnull,default:0" json:"points_place"`
	// PointsTotal is always PointsPlace + PointsClassification.
	PointsTotal int    `bun:"points_total,notnull,default:0" json:"points_total"`
	CalcVersion string `bun:"calc_version,nullzero" json:"calc_version,omitempty"`

	Tournament *Tournament      `bun:"rel:belongs-to,join:tournament_id=id" json:"-"`
	Player     *playerdb.Player `bun:"rel:belongs-to,join:player_id=id" json:"-"`
}

// RatingEntry is one joined result row for rolling-rating computation,
// ordered by tournament date descending.
type RatingEntry struct {
	PlayerID       int64   `bun:"player_id"`
	PointsTotal    int     `bun:"points_total"`
	TournamentID   int64   `bun:"tournament_id"`
	TournamentDate *string `bun:"tournament_date"`
	LastName       string  `bun:"last_name"`
	FirstName      string  `bun:"first_name"`
	MiddleName     *string `bun:"middle_name"`
}
