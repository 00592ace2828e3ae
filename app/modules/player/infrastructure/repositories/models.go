package playerdb

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Player is one registered player. Identity is not enforced by a key:
// duplicates can coexist and are merged out-of-band, so matching happens by
// normalized name + birth token at import time.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	LastName  string `bun:"last_name,notnull" json:"last_name"`
	FirstName string `bun:"first_name,notnull" json:"first_name"`
	// MiddleName is the patronymic, when the protocol carried one.
	MiddleName *string `bun:"middle_name,nullzero" json:"middle_name,omitempty"`
	// BirthDate is an ISO date ("2006-01-02") or a bare year ("2006") when
	// the protocol listed the year only.
	BirthDate *string `bun:"birth_date,nullzero" json:"birth_date,omitempty"`
	Gender    *string `bun:"gender,nullzero" json:"gender,omitempty"`
	Coach     *string `bun:"coach,nullzero" json:"coach,omitempty"`
	Club      *string `bun:"club,nullzero" json:"club,omitempty"`
	Notes     *string `bun:"notes,nullzero" json:"notes,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// FullName joins the non-empty name parts.
func (p *Player) FullName() string {
	parts := []string{p.LastName, p.FirstName}
	if p.MiddleName != nil {
		parts = append(parts, *p.MiddleName)
	}
	var kept []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
