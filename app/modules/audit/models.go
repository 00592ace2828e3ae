// Package audit records operation events (imports, recalculations, exports,
// merges) for later review.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event types.
const (
	EventImportFile   = "IMPORT_FILE"
	EventImportFolder = "IMPORT_FOLDER"
	EventRecalcOne    = "RECALC_TOURNAMENT"
	EventRecalcAll    = "RECALC_ALL"
	EventExportFile   = "EXPORT_FILE"
	EventExportBatch  = "EXPORT_BATCH"
	EventMergePlayers = "MERGE_PLAYERS"
	EventError        = "ERROR"
)

// EventTypes lists the known event types in display order.
var EventTypes = []string{
	EventImportFile,
	EventImportFolder,
	EventRecalcOne,
	EventRecalcAll,
	EventExportFile,
	EventExportBatch,
	EventMergePlayers,
	EventError,
}

// Event is one audit-log entry.
type Event struct {
	bun.BaseModel `bun:"table:audit_log,alias:al"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	EventType string `bun:"event_type,notnull" json:"event_type"`
	Title     string `bun:"title,notnull" json:"title"`
	Details   string `bun:"details,nullzero" json:"details,omitempty"`
	Level     string `bun:"level,notnull,default:'info'" json:"level"`
	// ContextJSON carries structured context as a JSON document.
	ContextJSON string `bun:"context_json,nullzero" json:"context_json,omitempty"`
	// CorrelationID links events of one batch run.
	CorrelationID uuid.UUID `bun:"correlation_id,type:uuid" json:"correlation_id"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
