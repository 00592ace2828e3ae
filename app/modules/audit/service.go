package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service writes and reads audit events.
type Service struct {
	db     *bun.DB
	logger *slog.Logger
}

// NewService creates an audit service.
func NewService(db *bun.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Log records one event. Context marshalling failures degrade to an empty
// context; audit logging must never fail the operation it describes.
func (s *Service) Log(ctx context.Context, eventType, title, details string, correlationID uuid.UUID, fields map[string]any) error {
	return s.LogLevel(ctx, eventType, "info", title, details, correlationID, fields)
}

// LogLevel is Log with an explicit level ("info", "warn", "error").
func (s *Service) LogLevel(ctx context.Context, eventType, level, title, details string, correlationID uuid.UUID, fields map[string]any) error {
	contextJSON := "{}"
	if fields != nil {
		if data, err := json.Marshal(fields); err == nil {
			contextJSON = string(data)
		}
	}
	event := &Event{
		EventType:     eventType,
		Title:         title,
		Details:       details,
		Level:         level,
		ContextJSON:   contextJSON,
		CorrelationID: correlationID,
	}
	if _, err := s.db.NewInsert().Model(event).Exec(ctx); err != nil {
		s.logger.Error("failed to write audit event", "event_type", eventType, "error", err)
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// List returns events newest first, optionally filtered by type and by a
// title/details substring.
func (s *Service) List(ctx context.Context, eventType, query string) ([]Event, error) {
	q := s.db.NewSelect().Model((*Event)(nil)).Order("id DESC")
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var events []Event
	if err := q.Scan(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	// Substring filtering happens in Go: sqlite's lower() folds ASCII only,
	// which breaks Cyrillic titles.
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return events, nil
	}
	var matched []Event
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Title), term) ||
			strings.Contains(strings.ToLower(event.Details), term) {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// ExportTxt writes the filtered event list as plain text lines.
func (s *Service) ExportTxt(ctx context.Context, path, eventType, query string) error {
	events, err := s.List(ctx, eventType, query)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, event := range events {
		fmt.Fprintf(&b, "[%s] %s %s | %s | %s\n",
			event.CreatedAt.Format("2006-01-02 15:04:05"),
			strings.ToUpper(event.Level),
			event.EventType,
			event.Title,
			event.Details,
		)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to export audit log: %w", err)
	}
	return nil
}
