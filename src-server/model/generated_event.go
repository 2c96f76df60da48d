package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// GeneratedEvent records one successful generation: what was asked, what
// came out, and where the file went.
type GeneratedEvent struct {
	bun.BaseModel `bun:"table:generated_events"`

	ID            string `bun:"id,pk,notnull" json:"id"` // the VEVENT UID
	Request       string `bun:"request,notnull" json:"request"`
	ReferenceDate string `bun:"reference_date,notnull" json:"reference_date"`
	Title         string `bun:"title,notnull" json:"title"`
	Description   string `bun:"description" json:"description"`
	Timezone      string `bun:"timezone,notnull" json:"timezone"`
	StartDatetime string `bun:"start_datetime,notnull" json:"start_datetime"`
	EndDatetime   string `bun:"end_datetime,notnull" json:"end_datetime"`
	RRule         string `bun:"rrule" json:"rrule"`
	Filename      string `bun:"filename,notnull" json:"filename"`
	Path          string `bun:"path" json:"path"`
	CreatedAt     int64  `bun:"created_at,notnull" json:"created_at"`
}

func (e *GeneratedEvent) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*GeneratedEvent).Upsert: id is blank")
	case e.StartDatetime == "":
		return fmt.Errorf("(*GeneratedEvent).Upsert: start datetime is blank")
	case e.Filename == "":
		return fmt.Errorf("(*GeneratedEvent).Upsert: filename is blank")
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}

	exists, err := db.NewSelect().
		Model((*GeneratedEvent)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*GeneratedEvent).Upsert: %w", err)
	}

	switch exists {
	case true:
		if _, err := db.NewUpdate().
			Model(e).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*GeneratedEvent).Upsert: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*GeneratedEvent).Upsert: %w", err)
		}
	}
	return nil
}

// ListGeneratedEvents returns up to limit records, newest first. A
// non-positive limit returns everything.
func ListGeneratedEvents(ctx context.Context, db bun.IDB, limit int) ([]GeneratedEvent, error) {
	events := make([]GeneratedEvent, 0)
	query := db.NewSelect().
		Model(&events).
		Order("created_at DESC", "id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListGeneratedEvents: %w", err)
	}
	return events, nil
}
