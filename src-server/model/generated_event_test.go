package model_test

import (
	"context"
	"database/sql"
	"testing"

	"nlcal/src-server/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return bundb
}

func TestGeneratedEvent(t *testing.T) {
	ctx := context.Background()
	bundb := newTestDB(t)

	// creating the schema twice is fine
	require.NoError(t, model.CreateSchema(ctx, bundb))

	older := model.GeneratedEvent{
		ID:            uuid.NewString(),
		Request:       "dentist monday 9am",
		ReferenceDate: "2025-11-24",
		Title:         "Dentist",
		Timezone:      "America/New_York",
		StartDatetime: "2025-11-24T09:00:00",
		EndDatetime:   "2025-11-24T09:30:00",
		Filename:      "2025-11-24_Dentist.ics",
		CreatedAt:     100,
	}
	newer := model.GeneratedEvent{
		ID:            uuid.NewString(),
		Request:       "every friday 7pm for 8 weeks",
		ReferenceDate: "2025-11-24",
		Title:         "Game night",
		Timezone:      "America/New_York",
		StartDatetime: "2025-11-28T19:00:00",
		EndDatetime:   "2025-11-28T19:30:00",
		RRule:         "FREQ=WEEKLY;COUNT=8;BYDAY=FR",
		Filename:      "2025-11-28_Game_night.ics",
		CreatedAt:     200,
	}
	require.NoError(t, older.Upsert(ctx, bundb))
	require.NoError(t, newer.Upsert(ctx, bundb))

	// case: newest first
	events, err := model.ListGeneratedEvents(ctx, bundb, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, newer.ID, events[0].ID)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=8;BYDAY=FR", events[0].RRule)
	assert.Equal(t, older.ID, events[1].ID)

	// case: limit
	events, err = model.ListGeneratedEvents(ctx, bundb, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, newer.ID, events[0].ID)

	// case: upsert an existing id updates in place
	older.Path = "/tmp/2025-11-24_Dentist.ics"
	require.NoError(t, older.Upsert(ctx, bundb))
	count, err := bundb.NewSelect().Model((*model.GeneratedEvent)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	events, err = model.ListGeneratedEvents(ctx, bundb, 0)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/2025-11-24_Dentist.ics", events[1].Path)
}

func TestGeneratedEventUpsertValidation(t *testing.T) {
	bundb := newTestDB(t)
	for name, e := range map[string]model.GeneratedEvent{
		"no id":       {StartDatetime: "2025-11-24T09:00:00", Filename: "a.ics"},
		"no start":    {ID: "x", Filename: "a.ics"},
		"no filename": {ID: "x", StartDatetime: "2025-11-24T09:00:00"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, e.Upsert(context.Background(), bundb))
		})
	}
}
