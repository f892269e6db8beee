package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famtime/backend/internal/storage/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "famtime-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))
	return db
}

func newTestStore(t *testing.T) (*EventStore, *SlotRepository) {
	t.Helper()
	slots := NewSlotRepository(newTestDB(t))
	return NewEventStore(slots), slots
}

func TestEventStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	end := time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "mock-1", Title: "Familie middag", Start: time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC), End: &end},
		{ID: "mock-2", Title: "Film aften", Start: time.Date(2025, 1, 11, 20, 0, 0, 0, time.UTC)},
	}

	store.Save(ctx, events)
	loaded := store.Load(ctx)

	require.Len(t, loaded, 2)
	assert.Equal(t, "mock-1", loaded[0].ID)
	assert.Equal(t, "Familie middag", loaded[0].Title)
	assert.True(t, events[0].Start.Equal(loaded[0].Start))
	require.NotNil(t, loaded[0].End)
	assert.True(t, end.Equal(*loaded[0].End))
}

func TestEventStoreLoadEmptySlot(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Empty(t, store.Load(context.Background()))
}

func TestEventStoreDropsInvalidRecordsOnLoad(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()

	// One valid record and one without any resolvable date.
	require.NoError(t, slots.Put(ctx, EventSlot,
		`[{"id":"mock-1","title":"ok","startDate":"2025-01-10T18:00:00.000Z"},{"title":"no date"}]`))

	loaded := store.Load(ctx)
	require.Len(t, loaded, 1)
	assert.Equal(t, "mock-1", loaded[0].ID)
}

func TestEventStoreInvalidOnlySlotYieldsEmptyAndSaveRewrites(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, slots.Put(ctx, EventSlot, `[{"title":"no date"}]`))

	loaded := store.Load(ctx)
	assert.Empty(t, loaded)

	store.Save(ctx, loaded)
	raw, ok, err := slots.Get(ctx, EventSlot)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, raw)
}

func TestEventStoreFailsOpenOnCorruptSlot(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, slots.Put(ctx, EventSlot, `{not json`))

	assert.Empty(t, store.Load(ctx))

	// The corrupt slot must be cleared, not left to fail again.
	_, ok, err := slots.Get(ctx, EventSlot)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventStoreValidateIsPure(t *testing.T) {
	store, _ := newTestStore(t)

	in := []models.Event{
		{ID: "a", Title: "valid", Start: time.Now()},
		{ID: "b", Title: "invalid"},
	}

	out := store.Validate(in)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
	assert.Len(t, in, 2)
}

func TestSlotRepositoryWholeValueSemantics(t *testing.T) {
	slots := NewSlotRepository(newTestDB(t))
	ctx := context.Background()

	_, ok, err := slots.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, slots.Put(ctx, "s", "one"))
	require.NoError(t, slots.Put(ctx, "s", "two"))

	v, ok, err := slots.Get(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, slots.Clear(ctx, "s"))
	require.NoError(t, slots.Clear(ctx, "s"))
	_, ok, err = slots.Get(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)
}
