package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SlotRepository provides whole-value access to named key-value slots.
// A slot holds one JSON-encoded value; reads and writes always replace the
// entire value.
type SlotRepository struct {
	BaseRepository
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get reads the value stored in the named slot. The second return value is
// false when the slot has never been written.
func (r *SlotRepository) Get(ctx context.Context, slot string) (string, bool, error) {
	var value string
	err := r.DB().QueryRowContext(ctx, `
		SELECT value FROM kv_slots WHERE slot = ?
	`, slot).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading slot %q: %w", slot, err)
	}

	return value, true, nil
}

// Put replaces the full value of the named slot.
func (r *SlotRepository) Put(ctx context.Context, slot, value string) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO kv_slots (slot, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, slot, value, r.Now())

	if err != nil {
		return fmt.Errorf("writing slot %q: %w", slot, err)
	}

	return nil
}

// Clear removes the named slot entirely. Clearing a slot that does not exist
// is not an error.
func (r *SlotRepository) Clear(ctx context.Context, slot string) error {
	if _, err := r.DB().ExecContext(ctx, "DELETE FROM kv_slots WHERE slot = ?", slot); err != nil {
		return fmt.Errorf("clearing slot %q: %w", slot, err)
	}
	return nil
}
