// Package persistence provides a Postgres-backed snapshot store for
// compiled patterns (spec.md §6's "persisted state layout"; SPEC_FULL.md
// §4.8). It persists the logical tuple cep.Snapshot exposes, keyed by
// pattern id, as a single JSONB row per pattern instance.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cepcore/pkg/cep"
)

// StoreError is the base error type for snapshot store operations,
// grounded on the teacher's EventStoreError embedding pattern
// (pkg/dcb/errors.go).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// TableStructureError reports that pattern_snapshots is missing or has
// the wrong shape, grounded on pkg/dcb/db_validation.go's
// TableStructureError.
type TableStructureError struct {
	StoreError
	TableName string
	Issue     string
}

// SnapshotStore persists and restores the logical snapshot tuple of a
// compiled pattern instance (SPEC_FULL.md §6).
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore validates that the pattern_snapshots table exists and
// returns a store bound to pool, following the teacher's
// NewEventStore(ctx, pool) construct-and-validate shape
// (pkg/dcb/postgres/store.go).
func NewSnapshotStore(ctx context.Context, pool *pgxpool.Pool) (*SnapshotStore, error) {
	if pool == nil {
		return nil, &StoreError{Op: "NewSnapshotStore", Err: fmt.Errorf("pool cannot be nil")}
	}
	if err := validateSnapshotTableExists(ctx, pool); err != nil {
		return nil, err
	}
	return &SnapshotStore{pool: pool}, nil
}

// validateSnapshotTableExists checks that pattern_snapshots exists,
// grounded on pkg/dcb/db_validation.go's validateTableExists.
func validateSnapshotTableExists(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`, "pattern_snapshots").Scan(&exists)
	if err != nil {
		return &StoreError{Op: "validate_table_exists", Err: fmt.Errorf("failed to check table existence: %w", err)}
	}
	if !exists {
		return &TableStructureError{
			StoreError: StoreError{Op: "validate_table_exists", Err: fmt.Errorf("required table pattern_snapshots does not exist")},
			TableName:  "pattern_snapshots",
			Issue:      "required table does not exist",
		}
	}
	return nil
}

// wireSnapshot is the JSON-serializable shape of a cep.Snapshot — the
// core's Snapshot type holds unexported Position fields, so it cannot be
// marshaled directly; this package owns the on-the-wire encoding, per
// spec.md §6 ("the exact byte format is out of scope for the core").
type wireSnapshot struct {
	Steps          []wireStepSnapshot `json:"steps"`
	RouterCounters map[string]uint64  `json:"router_counters"`
}

type wireStepSnapshot struct {
	Pending     []wireStateEvent `json:"pending"`
	NewAndEvery []wireStateEvent `json:"new_and_every"`
}

type wireStateEvent struct {
	ID        string            `json:"id"`
	CreatedAt int64             `json:"created_at_unix_nano"`
	Positions []wirePosition    `json:"positions"`
	FlatRow   []wireAttributeRow `json:"flat_row,omitempty"`
}

type wirePosition struct {
	Chain []wireStreamEvent `json:"chain"`
}

type wireStreamEvent struct {
	StreamID         string           `json:"stream_id"`
	Timestamp        int64            `json:"timestamp_unix_nano"`
	Kind             uint8            `json:"kind"`
	BeforeWindowData wireAttributeRow `json:"before_window_data"`
	OutputData       wireAttributeRow `json:"output_data,omitempty"`
	Seq              uint64           `json:"seq"`
}

type wireAttributeRow []wireAttributeValue

type wireAttributeValue struct {
	Kind    uint8   `json:"kind"`
	Bool    bool    `json:"bool,omitempty"`
	Int32   int32   `json:"int32,omitempty"`
	Int64   int64   `json:"int64,omitempty"`
	Float64 float64 `json:"float64,omitempty"`
	String  string  `json:"string,omitempty"`
}

// Save persists pattern's current snapshot under patternID, upserting the
// JSONB row (one row per pattern instance).
func (s *SnapshotStore) Save(ctx context.Context, patternID string, snap cep.Snapshot) error {
	wire := toWireSnapshot(snap)
	data, err := json.Marshal(wire)
	if err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("failed to marshal snapshot: %w", err)}
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO pattern_snapshots (pattern_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (pattern_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, patternID, data)
	if err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("failed to upsert snapshot: %w", err)}
	}
	return nil
}

// Load retrieves the persisted snapshot for patternID. The second return
// value is false if no row exists yet (a fresh pattern instance).
func (s *SnapshotStore) Load(ctx context.Context, patternID string) (cep.Snapshot, bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM pattern_snapshots WHERE pattern_id = $1
	`, patternID).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return cep.Snapshot{}, false, nil
		}
		return cep.Snapshot{}, false, &StoreError{Op: "load", Err: fmt.Errorf("failed to query snapshot: %w", err)}
	}
	var wire wireSnapshot
	if err := json.Unmarshal(data, &wire); err != nil {
		return cep.Snapshot{}, false, &StoreError{Op: "load", Err: fmt.Errorf("failed to unmarshal snapshot: %w", err)}
	}
	return fromWireSnapshot(wire), true, nil
}

// Delete removes a pattern's snapshot row, used at teardown (spec.md §5
// Cancellation: "pattern teardown invalidates all pending state events").
func (s *SnapshotStore) Delete(ctx context.Context, patternID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM pattern_snapshots WHERE pattern_id = $1`, patternID)
	if err != nil {
		return &StoreError{Op: "delete", Err: fmt.Errorf("failed to delete snapshot: %w", err)}
	}
	return nil
}
