package repositories

import (
	"database/sql"
	"fmt"
)

// queryer is satisfied by both [*sql.DB] and [*sql.Tx].
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

// sequenceTables maps a table to its single-row counter table.
var sequenceTables = map[string]string{
	"runs": "runs_sequence",
}

// NextSequence increments and returns the sequence counter for table.
//
// Pass a [*sql.Tx] to roll the increment back together with a failed insert.
func NextSequence(q queryer, table string) (int, error) {
	counter, ok := sequenceTables[table]
	if !ok {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var sequence int
	query := fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", counter)
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}

// withTx runs fn inside a transaction and commits when it returns nil.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
