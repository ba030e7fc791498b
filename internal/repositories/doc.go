// Package repositories implements SQLite persistence for the run history.
//
// [RunRepository] stores one row per settled generate invocation and
// implements [models.Repository] for [*models.Run]. It also satisfies the
// tasks.Recorder interface, so it can be handed to a Trigger directly.
//
// Deletes are soft (deleted_at) and deleted rows are excluded from queries.
// Sequence numbers give runs a stable, human-readable order (#1, #2, ...)
// independent of their UUIDs; [NextSequence] increments the per-table counter atomically.
package repositories
