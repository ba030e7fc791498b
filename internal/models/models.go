package models

import "time"

// Model is a persisted record with a UUID, a per-table sequence number and soft-delete support.
type Model interface {
	ID() string
	Sequence() int // 0 until stored
	CreatedAt() time.Time
	DeletedAt() *time.Time // nil unless soft-deleted
	Validate() error
}

// Repository is the data access contract for a [Model] type.
//
// Get and List never return soft-deleted records; Delete is a soft delete.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
