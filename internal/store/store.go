// Package store provides tenant-scoped persistence for imported entities.
// The import pipeline only depends on the EntityStore interface; the pgx
// implementation lives alongside it.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/recruitpipe/importer/internal/schema"
)

// ErrDuplicate marks unique-constraint violations so the batch fallback path
// can report them per row.
var ErrDuplicate = errors.New("duplicate record")

// Record is a fully typed creation payload produced by the row transformer.
// Fields is keyed by catalog field keys; CustomData by tenant custom-field
// keys.
type Record struct {
	TenantID   uuid.UUID
	CreatedBy  uuid.UUID
	Fields     map[string]any
	CustomData map[string]any
}

// CustomField is a tenant-defined extra field for an entity kind.
type CustomField struct {
	FieldKey  string
	FieldName string
}

// EntityStore is the entity-creation capability consumed by the batch
// executor plus the lookups the row transformer needs.
type EntityStore interface {
	// CreateMany creates all records atomically: either every record is
	// persisted or none are. A failure may be caused by any single record.
	CreateMany(ctx context.Context, kind schema.EntityKind, records []Record) error

	// CreateOne creates a single record. Unique violations are reported
	// with ErrDuplicate in the chain.
	CreateOne(ctx context.Context, kind schema.EntityKind, record Record) error

	// ClientIDByName resolves a client by case-insensitive exact name
	// match within a tenant.
	ClientIDByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, bool, error)

	// CustomFields lists the tenant's custom-field definitions for a kind.
	CustomFields(ctx context.Context, tenantID uuid.UUID, kind schema.EntityKind) ([]CustomField, error)
}

// IsDuplicate reports whether err stems from a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
