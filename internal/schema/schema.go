// Package schema declares the importable field catalogs for each entity kind.
// Catalogs are static: the mapping engine and row transformer both consult
// them, so field keys must stay stable across releases.
package schema

import "strings"

// EntityKind selects which catalog an import targets.
type EntityKind string

const (
	KindCandidate EntityKind = "candidate"
	KindJob       EntityKind = "job"
	KindClient    EntityKind = "client"
)

// ParseEntityKind validates a user-supplied kind string.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCandidate:
		return KindCandidate, true
	case KindJob:
		return KindJob, true
	case KindClient:
		return KindClient, true
	}
	return "", false
}

// FieldType represents the expected data type for an imported field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldEnum
	FieldArray
	FieldDate
)

// FieldDefinition describes one importable target field.
// Virtual fields do not map 1:1 to a stored column and get entity-kind-aware
// handling in the row transformer (e.g. splitting a combined name).
type FieldDefinition struct {
	Key        string
	Label      string
	Type       FieldType
	Required   bool
	EnumValues []string
	Virtual    bool
}

// FieldsFor returns the ordered field catalog for an entity kind.
// The returned slice is shared; callers must not mutate it.
func FieldsFor(kind EntityKind) []FieldDefinition {
	switch kind {
	case KindCandidate:
		return CandidateFields
	case KindJob:
		return JobFields
	case KindClient:
		return ClientFields
	}
	return nil
}

// FieldByKey looks up a definition in a kind's catalog.
func FieldByKey(kind EntityKind, key string) (FieldDefinition, bool) {
	for _, def := range FieldsFor(kind) {
		if def.Key == key {
			return def, true
		}
	}
	return FieldDefinition{}, false
}

// RequiredFields returns the catalog entries that must be present on every
// imported record. Virtual fields are excluded: they are satisfied indirectly
// (a full name fills first/last name, a client name resolves to clientId).
func RequiredFields(kind EntityKind) []FieldDefinition {
	var out []FieldDefinition
	for _, def := range FieldsFor(kind) {
		if def.Required && !def.Virtual {
			out = append(out, def)
		}
	}
	return out
}

// FieldTypeName returns a human-readable name for a field type.
func FieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldNumber:
		return "number"
	case FieldEnum:
		return "enum"
	case FieldArray:
		return "array"
	case FieldDate:
		return "date"
	default:
		return "value"
	}
}
