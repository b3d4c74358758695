package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/recruitpipe/importer/internal/mapping"
	"github.com/recruitpipe/importer/internal/schema"
)

// ClientResolver resolves a client name to its id within a tenant. Satisfied
// by store.EntityStore.
type ClientResolver interface {
	ClientIDByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, bool, error)
}

// Transformer turns one raw row into a typed creation payload.
type Transformer struct {
	clients ClientResolver
}

// NewTransformer creates a transformer. clients is only consulted for job
// imports.
func NewTransformer(clients ClientResolver) *Transformer {
	return &Transformer{clients: clients}
}

// transformed is the typed payload of one row before tenant custom-field
// enrichment; the executor converts it into a store.Record.
type transformed struct {
	Fields map[string]any
}

// Transform applies the confirmed mappings to a raw row: virtual-field
// handling, entity-kind-specific resolution, type coercion, and the
// required-field check. A failure aborts only this row; the caller records
// it and moves on.
func (t *Transformer) Transform(ctx context.Context, row map[string]string, mappings []mapping.ColumnMapping, kind schema.EntityKind, tenant TenantContext) (transformed, error) {
	fields := make(map[string]any)
	var fullName, clientName string

	for _, m := range mappings {
		if m.TargetField == mapping.SkipField {
			continue
		}
		raw := strings.TrimSpace(row[m.SourceColumn])
		if raw == "" {
			continue
		}

		def, ok := schema.FieldByKey(kind, m.TargetField)
		if !ok {
			continue
		}

		switch {
		case def.Virtual && (def.Key == "fullName" || def.Key == "contactName"):
			fullName = raw
		case kind == schema.KindJob && def.Key == "clientName":
			// Resolution is deferred so an explicit clientId can never
			// be overwritten by a raw name.
			clientName = raw
		default:
			if v, ok := coerceValue(def, raw); ok {
				fields[def.Key] = v
			}
		}
	}

	applyNameSplit(kind, fields, fullName)

	if kind == schema.KindJob {
		if err := t.resolveClient(ctx, fields, clientName, tenant); err != nil {
			return transformed{}, err
		}
	}

	if missing := missingRequired(kind, fields); len(missing) > 0 {
		return transformed{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	return transformed{Fields: fields}, nil
}

// applyNameSplit splits a combined name on the first whitespace and fills
// only the name fields not already set by an explicit mapping.
func applyNameSplit(kind schema.EntityKind, fields map[string]any, fullName string) {
	if fullName == "" {
		return
	}

	firstKey, lastKey := "firstName", "lastName"
	if kind == schema.KindClient {
		firstKey, lastKey = "contactFirstName", "contactLastName"
	}

	first, last := splitName(fullName)
	if _, ok := fields[firstKey]; !ok && first != "" {
		fields[firstKey] = first
	}
	if _, ok := fields[lastKey]; !ok && last != "" {
		fields[lastKey] = last
	}
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if i := strings.IndexAny(full, " \t"); i >= 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return full, ""
}

func (t *Transformer) resolveClient(ctx context.Context, fields map[string]any, clientName string, tenant TenantContext) error {
	if clientName == "" {
		return nil // caught by the required-field check below
	}

	id, found, err := t.clients.ClientIDByName(ctx, tenant.TenantID, clientName)
	if err != nil {
		return fmt.Errorf("resolve client %q: %w", clientName, err)
	}
	if !found {
		return fmt.Errorf("Client not found: %s", clientName)
	}
	fields["clientId"] = id
	return nil
}

// missingRequired returns the labels of required fields still absent after
// transformation. Virtual fields count via their resolved form: a job's
// client name is satisfied once clientId is set.
func missingRequired(kind schema.EntityKind, fields map[string]any) []string {
	var missing []string
	for _, def := range schema.FieldsFor(kind) {
		if !def.Required {
			continue
		}
		key := def.Key
		if kind == schema.KindJob && def.Key == "clientName" {
			key = "clientId"
		} else if def.Virtual {
			continue
		}
		if _, ok := fields[key]; !ok {
			missing = append(missing, def.Label)
		}
	}
	return missing
}

// coerceValue converts a raw cell to the field's value type. Unparseable
// optional values are dropped rather than guessed at.
func coerceValue(def schema.FieldDefinition, raw string) (any, bool) {
	switch def.Type {
	case schema.FieldArray:
		items := splitArray(raw)
		return items, len(items) > 0
	case schema.FieldNumber:
		f, ok := parseNumber(raw)
		return f, ok
	case schema.FieldDate:
		ts, ok := parseDate(raw)
		return ts, ok
	case schema.FieldEnum:
		return schema.NormalizeEnumValue(def, raw), true
	default:
		return raw, true
	}
}
