package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recruitpipe/importer/internal/schema"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint
// violations.
const uniqueViolation = "23505"

// PgStore implements EntityStore on PostgreSQL. Each entity kind has its own
// table with a few promoted columns; the remaining catalog fields live in a
// jsonb data column and tenant custom fields in a jsonb custom_data column.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a store backed by the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// CreateMany inserts all records in one transaction using a pgx batch.
// Any failure rolls the whole batch back.
func (s *PgStore) CreateMany(ctx context.Context, kind schema.EntityKind, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		sql, args, err := insertStatement(kind, rec)
		if err != nil {
			return err
		}
		batch.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return mapPgError(err)
		}
	}
	if err := br.Close(); err != nil {
		return mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CreateOne inserts a single record outside any shared transaction.
func (s *PgStore) CreateOne(ctx context.Context, kind schema.EntityKind, record Record) error {
	sql, args, err := insertStatement(kind, record)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

// ClientIDByName resolves a client by case-insensitive exact name match
// within the tenant.
func (s *PgStore) ClientIDByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM clients WHERE tenant_id = $1 AND lower(name) = lower($2)`,
		tenantID, strings.TrimSpace(name),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup client %q: %w", name, err)
	}
	return id, true, nil
}

// CustomFields lists the tenant's custom-field definitions for a kind.
func (s *PgStore) CustomFields(ctx context.Context, tenantID uuid.UUID, kind schema.EntityKind) ([]CustomField, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT field_key, field_name FROM custom_fields WHERE tenant_id = $1 AND entity_kind = $2`,
		tenantID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()

	var defs []CustomField
	for rows.Next() {
		var cf CustomField
		if err := rows.Scan(&cf.FieldKey, &cf.FieldName); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		defs = append(defs, cf)
	}
	return defs, rows.Err()
}

// promotedColumns maps entity kinds to the catalog fields stored as real
// columns; everything else goes into the data jsonb.
var promotedColumns = map[schema.EntityKind][]string{
	schema.KindCandidate: {"firstName", "lastName", "email"},
	schema.KindJob:       {"clientId", "title"},
	schema.KindClient:    {"name"},
}

// columnNames maps field keys to their snake_case column names.
var columnNames = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"clientId":  "client_id",
	"title":     "title",
	"name":      "name",
}

func tableName(kind schema.EntityKind) (string, error) {
	switch kind {
	case schema.KindCandidate:
		return "candidates", nil
	case schema.KindJob:
		return "jobs", nil
	case schema.KindClient:
		return "clients", nil
	}
	return "", fmt.Errorf("unknown entity kind %q", kind)
}

func insertStatement(kind schema.EntityKind, rec Record) (string, []any, error) {
	table, err := tableName(kind)
	if err != nil {
		return "", nil, err
	}

	cols := []string{"id", "tenant_id", "created_by"}
	args := []any{uuid.New(), rec.TenantID, rec.CreatedBy}

	rest := make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		rest[k] = v
	}
	for _, key := range promotedColumns[kind] {
		cols = append(cols, columnNames[key])
		if v, ok := rest[key]; ok {
			args = append(args, v)
			delete(rest, key)
		} else {
			args = append(args, nil)
		}
	}

	data, err := json.Marshal(rest)
	if err != nil {
		return "", nil, fmt.Errorf("encode data: %w", err)
	}
	custom, err := json.Marshal(rec.CustomData)
	if err != nil {
		return "", nil, fmt.Errorf("encode custom data: %w", err)
	}
	cols = append(cols, "data", "custom_data")
	args = append(args, data, custom)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, args, nil
}

// mapPgError folds unique violations into ErrDuplicate so callers can report
// them per row without depending on pgconn.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		detail := pgErr.Detail
		if detail == "" {
			detail = pgErr.ConstraintName
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, detail)
	}
	return err
}
