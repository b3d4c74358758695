package importer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/recruitpipe/importer/internal/mapping"
	"github.com/recruitpipe/importer/internal/schema"
	"github.com/recruitpipe/importer/internal/store"
)

// DefaultBatchSize is the number of rows attempted per atomic creation.
const DefaultBatchSize = 100

// Executor drives a full file of rows through the transformer and the entity
// store in fixed-size batches.
type Executor struct {
	store     store.EntityStore
	transform *Transformer
	batchSize int
}

// NewExecutor creates an executor. batchSize <= 0 selects DefaultBatchSize.
func NewExecutor(st store.EntityStore, batchSize int) *Executor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Executor{
		store:     st,
		transform: NewTransformer(st),
		batchSize: batchSize,
	}
}

// numbered pairs a transformed record with its absolute 1-based row number.
type numbered struct {
	row int
	rec store.Record
}

// Execute processes every data row. Each batch is transformed row by row
// (failures become skip+error entries), then created atomically; when the
// atomic creation fails the batch degrades to per-row creation so only the
// genuinely failing rows are reported.
func (e *Executor) Execute(ctx context.Context, rows []map[string]string, mappings []mapping.ColumnMapping, kind schema.EntityKind, tenant TenantContext) ImportResult {
	var result ImportResult

	customFields, err := e.store.CustomFields(ctx, tenant.TenantID, kind)
	if err != nil {
		// Enrichment is best-effort; the import proceeds without it.
		slog.Warn("custom field lookup failed", "entity_kind", kind, "error", err)
		customFields = nil
	}

	began := time.Now()
	log := slog.With("entity_kind", kind, "tenant_id", tenant.TenantID, "rows", len(rows))

	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))

		var batch []numbered
		for i, row := range rows[start:end] {
			rowNum := start + i + 1

			if isEmptyRow(row) {
				continue
			}

			tr, err := e.transform.Transform(ctx, row, mappings, kind, tenant)
			if err != nil {
				result.skip(rowNum, err.Error())
				continue
			}

			rec := store.Record{
				TenantID:   tenant.TenantID,
				CreatedBy:  tenant.UserID,
				Fields:     tr.Fields,
				CustomData: matchCustomFields(row, customFields),
			}
			batch = append(batch, numbered{row: rowNum, rec: rec})
		}

		e.createBatch(ctx, kind, batch, &result, log)
	}

	log.Info("import executed",
		"created", result.Created, "skipped", result.Skipped,
		"duration", time.Since(began))
	return result
}

// createBatch attempts one atomic multi-row creation and falls back to
// isolated per-row creation on failure.
func (e *Executor) createBatch(ctx context.Context, kind schema.EntityKind, batch []numbered, result *ImportResult, log *slog.Logger) {
	if len(batch) == 0 {
		return
	}

	records := make([]store.Record, len(batch))
	for i, n := range batch {
		records[i] = n.rec
	}

	err := e.store.CreateMany(ctx, kind, records)
	if err == nil {
		result.Created += len(batch)
		return
	}
	log.Warn("atomic batch creation failed, retrying per row",
		"batch_rows", len(batch), "error", err)

	for _, n := range batch {
		if err := e.store.CreateOne(ctx, kind, n.rec); err != nil {
			result.skip(n.row, err.Error())
			continue
		}
		result.Created++
	}
}

// matchCustomFields maps tenant custom-field definitions onto source columns
// by loose name match (case, whitespace and punctuation insensitive) and
// collects the matched raw values.
func matchCustomFields(row map[string]string, defs []store.CustomField) map[string]any {
	if len(defs) == 0 {
		return nil
	}

	byName := make(map[string]string, len(row))
	for col, val := range row {
		byName[looseName(col)] = val
	}

	var custom map[string]any
	for _, def := range defs {
		val, ok := byName[looseName(def.FieldName)]
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		if custom == nil {
			custom = make(map[string]any)
		}
		custom[def.FieldKey] = strings.TrimSpace(val)
	}
	return custom
}

// looseName lower-cases and drops everything but letters and digits.
func looseName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isEmptyRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
