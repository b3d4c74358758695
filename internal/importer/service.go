package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recruitpipe/importer/internal/mapping"
	"github.com/recruitpipe/importer/internal/schema"
	"github.com/recruitpipe/importer/internal/store"
	"github.com/recruitpipe/importer/internal/tabular"
)

// ErrUploadNotFound is returned when an execute call references an unknown
// or expired upload id.
var ErrUploadNotFound = errors.New("upload not found")

// DefaultPendingTTL is how long an analyzed upload waits for mapping
// confirmation before being discarded.
const DefaultPendingTTL = 30 * time.Minute

// Analysis is the outcome of the analyze step: the parsed file summary plus
// proposed mappings, identified by an upload id valid until executed or
// expired.
type Analysis struct {
	UploadID string                  `json:"uploadId"`
	File     *tabular.ParsedFile     `json:"file"`
	Mappings []mapping.ColumnMapping `json:"mappings"`
}

type pendingImport struct {
	kind  schema.EntityKind
	rows  []map[string]string
	timer *time.Timer
}

// Service orchestrates the analyze/execute workflow of one import. Parsed
// rows are held in memory between the two calls; concurrent imports are
// independent apart from the shared entity store.
type Service struct {
	engine *mapping.Engine
	exec   *Executor
	ttl    time.Duration

	mu      sync.Mutex
	pending map[string]*pendingImport
}

// NewService wires the pipeline together. ttl <= 0 selects
// DefaultPendingTTL.
func NewService(st store.EntityStore, engine *mapping.Engine, batchSize int, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &Service{
		engine:  engine,
		exec:    NewExecutor(st, batchSize),
		ttl:     ttl,
		pending: make(map[string]*pendingImport),
	}
}

// Analyze parses an upload, locates the header row, and proposes a column
// mapping for review. The rows stay in memory under the returned upload id.
func (s *Service) Analyze(ctx context.Context, data []byte, format tabular.Format, kind schema.EntityKind) (*Analysis, error) {
	sheet, err := tabular.Read(data, format)
	if err != nil {
		return nil, err
	}

	headerRow := tabular.DetectHeaderRow(sheet)
	rows := sheet.RowsFrom(headerRow)
	columns := sheet.Columns(headerRow)

	sample := rows
	if len(sample) > tabular.MaxSampleRows {
		sample = sample[:tabular.MaxSampleRows]
	}

	uploadID := uuid.New().String()
	entry := &pendingImport{kind: kind, rows: rows}
	entry.timer = time.AfterFunc(s.ttl, func() { s.evict(uploadID) })

	s.mu.Lock()
	s.pending[uploadID] = entry
	s.mu.Unlock()

	slog.Info("upload analyzed",
		"upload_id", uploadID, "entity_kind", kind,
		"header_row", headerRow, "columns", len(columns), "rows", len(rows))

	return &Analysis{
		UploadID: uploadID,
		File: &tabular.ParsedFile{
			Columns:    columns,
			SampleRows: sample,
			TotalRows:  len(rows),
			HeaderRow:  headerRow,
		},
		Mappings: s.engine.Propose(ctx, kind, columns, sample),
	}, nil
}

// Execute runs a previously analyzed upload with the confirmed mappings.
// The pending entry is released when the run finishes, regardless of
// outcome.
func (s *Service) Execute(ctx context.Context, uploadID string, mappings []mapping.ColumnMapping, tenant TenantContext) (ImportResult, error) {
	s.mu.Lock()
	entry, ok := s.pending[uploadID]
	if ok {
		delete(s.pending, uploadID)
	}
	s.mu.Unlock()

	if !ok {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrUploadNotFound, uploadID)
	}
	entry.timer.Stop()

	if err := validateMappings(entry.kind, mappings); err != nil {
		return ImportResult{}, err
	}

	return s.exec.Execute(ctx, entry.rows, mappings, entry.kind, tenant), nil
}

// evict drops an expired pending upload.
func (s *Service) evict(uploadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[uploadID]; ok {
		delete(s.pending, uploadID)
		slog.Info("pending upload expired", "upload_id", uploadID)
	}
}

// validateMappings rejects confirmed mappings with duplicate source columns
// or targets outside the kind's catalog.
func validateMappings(kind schema.EntityKind, mappings []mapping.ColumnMapping) error {
	seen := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if seen[m.SourceColumn] {
			return fmt.Errorf("duplicate mapping for column %q", m.SourceColumn)
		}
		seen[m.SourceColumn] = true

		if m.TargetField == mapping.SkipField {
			continue
		}
		if _, ok := schema.FieldByKey(kind, m.TargetField); !ok {
			return fmt.Errorf("unknown target field %q for column %q", m.TargetField, m.SourceColumn)
		}
	}
	return nil
}
