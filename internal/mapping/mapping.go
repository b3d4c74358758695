// Package mapping proposes a target field for every source column of an
// uploaded file. A heuristic text-similarity pass is always available; when a
// text-generation credential is configured an assisted pass replaces it, with
// the heuristic result as unconditional fallback. Proposal never fails.
package mapping

import (
	"context"
	"log/slog"
	"time"

	"github.com/recruitpipe/importer/internal/schema"
)

// SkipField is the sentinel target for columns that should not be imported.
const SkipField = "SKIP"

// ColumnMapping assigns one source column to a target field with a
// confidence score in [0,1]. Mappings are editable by a reviewer before being
// frozen and handed to the executor.
type ColumnMapping struct {
	SourceColumn string  `json:"sourceColumn"`
	TargetField  string  `json:"targetField"`
	Confidence   float64 `json:"confidence"`
}

// Generator is the optional text-generation capability used for assisted
// mapping. Implementations must honor the context deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine proposes column mappings. A nil Generator means heuristic-only
// operation, which is a valid configuration, not an error.
type Engine struct {
	gen     Generator
	timeout time.Duration
}

// NewEngine creates a mapping engine. gen may be nil.
func NewEngine(gen Generator, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Engine{gen: gen, timeout: timeout}
}

// Propose returns one mapping per source column, order-preserving. When the
// assisted pass is configured it is attempted first; any failure (network,
// timeout, unparseable response) falls back to the heuristic result so the
// call never errors and latency stays bounded.
func (e *Engine) Propose(ctx context.Context, kind schema.EntityKind, columns []string, sampleRows []map[string]string) []ColumnMapping {
	heuristic := HeuristicMappings(kind, columns)
	if e.gen == nil {
		return heuristic
	}

	assistCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	assisted, err := e.assistedMappings(assistCtx, kind, columns, sampleRows, heuristic)
	if err != nil {
		slog.Warn("assisted mapping failed, using heuristic result",
			"entity_kind", kind, "columns", len(columns), "error", err)
		return heuristic
	}
	return assisted
}
