package importer

import (
	"github.com/google/uuid"
)

// TenantContext identifies the tenant and acting user of one import run.
type TenantContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

// RowError describes one failed data row. Row is 1-based and relative to the
// data rows of the whole file, not the batch.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the terminal output of one import run. It is accumulated
// monotonically and never persisted.
//
// Invariants: Created+Skipped equals the number of data rows processed, and
// len(Errors) equals Skipped.
type ImportResult struct {
	Created int        `json:"created"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

func (r *ImportResult) skip(row int, message string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Message: message})
}
