// Package importer contains the import pipeline's business logic, free of
// any transport dependencies.
//
// An import runs in two user-visible steps:
//
//  1. Analyze: the upload is parsed (tabular), the header row located, and a
//     column mapping proposed (mapping). The parsed rows are held in memory
//     under an upload id while a reviewer adjusts the mapping.
//  2. Execute: the frozen mappings drive the row transformer over every data
//     row in batches of Config.Import.BatchSize. Each batch is first created
//     atomically; when that fails the executor degrades to per-row creation
//     so one bad row never discards the rest of its batch.
//
// Row-level failures (missing required fields, unresolvable client names,
// uncoercible values, duplicate keys) are recorded as {row, message} entries
// in the ImportResult and never abort the run. The only fatal error is an
// unreadable file.
package importer
