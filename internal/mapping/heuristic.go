package mapping

import (
	"strings"

	"github.com/recruitpipe/importer/internal/schema"
)

// minConfidence is the score below which a column maps to SKIP.
const minConfidence = 0.5

// HeuristicMappings scores every column against the kind's field catalog
// using exact-match-first text similarity. No external dependency: this path
// is always available.
func HeuristicMappings(kind schema.EntityKind, columns []string) []ColumnMapping {
	fields := schema.FieldsFor(kind)

	out := make([]ColumnMapping, len(columns))
	for i, col := range columns {
		target, score := bestField(col, fields)
		if score < minConfidence {
			out[i] = ColumnMapping{SourceColumn: col, TargetField: SkipField, Confidence: 0}
			continue
		}
		out[i] = ColumnMapping{SourceColumn: col, TargetField: target, Confidence: score}
	}
	return out
}

func bestField(column string, fields []schema.FieldDefinition) (string, float64) {
	var bestKey string
	var bestScore float64

	for _, def := range fields {
		if score := similarity(column, def); score > bestScore {
			bestKey = def.Key
			bestScore = score
		}
	}
	return bestKey, bestScore
}

// similarity scores a source column against a field definition.
// Precedence: exact key match 1.0, exact label match 0.95, key-substring
// 0.8, label-substring 0.75, otherwise 0.
func similarity(column string, def schema.FieldDefinition) float64 {
	col := normalize(column)
	if col == "" {
		return 0
	}

	key := normalize(def.Key)
	label := normalize(def.Label)

	switch {
	case col == key:
		return 1.0
	case col == label:
		return 0.95
	case contains(col, key):
		return 0.8
	case contains(col, label):
		return 0.75
	}
	return 0
}

func contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// normalize lower-cases and strips whitespace, underscores and hyphens so
// "First_Name", "first-name" and "firstname" compare equal.
func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, s)
}
