package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recruitpipe/importer/internal/schema"
)

// maxPromptSampleRows caps how many sample rows are included in the prompt.
const maxPromptSampleRows = 5

// proposedMapping is the JSON shape the model is asked to produce.
type proposedMapping struct {
	Column     string  `json:"column"`
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
}

func (e *Engine) assistedMappings(ctx context.Context, kind schema.EntityKind, columns []string, sampleRows []map[string]string, heuristic []ColumnMapping) ([]ColumnMapping, error) {
	prompt := buildPrompt(kind, columns, sampleRows)

	text, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	proposals, err := parseProposals(text)
	if err != nil {
		return nil, err
	}

	// Index by normalized column name; the model sometimes reformats them.
	byColumn := make(map[string]proposedMapping, len(proposals))
	for _, p := range proposals {
		byColumn[normalize(p.Column)] = p
	}

	valid := validTargets(kind)

	out := make([]ColumnMapping, len(columns))
	for i, col := range columns {
		p, ok := byColumn[normalize(col)]
		if !ok {
			// Column the model ignored: keep the heuristic proposal.
			out[i] = heuristic[i]
			continue
		}

		target := p.Field
		if !valid[target] {
			target = SkipField
		}
		out[i] = ColumnMapping{
			SourceColumn: col,
			TargetField:  target,
			Confidence:   clamp01(p.Confidence),
		}
	}
	return out, nil
}

func buildPrompt(kind schema.EntityKind, columns []string, sampleRows []map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are mapping spreadsheet columns to %s fields in a recruitment system.\n\n", kind)
	b.WriteString("Target fields:\n")
	for _, def := range schema.FieldsFor(kind) {
		fmt.Fprintf(&b, "- %s (%q, type %s", def.Key, def.Label, schema.FieldTypeName(def.Type))
		if def.Required {
			b.WriteString(", required")
		}
		if len(def.EnumValues) > 0 {
			fmt.Fprintf(&b, ", values: %s", strings.Join(def.EnumValues, "|"))
		}
		b.WriteString(")\n")
	}

	b.WriteString("\nSource columns:\n")
	for _, col := range columns {
		fmt.Fprintf(&b, "- %s\n", col)
	}

	if len(sampleRows) > 0 {
		rows := sampleRows
		if len(rows) > maxPromptSampleRows {
			rows = rows[:maxPromptSampleRows]
		}
		b.WriteString("\nSample rows:\n")
		for _, row := range rows {
			var cells []string
			for _, col := range columns {
				cells = append(cells, fmt.Sprintf("%s=%q", col, row[col]))
			}
			fmt.Fprintf(&b, "- %s\n", strings.Join(cells, ", "))
		}
	}

	b.WriteString("\nRespond with only a JSON array, one object per source column:\n")
	b.WriteString(`[{"column":"<source column>","field":"<target field key or SKIP>","confidence":<0..1>}]` + "\n")
	b.WriteString("Use SKIP for columns that match no target field.\n")

	return b.String()
}

// parseProposals extracts the first JSON array found in the response text.
// Models wrap JSON in markdown fences or prose more often than not.
func parseProposals(text string) ([]proposedMapping, error) {
	raw, err := firstJSONArray(text)
	if err != nil {
		return nil, err
	}

	var proposals []proposedMapping
	if err := json.Unmarshal([]byte(raw), &proposals); err != nil {
		return nil, fmt.Errorf("decode mapping response: %w", err)
	}
	if len(proposals) == 0 {
		return nil, fmt.Errorf("mapping response contained no proposals")
	}
	return proposals, nil
}

// firstJSONArray returns the first balanced [...] block in text.
func firstJSONArray(text string) (string, error) {
	start := strings.Index(text, "[")
	if start < 0 {
		return "", fmt.Errorf("no JSON array in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON array in response")
}

func validTargets(kind schema.EntityKind) map[string]bool {
	valid := map[string]bool{SkipField: true}
	for _, def := range schema.FieldsFor(kind) {
		valid[def.Key] = true
	}
	return valid
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
