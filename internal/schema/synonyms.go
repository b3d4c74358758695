package schema

import "strings"

// Synonym tables for enum fields. Source systems keep inventing vocabulary,
// so these are lookup tables rather than inline conditionals: extend the
// table when a new exporter shows up.

// jobBoards lists job-board names recognized in candidate "source" values.
var jobBoards = []string{
	"indeed",
	"monster",
	"glassdoor",
	"ziprecruiter",
	"dice",
	"careerbuilder",
	"seek",
	"reed",
	"totaljobs",
	"stepstone",
	"naukri",
	"jobstreet",
	"welcometothejungle",
}

// statusSynonyms maps common candidate status phrasings to catalog values.
// Keys are matched as substrings of the lower-cased raw value, in order:
// more specific phrases ("not looking") must precede their substrings
// ("looking").
var statusSynonyms = []struct {
	contains string
	value    string
}{
	{"not looking", "PASSIVE"},
	{"passive", "PASSIVE"},
	{"new lead", "ACTIVE"},
	{"available", "ACTIVE"},
	{"open to work", "ACTIVE"},
	{"looking", "ACTIVE"},
	{"active", "ACTIVE"},
	{"hired", "PLACED"},
	{"joined", "PLACED"},
	{"placed", "PLACED"},
	{"do not contact", "DND"},
	{"blacklist", "DND"},
	{"dnd", "DND"},
}

// NormalizeEnumValue coerces a raw cell value to one of a field's allowed
// enum values. Resolution order: upper-snake normalization matching an
// allowed value directly, then the field-specific synonym table, then a safe
// default (OTHER for source fields, the first allowed value otherwise).
func NormalizeEnumValue(def FieldDefinition, raw string) string {
	norm := UpperSnake(raw)
	for _, v := range def.EnumValues {
		if norm == v {
			return v
		}
	}

	lower := strings.ToLower(strings.TrimSpace(raw))
	switch def.Key {
	case "source":
		return normalizeSource(lower)
	case "status":
		if v, ok := lookupStatus(lower, def.EnumValues); ok {
			return v
		}
	}

	if len(def.EnumValues) > 0 {
		return def.EnumValues[0]
	}
	return norm
}

func normalizeSource(lower string) string {
	for _, board := range jobBoards {
		if strings.Contains(lower, board) {
			return "JOBBOARD"
		}
	}
	switch {
	case strings.Contains(lower, "linkedin"):
		return "LINKEDIN"
	case strings.Contains(lower, "referral"), strings.Contains(lower, "referred"):
		return "REFERRAL"
	case strings.Contains(lower, "direct"), strings.Contains(lower, "website"):
		return "DIRECT"
	case strings.Contains(lower, "agency"):
		return "AGENCY"
	}
	return "OTHER"
}

func lookupStatus(lower string, allowed []string) (string, bool) {
	for _, syn := range statusSynonyms {
		if !strings.Contains(lower, syn.contains) {
			continue
		}
		for _, v := range allowed {
			if v == syn.value {
				return v, true
			}
		}
	}
	return "", false
}

// UpperSnake converts a raw value to UPPER_SNAKE_CASE: runs of
// non-alphanumeric characters collapse to a single underscore.
func UpperSnake(s string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		alnum := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
