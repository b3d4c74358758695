package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityKind(t *testing.T) {
	tests := []struct {
		input string
		want  EntityKind
		ok    bool
	}{
		{"candidate", KindCandidate, true},
		{"Job", KindJob, true},
		{"  client ", KindClient, true},
		{"invoice", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseEntityKind(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogs(t *testing.T) {
	for _, kind := range []EntityKind{KindCandidate, KindJob, KindClient} {
		t.Run(string(kind), func(t *testing.T) {
			fields := FieldsFor(kind)
			require.NotEmpty(t, fields)

			seen := make(map[string]bool)
			hasVirtual := false
			hasRequired := false
			for _, def := range fields {
				assert.False(t, seen[def.Key], "duplicate key %s", def.Key)
				seen[def.Key] = true
				assert.NotEmpty(t, def.Label)
				if def.Virtual {
					hasVirtual = true
				}
				if def.Required {
					hasRequired = true
				}
				if def.Type == FieldEnum {
					assert.NotEmpty(t, def.EnumValues, "enum field %s has no values", def.Key)
				}
			}
			assert.True(t, hasVirtual, "catalog has no virtual field")
			assert.True(t, hasRequired, "catalog has no required field")
		})
	}

	assert.Nil(t, FieldsFor("unknown"))
}

func TestRequiredFieldsExcludesVirtual(t *testing.T) {
	for _, def := range RequiredFields(KindJob) {
		assert.False(t, def.Virtual, "virtual field %s in required set", def.Key)
	}
	// clientName is required on jobs but satisfied via resolution.
	_, ok := FieldByKey(KindJob, "clientName")
	require.True(t, ok)
}

func TestNormalizeEnumValueSource(t *testing.T) {
	src, ok := FieldByKey(KindCandidate, "source")
	require.True(t, ok)

	tests := []struct {
		raw  string
		want string
	}{
		{"Indeed", "JOBBOARD"},
		{"indeed.com", "JOBBOARD"},
		{"ZipRecruiter posting", "JOBBOARD"},
		{"LinkedIn", "LINKEDIN"},
		{"Employee Referral", "REFERRAL"},
		{"Direct", "DIRECT"},
		{"our website", "DIRECT"},
		{"Acme Agency", "AGENCY"},
		{"carrier pigeon", "OTHER"},
		{"JOBBOARD", "JOBBOARD"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEnumValue(src, tt.raw))
		})
	}
}

func TestNormalizeEnumValueStatus(t *testing.T) {
	status, ok := FieldByKey(KindCandidate, "status")
	require.True(t, ok)

	tests := []struct {
		raw  string
		want string
	}{
		{"Not Looking", "PASSIVE"},
		{"New Lead", "ACTIVE"},
		{"available", "ACTIVE"},
		{"Hired", "PLACED"},
		{"joined on 1/5", "PLACED"},
		{"Do Not Contact", "DND"},
		{"blacklisted", "DND"},
		{"Active", "ACTIVE"},
		// Nothing matches: fall back to the first allowed value.
		{"mystery", "ACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEnumValue(status, tt.raw))
		})
	}
}

func TestNormalizeEnumValueEmploymentType(t *testing.T) {
	et, ok := FieldByKey(KindJob, "employmentType")
	require.True(t, ok)

	// Upper-snake normalization matches the allowed value directly.
	assert.Equal(t, "FULL_TIME", NormalizeEnumValue(et, "full time"))
	assert.Equal(t, "PART_TIME", NormalizeEnumValue(et, "Part-Time"))
	// No synonym table for this field: safe default is the first value.
	assert.Equal(t, "FULL_TIME", NormalizeEnumValue(et, "gig"))
}

func TestUpperSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"full time", "FULL_TIME"},
		{"Part-Time", "PART_TIME"},
		{"  on   hold  ", "ON_HOLD"},
		{"already_SNAKE", "ALREADY_SNAKE"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UpperSnake(tt.in))
	}
}
