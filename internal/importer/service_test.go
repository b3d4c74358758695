package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitpipe/importer/internal/mapping"
	"github.com/recruitpipe/importer/internal/schema"
	"github.com/recruitpipe/importer/internal/tabular"
)

const candidateCSV = `First Name,Last Name,Email
Ada,Lovelace,ada@example.com
Grace,Hopper,grace@example.com
`

func newTestService(st *fakeStore) *Service {
	return NewService(st, mapping.NewEngine(nil, 0), 100, time.Minute)
}

func TestServiceAnalyze(t *testing.T) {
	svc := newTestService(&fakeStore{})

	analysis, err := svc.Analyze(context.Background(), []byte(candidateCSV), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.UploadID)
	assert.Equal(t, []string{"First Name", "Last Name", "Email"}, analysis.File.Columns)
	assert.Equal(t, 2, analysis.File.TotalRows)
	assert.Equal(t, 0, analysis.File.HeaderRow)
	require.Len(t, analysis.Mappings, 3)
	assert.Equal(t, "firstName", analysis.Mappings[0].TargetField)
	assert.Equal(t, "lastName", analysis.Mappings[1].TargetField)
	assert.Equal(t, "email", analysis.Mappings[2].TargetField)
}

func TestServiceAnalyzeUnreadable(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Analyze(context.Background(), []byte("not a zip"), tabular.FormatXLSX, schema.KindCandidate)
	require.ErrorIs(t, err, tabular.ErrUnreadableFile)
}

func TestServiceExecuteRoundTrip(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st)

	analysis, err := svc.Analyze(context.Background(), []byte(candidateCSV), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	result, err := svc.Execute(context.Background(), analysis.UploadID, analysis.Mappings, testTenant())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, st.created, 2)
}

func TestServiceExecuteUnknownUpload(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Execute(context.Background(), "nope", nil, testTenant())
	require.ErrorIs(t, err, ErrUploadNotFound)
}

func TestServiceExecuteConsumesUpload(t *testing.T) {
	svc := newTestService(&fakeStore{})

	analysis, err := svc.Analyze(context.Background(), []byte(candidateCSV), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), analysis.UploadID, analysis.Mappings, testTenant())
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), analysis.UploadID, analysis.Mappings, testTenant())
	require.ErrorIs(t, err, ErrUploadNotFound)
}

func TestServiceExecuteRejectsBadMappings(t *testing.T) {
	svc := newTestService(&fakeStore{})

	analysis, err := svc.Analyze(context.Background(), []byte(candidateCSV), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	bad := []mapping.ColumnMapping{
		{SourceColumn: "First Name", TargetField: "noSuchField"},
	}
	_, err = svc.Execute(context.Background(), analysis.UploadID, bad, testTenant())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noSuchField")
}

func TestServiceExecuteRejectsDuplicateColumns(t *testing.T) {
	svc := newTestService(&fakeStore{})

	analysis, err := svc.Analyze(context.Background(), []byte(candidateCSV), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	dup := []mapping.ColumnMapping{
		{SourceColumn: "Email", TargetField: "email"},
		{SourceColumn: "Email", TargetField: "phone"},
	}
	_, err = svc.Execute(context.Background(), analysis.UploadID, dup, testTenant())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate mapping")
}

func TestServicePendingExpiry(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st, mapping.NewEngine(nil, 0), 100, 10*time.Millisecond)

	analysis, err := svc.Analyze(context.Background(), []byte(candidateCSV), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := svc.Execute(context.Background(), analysis.UploadID, analysis.Mappings, testTenant())
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestServiceAnalyzeDuplicateHeaderColumns(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st)

	csv := "First Name,Last Name,Email,Notes,Notes\nAda,Lovelace,ada@example.com,keeps in touch,call in March\n"
	analysis, err := svc.Analyze(context.Background(), []byte(csv), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)

	assert.Equal(t, []string{"First Name", "Last Name", "Email", "Notes", "Notes (2)"}, analysis.File.Columns)

	seen := make(map[string]bool, len(analysis.Mappings))
	for _, m := range analysis.Mappings {
		assert.False(t, seen[m.SourceColumn], "source column %q proposed twice", m.SourceColumn)
		seen[m.SourceColumn] = true
	}

	// The service's own proposals must pass its own mapping validation.
	result, err := svc.Execute(context.Background(), analysis.UploadID, analysis.Mappings, testTenant())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, st.created, 1)
}

func TestServiceCountsAgreeWithBlankRows(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st)

	csv := "First Name,Last Name,Email\nAda,Lovelace,ada@example.com\n,,\nGrace,Hopper,grace@example.com\n"
	analysis, err := svc.Analyze(context.Background(), []byte(csv), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.File.TotalRows)

	result, err := svc.Execute(context.Background(), analysis.UploadID, analysis.Mappings, testTenant())
	require.NoError(t, err)
	assert.Equal(t, analysis.File.TotalRows, result.Created+result.Skipped)
	assert.Equal(t, 2, result.Created)
}

func TestServiceSampleRowsCapped(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("First Name,Last Name,Email\n")
	for i := 0; i < 30; i++ {
		sb.WriteString("Ada,Lovelace,ada@example.com\n")
	}
	svc := newTestService(&fakeStore{})

	analysis, err := svc.Analyze(context.Background(), []byte(sb.String()), tabular.FormatCSV, schema.KindCandidate)
	require.NoError(t, err)
	assert.Equal(t, 30, analysis.File.TotalRows)
	assert.Len(t, analysis.File.SampleRows, tabular.MaxSampleRows)
}
