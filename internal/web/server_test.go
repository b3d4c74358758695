package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitpipe/importer/internal/config"
	"github.com/recruitpipe/importer/internal/importer"
	"github.com/recruitpipe/importer/internal/mapping"
	"github.com/recruitpipe/importer/internal/schema"
	"github.com/recruitpipe/importer/internal/store"
)

type memStore struct {
	created []store.Record
}

func (m *memStore) CreateMany(_ context.Context, _ schema.EntityKind, records []store.Record) error {
	m.created = append(m.created, records...)
	return nil
}

func (m *memStore) CreateOne(_ context.Context, _ schema.EntityKind, record store.Record) error {
	m.created = append(m.created, record)
	return nil
}

func (m *memStore) ClientIDByName(_ context.Context, _ uuid.UUID, _ string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (m *memStore) CustomFields(_ context.Context, _ uuid.UUID, _ schema.EntityKind) ([]store.CustomField, error) {
	return nil, nil
}

func newTestServer(st store.EntityStore) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Import: config.ImportConfig{MaxFileSize: 1 << 20, BatchSize: 100, PendingTTL: time.Minute},
	}
	svc := importer.NewService(st, mapping.NewEngine(nil, 0), cfg.Import.BatchSize, cfg.Import.PendingTTL)
	return NewServer(svc, cfg)
}

func multipartUpload(t *testing.T, filename, entityKind, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("entityKind", entityKind))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func withTenant(r *http.Request) *http.Request {
	r.Header.Set("X-Tenant-ID", uuid.NewString())
	r.Header.Set("X-User-ID", uuid.NewString())
	return r
}

const csvBody = "First Name,Last Name,Email\nAda,Lovelace,ada@example.com\n"

func TestHealthz(t *testing.T) {
	srv := newTestServer(&memStore{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(&memStore{})

	body, contentType := multipartUpload(t, "candidates.csv", "candidate", csvBody)
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/analyze", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var analysis importer.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.NotEmpty(t, analysis.UploadID)
	assert.Equal(t, []string{"First Name", "Last Name", "Email"}, analysis.File.Columns)
	assert.Len(t, analysis.Mappings, 3)
}

func TestAnalyzeRequiresTenant(t *testing.T) {
	srv := newTestServer(&memStore{})

	body, contentType := multipartUpload(t, "candidates.csv", "candidate", csvBody)
	req := httptest.NewRequest(http.MethodPost, "/api/imports/analyze", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyzeRejectsUnknownKind(t *testing.T) {
	srv := newTestServer(&memStore{})

	body, contentType := multipartUpload(t, "stuff.csv", "invoice", csvBody)
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/analyze", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invoice")
}

func TestAnalyzeRejectsUnreadableXLSX(t *testing.T) {
	srv := newTestServer(&memStore{})

	body, contentType := multipartUpload(t, "broken.xlsx", "candidate", "this is not a workbook")
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/analyze", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteEndpoint(t *testing.T) {
	st := &memStore{}
	srv := newTestServer(st)

	body, contentType := multipartUpload(t, "candidates.csv", "candidate", csvBody)
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/analyze", body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis importer.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))

	execBody, err := json.Marshal(executeRequest{Mappings: analysis.Mappings})
	require.NoError(t, err)
	execReq := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/"+analysis.UploadID+"/execute", bytes.NewReader(execBody)))

	execRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(execRec, execReq)

	require.Equal(t, http.StatusOK, execRec.Code)
	var result importer.ImportResult
	require.NoError(t, json.Unmarshal(execRec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, st.created, 1)
}

func TestExecuteUnknownUpload(t *testing.T) {
	srv := newTestServer(&memStore{})

	execBody, err := json.Marshal(executeRequest{Mappings: []mapping.ColumnMapping{
		{SourceColumn: "Email", TargetField: "email"},
	}})
	require.NoError(t, err)
	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/"+uuid.NewString()+"/execute", bytes.NewReader(execBody)))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecuteRequiresMappings(t *testing.T) {
	srv := newTestServer(&memStore{})

	req := withTenant(httptest.NewRequest(http.MethodPost, "/api/imports/some-id/execute", bytes.NewReader([]byte(`{}`))))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
