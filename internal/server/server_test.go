package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/history"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
	"github.com/jonathan/resume-editor/internal/types"
)

// mockStore implements DocumentStore in memory
type mockStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]json.RawMessage
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[uuid.UUID]json.RawMessage)}
}

func (m *mockStore) put(id uuid.UUID, v any) {
	data, _ := json.Marshal(v)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = data
}

func (m *mockStore) GetDocument(_ context.Context, id uuid.UUID) (*db.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &db.DocumentRecord{ID: id, Content: content}, nil
}

func (m *mockStore) SaveDocument(_ context.Context, id uuid.UUID, doc *types.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.put(id, doc)
	return nil
}

func (m *mockStore) ListDocuments(_ context.Context, limit int) ([]db.DocumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.DocumentSummary{}
	for id := range m.docs {
		if len(out) == limit {
			break
		}
		out = append(out, db.DocumentSummary{ID: id})
	}
	return out, nil
}

func (m *mockStore) DeleteDocument(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[id]
	delete(m.docs, id)
	return ok, nil
}

func (m *mockStore) name(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var doc types.Document
	_ = json.Unmarshal(m.docs[id], &doc)
	return doc.Basics.Name
}

// mockDrafts implements DraftStore in memory
type mockDrafts struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*types.Document
}

func newMockDrafts() *mockDrafts {
	return &mockDrafts{docs: make(map[uuid.UUID]*types.Document)}
}

func (m *mockDrafts) SaveDocument(_ context.Context, id uuid.UUID, doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = doc.Clone()
	return nil
}

func (m *mockDrafts) Load(_ context.Context, id uuid.UUID) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return json.Marshal(doc)
}

func (m *mockDrafts) Discard(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *mockDrafts) get(id uuid.UUID) *types.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id]
}

func legacyDoc(name string) map[string]any {
	return map[string]any{
		"name":  name,
		"title": "Engineer",
		"experience": []any{
			map[string]any{"company": "Acme", "position": "Dev", "highlights": []any{"Shipped"}},
		},
	}
}

// newTestServer builds a server whose sessions never commit on their own.
func newTestServer(deps Deps) *Server {
	if deps.Registry == nil {
		deps.Registry = editor.NewRegistry(
			editor.WithHistory(history.WithScheduler(history.NewManualScheduler())),
		)
	}
	return New(config.Defaults(), deps)
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodOptions, "/migrate", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestNew_DefaultPort(t *testing.T) {
	s := New(config.Config{}, Deps{})
	assert.Equal(t, ":8080", s.Addr())

	s = New(config.Config{Port: 9090}, Deps{})
	assert.Equal(t, ":9090", s.Addr())
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled: true,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/migrate", Method: "POST", Limit: 1, Window: time.Minute, Burst: 1},
		},
	})
	defer limiter.Stop()
	s := newTestServer(Deps{Limiter: limiter})

	first := doRequest(t, s.Handler(), http.MethodPost, "/migrate", legacyDoc("Jane"))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := doRequest(t, s.Handler(), http.MethodPost, "/migrate", legacyDoc("Jane"))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decode[ErrorResponse](t, second).Error)

	// Health checks are never limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(t, s.Handler(), http.MethodGet, "/health", nil).Code)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(config.Config{Port: 0}, Deps{})
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestErrorFrom_HidesInternalErrors(t *testing.T) {
	s := newTestServer(Deps{})
	rec := httptest.NewRecorder()

	s.errorFrom(rec, errors.New("connection refused by 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[ErrorResponse](t, rec).Error)
}
