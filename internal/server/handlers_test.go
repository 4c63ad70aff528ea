package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-editor/internal/types"
)

func TestHandleMigrate(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/migrate", legacyDoc("Jane Doe"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[MigrateResponse](t, rec)
	assert.Equal(t, "legacy", resp.From)
	assert.Equal(t, []string{"lift-legacy", "normalize"}, resp.Steps)
	require.NotNil(t, resp.Document)
	assert.Equal(t, types.CurrentSchemaVersion, resp.Document.SchemaVersion)
	assert.Equal(t, "Jane Doe", resp.Document.Basics.Name)
	require.Len(t, resp.Document.Work, 1)
	assert.Equal(t, "<ul><li>Shipped</li></ul>", resp.Document.Work[0].Description)
}

func TestHandleMigrate_CurrentIsIdempotent(t *testing.T) {
	s := newTestServer(Deps{})

	first := decode[MigrateResponse](t, doRequest(t, s.Handler(), http.MethodPost, "/migrate", legacyDoc("Jane Doe")))
	second := decode[MigrateResponse](t, doRequest(t, s.Handler(), http.MethodPost, "/migrate", first.Document))

	assert.Equal(t, "current", second.From)
	assert.Equal(t, first.Document, second.Document)
}

func TestHandleMigrate_InvalidDocument(t *testing.T) {
	s := newTestServer(Deps{})

	tests := []struct {
		name string
		body string
	}{
		{"array root", `[1, 2]`},
		{"scalar root", `"resume"`},
		{"null", `null`},
		{"not json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s.Handler(), http.MethodPost, "/migrate", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, decode[ErrorResponse](t, rec).Error, "invalid document")
		})
	}
}

func TestHandleImport(t *testing.T) {
	store := newMockStore()
	s := newTestServer(Deps{Store: store})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/import", legacyDoc("Jane Doe"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[ImportResponse](t, rec)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "legacy", resp.From)
	assert.True(t, resp.Stored)
	assert.Equal(t, "Jane Doe", resp.Document.Basics.Name)
	assert.Equal(t, "Jane Doe", store.name(resp.ID))

	_, open := s.registry.Get(resp.ID)
	assert.True(t, open)
}

func TestHandleImport_WithoutStore(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/import", legacyDoc("Jane Doe"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, decode[ImportResponse](t, rec).Stored)
}

func TestHandleImport_RejectsMalformed(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/import", `{"schemaVersion": 1, "work": "Acme"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	require.NotEmpty(t, resp.Fields)
	assert.Equal(t, "work", resp.Fields[0].Field)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/import", `{"name":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/import", `["Jane"]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, s.registry.Len())
}

func TestHandlePaginate(t *testing.T) {
	s := newTestServer(Deps{})

	req := types.PaginateRequest{
		ContentHeight: 1200,
		Blocks: []types.Block{
			{Ordinal: 0, Top: 900, Bottom: 1200, Atomic: true},
		},
	}
	rec := doRequest(t, s.Handler(), http.MethodPost, "/paginate", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	layout := decode[types.Layout](t, rec)
	assert.Equal(t, 1043.0, layout.Capacity)
	assert.Equal(t, map[int]float64{0: 143}, layout.Corrections)
	assert.Equal(t, 2, layout.PageCount)
	assert.True(t, layout.Converged)
	require.Len(t, layout.Pages, 2)
	assert.Equal(t, -1043.0, layout.Pages[1].Offset)
}

func TestHandlePaginate_EmptyContentIsOnePage(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/paginate", map[string]any{"capacity": 500})
	require.Equal(t, http.StatusOK, rec.Code)

	layout := decode[types.Layout](t, rec)
	assert.Equal(t, 1, layout.PageCount)
	assert.Empty(t, layout.Corrections)
}

func TestHandlePaginate_Validation(t *testing.T) {
	s := newTestServer(Deps{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/paginate", map[string]any{"capacity": -5})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "paginaterequest.capacity", resp.Fields[0].Field)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/paginate", map[string]any{
		"blocks": []map[string]any{{"ordinal": 0, "top": 100, "bottom": 50}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/paginate", `{"blocks": 3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
