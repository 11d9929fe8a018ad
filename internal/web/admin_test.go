package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gusta765/portfolio/internal/store"
)

func adminGet(ts *testServer, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "test-token"})
	return ts.do(req)
}

func TestAdminLogin(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.get("/admin/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/login"`)

	rec = postForm(ts, "/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Credenciais inválidas")
	assert.Empty(t, rec.Result().Cookies())

	rec = postForm(ts, "/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, adminCookie, cookies[0].Name)
	assert.Equal(t, "test-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = ts.get("/admin/logout")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestAdminLogin_EmptyCredentialsNeverMatch(t *testing.T) {
	ts := newTestServer(t, false)
	ts.admin.Username, ts.admin.Password = "", ""

	rec := postForm(ts, "/admin/login", url.Values{"username": {""}, "password": {""}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	ts := newTestServer(t, true)

	for _, path := range []string{"/admin/dashboard", "/admin/visitors", "/admin/messages", "/admin/content", "/admin/api/stats"} {
		rec := ts.get(path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"), path)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "forged"})
	assert.Equal(t, http.StatusFound, ts.do(req).Code)
}

func TestAdminPages(t *testing.T) {
	ts := newTestServer(t, true)
	ctx := context.Background()
	require.NoError(t, ts.db.RecordVisit(ctx, "10.0.0.1", "agent-x", "/projetos"))
	require.NoError(t, ts.db.RecordContact(ctx, store.ContactRecord{
		Name: "Ana", Email: "ana@example.com", Message: "Oi", Outcome: "sent",
	}))

	rec := adminGet(ts, "/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/projetos")

	rec = adminGet(ts, "/admin/visitors")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agent-x")
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")

	rec = adminGet(ts, "/admin/messages")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@example.com")

	rec = adminGet(ts, "/admin/content")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Painel_Logistica")
	assert.Contains(t, rec.Body.String(), "title, description, imagem")
	assert.Contains(t, rec.Body.String(), "images/logistica.png")
}

func TestAdminAPI(t *testing.T) {
	ts := newTestServer(t, true)
	ctx := context.Background()
	require.NoError(t, ts.db.RecordVisit(ctx, "10.0.0.1", "agent", "/"))
	require.NoError(t, ts.db.RecordVisit(ctx, "10.0.0.1", "agent", "/sobre"))

	rec := adminGet(ts, "/admin/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats store.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 2, stats.TotalVisitors)
	assert.EqualValues(t, 1, stats.UniqueVisitors)

	rec = adminGet(ts, "/admin/api/paths?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var paths []store.PathStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paths))
	assert.Len(t, paths, 1)

	assert.Equal(t, http.StatusBadRequest, adminGet(ts, "/admin/api/paths?limit=zero").Code)

	rec = adminGet(ts, "/admin/export/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), adminExportName)
}

func TestAdminCleanup(t *testing.T) {
	ts := newTestServer(t, true, func(o *Options) {
		o.Retention = time.Hour
	})
	ctx := context.Background()
	require.NoError(t, ts.db.RecordVisit(ctx, "10.0.0.1", "agent", "/"))

	req := httptest.NewRequest(http.MethodPost, "/admin/privacy/cleanup", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "test-token"})
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body["removed"])
}

func TestAdmin_WithoutStore(t *testing.T) {
	ts := newTestServer(t, false)

	rec := adminGet(ts, "/admin/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Banco de dados desativado")

	assert.Equal(t, http.StatusOK, adminGet(ts, "/admin/content").Code)
}
