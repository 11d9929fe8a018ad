package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gusta765/portfolio/internal/assets"
	"github.com/gusta765/portfolio/internal/config"
	"github.com/gusta765/portfolio/internal/contact"
	"github.com/gusta765/portfolio/internal/content"
	"github.com/gusta765/portfolio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testContent = `EU:
  minha_foto: "images/foto.png"
Painel_Logistica:
  title: "Painel de Logística"
  description: >
    Aproveitamento de viagens
    por rota
  imagem: images/logistica.png
Pipeline_ETL_Produtos:
  title: "Pipeline ETL"
  description: "Padronização de cadastros"
  imagem: "https://cdn.example.com/etl.png"
`

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []contact.Message
}

func (f *fakeSender) Send(_ context.Context, msg contact.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) messages() []contact.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contact.Message(nil), f.sent...)
}

type testServer struct {
	*Server
	router *gin.Engine
	sender *fakeSender
	db     *store.Store
}

func newTestServer(t *testing.T, withStore bool, mutate ...func(*Options)) *testServer {
	t.Helper()

	table, err := assets.Scan(fstest.MapFS{
		"images/logistica.png": {Data: []byte("png-logistica")},
		"images/foto.png":      {Data: []byte("png-foto")},
	}, "images", "/assets")
	require.NoError(t, err)

	sender := &fakeSender{}
	opts := Options{
		Content:    content.NewStore(testContent),
		Assets:     table,
		Resolve:    table.Resolve,
		Contact:    sender,
		Logger:     zerolog.Nop(),
		Admin:      config.AdminConfig{Username: "admin", Password: "s3cret"},
		AdminToken: "test-token",
	}

	var db *store.Store
	if withStore {
		db, err = store.Open(context.Background(), ":memory:", "salt")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		opts.Store = db
		opts.TrackVisitors = true
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	srv, err := New(opts)
	require.NoError(t, err)
	router, err := srv.Router()
	require.NoError(t, err)
	t.Cleanup(srv.Wait)

	return &testServer{Server: srv, router: router, sender: sender, db: db}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func TestPages(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name     string
		path     string
		status   int
		contains []string
		excludes []string
	}{
		{
			name:     "home",
			path:     "/",
			status:   http.StatusOK,
			contains: []string{"Gustavo Barbosa", "Painel de Logística", "/assets/logistica-"},
		},
		{
			name:     "about",
			path:     "/sobre",
			status:   http.StatusOK,
			contains: []string{"Atacado Vila Nova", "/assets/foto-"},
		},
		{
			name:     "all projects",
			path:     "/projetos",
			status:   http.StatusOK,
			contains: []string{"Painel de Logística", "Pipeline ETL"},
		},
		{
			name:     "filtered projects",
			path:     "/projetos?categoria=ETL",
			status:   http.StatusOK,
			contains: []string{"Pipeline ETL"},
			excludes: []string{"Painel de Logística"},
		},
		{
			name:     "project detail",
			path:     "/projetos/painel-logistica",
			status:   http.StatusOK,
			contains: []string{"Aproveitamento de viagens por rota", "Power BI", "aproveitamento de retorno"},
		},
		{
			name:     "unknown project",
			path:     "/projetos/nao-existe",
			status:   http.StatusNotFound,
			contains: []string{"Página não encontrada"},
		},
		{
			name:   "catalog project missing from content",
			path:   "/projetos/painel-estoque-por-lote",
			status: http.StatusNotFound,
		},
		{
			name:     "contact",
			path:     "/contato",
			status:   http.StatusOK,
			contains: []string{"gustavobarbosa7744@gmail.com", "https://wa.me/5535988171660", `hx-post="/contato"`},
		},
		{
			name:     "privacy",
			path:     "/privacidade",
			status:   http.StatusOK,
			contains: []string{"Do Not Track"},
		},
		{
			name:   "unknown page",
			path:   "/nada",
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.get(tt.path)
			assert.Equal(t, tt.status, rec.Code)
			for _, s := range tt.contains {
				assert.Contains(t, rec.Body.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestPages_EmptyContent(t *testing.T) {
	ts := newTestServer(t, false, func(o *Options) {
		o.Content = content.NewStore("")
	})

	rec := ts.get("/projetos")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nenhum projeto nesta categoria.")

	rec = ts.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="photo"`)
}

func TestPages_ReflectContentUpdates(t *testing.T) {
	ts := newTestServer(t, false)
	assert.Contains(t, ts.get("/projetos").Body.String(), "Pipeline ETL")

	ts.content.Set("Painel_Logistica:\n  title: \"Novo título\"\n")
	body := ts.get("/projetos").Body.String()
	assert.Contains(t, body, "Novo título")
	assert.NotContains(t, body, "Pipeline ETL")
}

func TestAPIProjects(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.get("/api/projects")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []ProjectView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)

	assert.Equal(t, "painel-logistica", views[0].ID)
	assert.Equal(t, "images/logistica.png", views[0].ImagePath)
	assert.True(t, strings.HasPrefix(views[0].Image, "/assets/logistica-"))
	assert.Equal(t, "Dashboard", views[0].Category)
	assert.Nil(t, views[0].Details)

	assert.Equal(t, "etl-pipeline-produtos", views[1].ID)
	assert.Equal(t, "https://cdn.example.com/etl.png", views[1].Image)
	assert.Equal(t, []string{"Python", "ETL", "Levenshtein", "Qualidade Cadastral"}, views[1].Tags)

	rec = ts.get("/api/projects?categoria=Dashboard")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "painel-logistica", views[0].ID)
}

func TestAPIProject(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.get("/api/projects/etl-pipeline-produtos")
	require.Equal(t, http.StatusOK, rec.Code)

	var view ProjectView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Pipeline ETL", view.Title)
	require.NotNil(t, view.Details)
	assert.Equal(t, "ETL", view.Details.Category)
	assert.NotEmpty(t, view.Details.Techniques)
}

func TestAPIErrors(t *testing.T) {
	ts := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/nope", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := ts.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	var payload errorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "req-123", payload.RequestID)
	assert.Equal(t, "NOT_FOUND", payload.Error.Code)

	rec = ts.get("/api/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "NOT_FOUND", payload.Error.Code)
	assert.NotEmpty(t, payload.RequestID)
}

func TestAPIProfile(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.get("/api/profile")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "images/foto.png", body["photoPath"])
	assert.True(t, strings.HasPrefix(body["photo"], "/assets/foto-"))

	ts = newTestServer(t, false, func(o *Options) {
		o.Content = content.NewStore("Painel_Logistica:\n  title: x\n")
	})
	assert.Equal(t, http.StatusNotFound, ts.get("/api/profile").Code)
}

func TestRequestID_Generated(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestServeAsset(t *testing.T) {
	ts := newTestServer(t, false)

	served := ts.assets.Resolve("logistica.png")
	require.True(t, strings.HasPrefix(served, "/assets/"))

	rec := ts.get(served)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-logistica", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	assert.Equal(t, http.StatusNotFound, ts.get("/assets/logistica.png").Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.EqualValues(t, 2, body["projects"])
	assert.EqualValues(t, 2, body["assets"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	ts.get("/projetos")
	ts.Metrics().ContentReloaded(true)

	rec := ts.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/projetos",status="200"} 1`)
	assert.Contains(t, body, "http_request_duration_seconds")
	assert.Contains(t, body, `portfolio_content_reloads_total{changed="true"} 1`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestVisitorTracking(t *testing.T) {
	ts := newTestServer(t, true)
	ctx := context.Background()

	ts.get("/projetos")
	ts.get("/api/projects")
	ts.get("/admin/login")

	req := httptest.NewRequest(http.MethodGet, "/sobre", nil)
	req.Header.Set("DNT", "1")
	ts.do(req)

	assert.Eventually(t, func() bool {
		stats, err := ts.db.Stats(ctx)
		return err == nil && stats.TotalVisitors == 1
	}, time.Second, 10*time.Millisecond)

	paths, err := ts.db.TopPaths(ctx, 10)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "/projetos", paths[0].Path)
}

func TestVisitorTracking_WaitDrainsInserts(t *testing.T) {
	ts := newTestServer(t, true)

	for i := 0; i < 20; i++ {
		ts.get("/")
	}
	ts.Wait()

	stats, err := ts.db.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 20, stats.TotalVisitors)
}

func TestTrackingDisabledWithoutStore(t *testing.T) {
	ts := newTestServer(t, false, func(o *Options) {
		o.TrackVisitors = true
	})
	assert.False(t, ts.tracking)
	assert.Equal(t, http.StatusOK, ts.get("/").Code)
}

func TestNew_Defaults(t *testing.T) {
	srv, err := New(Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.NotEmpty(t, srv.adminToken)
	assert.Equal(t, DefaultRetention, srv.retention)
	assert.Empty(t, srv.content.Snapshot().Projects)
	assert.Equal(t, "/images/x.png", srv.resolve("x.png"))
	assert.NotNil(t, srv.site)
}

func postForm(ts *testServer, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
