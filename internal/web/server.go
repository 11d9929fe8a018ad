// Package web serves the portfolio pages, its JSON API and the admin area.
package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gusta765/portfolio/internal/assets"
	"github.com/gusta765/portfolio/internal/config"
	"github.com/gusta765/portfolio/internal/contact"
	"github.com/gusta765/portfolio/internal/content"
	"github.com/gusta765/portfolio/internal/site"
	"github.com/gusta765/portfolio/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultRetention is how long visitor records are kept.
const DefaultRetention = 365 * 24 * time.Hour

// Options wires the server's collaborators. Store may be nil, which turns
// off visitor tracking, the contact log and the admin statistics.
type Options struct {
	Content  *content.Store
	Site     *site.Site
	Assets   *assets.Table
	Resolve  func(string) string
	Contact  contact.Sender
	Store    *store.Store
	Logger   zerolog.Logger
	Registry *prometheus.Registry

	Admin         config.AdminConfig
	AdminToken    string
	TrackVisitors bool
	Retention     time.Duration

	ImagesDir    string
	StaticDir    string
	TemplatesDir string
}

// Server holds the handlers' shared state.
type Server struct {
	content  *content.Store
	site     *site.Site
	assets   *assets.Table
	resolve  func(string) string
	contact  contact.Sender
	store    *store.Store
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	visits   sync.WaitGroup

	admin      config.AdminConfig
	adminToken string
	tracking   bool
	retention  time.Duration

	imagesDir    string
	staticDir    string
	templatesDir string
}

// New validates opts and builds a Server.
func New(opts Options) (*Server, error) {
	if opts.Content == nil {
		opts.Content = content.NewStore("")
	}
	if opts.Site == nil {
		s, err := site.Default()
		if err != nil {
			return nil, err
		}
		opts.Site = s
	}
	if opts.Resolve == nil {
		opts.Resolve = assets.Resolve
	}
	if opts.Contact == nil {
		opts.Contact = contact.NewClient("", contact.WithLogger(opts.Logger))
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.AdminToken == "" {
		token, err := GenerateToken()
		if err != nil {
			return nil, err
		}
		opts.AdminToken = token
	}

	metrics, err := NewMetrics(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &Server{
		content:      opts.Content,
		site:         opts.Site,
		assets:       opts.Assets,
		resolve:      opts.Resolve,
		contact:      opts.Contact,
		store:        opts.Store,
		logger:       opts.Logger.With().Str("component", "web").Logger(),
		registry:     opts.Registry,
		metrics:      metrics,
		admin:        opts.Admin,
		adminToken:   opts.AdminToken,
		tracking:     opts.TrackVisitors && opts.Store != nil,
		retention:    opts.Retention,
		imagesDir:    opts.ImagesDir,
		staticDir:    opts.StaticDir,
		templatesDir: opts.TemplatesDir,
	}, nil
}

// Metrics exposes the server's collectors so background jobs can report
// into them.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Wait blocks until every pending visit insert has finished. Call it after
// the HTTP server has shut down and before the store is closed.
func (s *Server) Wait() {
	s.visits.Wait()
}

// GenerateToken returns 32 random bytes, hex encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"join":    strings.Join,
		"resolve": s.resolve,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Logger(s.logger), s.metrics.Handler())
	if s.tracking {
		r.Use(s.visitorTracking())
	}

	if s.templatesDir != "" {
		r.SetFuncMap(s.funcMap())
		r.LoadHTMLGlob(filepath.Join(s.templatesDir, "*.html"))
	} else {
		tmpl, err := template.New("").Funcs(s.funcMap()).ParseFS(templateFS, "templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		r.SetHTMLTemplate(tmpl)
	}

	if s.imagesDir != "" {
		r.Static("/images", s.imagesDir)
	}
	if s.staticDir != "" {
		r.Static("/static", s.staticDir)
	}
	r.GET("/assets/*filepath", s.serveAsset)

	r.GET("/", s.home)
	r.GET("/sobre", s.about)
	r.GET("/projetos", s.projects)
	r.GET("/projetos/:id", s.projectDetail)
	r.GET("/contato", s.contactPage)
	r.POST("/contato", s.contactSubmit)
	r.GET("/privacidade", s.privacy)

	api := r.Group("/api")
	api.GET("/projects", s.apiProjects)
	api.GET("/projects/:id", s.apiProject)
	api.GET("/profile", s.apiProfile)
	api.POST("/contact", s.apiContact)

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.setupAdminRoutes(r)

	r.NoRoute(s.notFound)
	return r, nil
}

func (s *Server) serveAsset(c *gin.Context) {
	fsys, name, ok := s.assets.Open(c.Param("filepath"))
	if !ok {
		s.notFound(c)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.FileFromFS(name, http.FS(fsys))
}

func (s *Server) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}
	s.render(c, http.StatusNotFound, "not-found.html", gin.H{
		"title": "Página não encontrada",
	})
}

// render adds the data every page layout needs.
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["page"]; !ok {
		data["page"] = ""
	}
	data["owner"] = s.site.Owner
	data["social"] = s.site.Social
	c.HTML(status, name, data)
}
