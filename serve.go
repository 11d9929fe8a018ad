package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gusta765/portfolio/internal/assets"
	"github.com/gusta765/portfolio/internal/config"
	"github.com/gusta765/portfolio/internal/contact"
	"github.com/gusta765/portfolio/internal/content"
	"github.com/gusta765/portfolio/internal/site"
	"github.com/gusta765/portfolio/internal/store"
	"github.com/gusta765/portfolio/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio site",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("port", "", "HTTP port (env PORT)")
	f.String("content", "", "project content file")
	f.String("content-url", "", "fetch project content from this URL instead of a file")
	f.String("site", "", "site copy YAML overriding the embedded one")
	_ = v.BindPFlag("port", f.Lookup("port"))
	_ = v.BindPFlag("content.path", f.Lookup("content"))
	_ = v.BindPFlag("content.url", f.Lookup("content-url"))
	_ = v.BindPFlag("site", f.Lookup("site"))
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, os.Stderr)
	gin.SetMode(ginMode(cfg.Mode))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := content.NewStore(loadContent(ctx, cfg.Content, logger))
	logger.Info().Int("projects", len(docs.Snapshot().Projects)).Msg("content loaded")

	table, err := assets.Scan(os.DirFS(cfg.Assets.Root), cfg.Assets.Dir, cfg.Assets.Prefix)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Assets.Dir).Msg("image scan failed, using fallback paths")
		table = nil
	}
	assets.Init(table)
	logger.Info().Int("images", table.Len()).Msg("asset table ready")

	copyText, err := loadSite(cfg.Site)
	if err != nil {
		return err
	}

	var db *store.Store
	if cfg.Database.Path != "" {
		salt, err := trackingSalt(cfg.Tracking, logger)
		if err != nil {
			return err
		}
		db, err = store.Open(ctx, cfg.Database.Path, salt)
		if err != nil {
			return err
		}
		defer db.Close()
		go runRetention(ctx, db, cfg.Tracking.Retention, retentionInterval, logger)
	}

	adminToken, err := setupAdmin(cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := web.New(web.Options{
		Content: docs,
		Site:    copyText,
		Assets:  table,
		Contact: contact.NewClient(cfg.Contact.Endpoint,
			contact.WithHTTPClient(&http.Client{Timeout: cfg.Contact.Timeout}),
			contact.WithLogger(logger),
		),
		Store:         db,
		Logger:        logger,
		Registry:      registry,
		Admin:         cfg.Admin,
		AdminToken:    adminToken,
		TrackVisitors: cfg.Tracking.Enabled,
		Retention:     cfg.Tracking.Retention,
		ImagesDir:     filepath.Join(cfg.Assets.Root, cfg.Assets.Dir),
		StaticDir:     cfg.Static,
		TemplatesDir:  cfg.Templates,
	})
	if err != nil {
		return err
	}

	if cfg.Content.Watch && cfg.Content.URL == "" {
		w, err := content.NewWatcher(cfg.Content.Path, docs, logger,
			content.WithReloadHook(srv.Metrics().ContentReloaded))
		if err != nil {
			logger.Warn().Err(err).Msg("content watcher disabled")
		} else {
			go w.Run(ctx)
		}
	}

	router, err := srv.Router()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	// Pending visit inserts finish before the deferred db.Close runs.
	defer srv.Wait()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// loadContent reads the project text from the configured URL or file. Any
// failure leaves the site running with no projects.
func loadContent(ctx context.Context, cfg config.ContentConfig, logger zerolog.Logger) string {
	var (
		text string
		err  error
	)
	if cfg.URL != "" {
		fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		text, err = content.Fetch(fetchCtx, nil, cfg.URL)
	} else {
		text, err = content.LoadFile(cfg.Path)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("content unavailable, serving empty project list")
		return ""
	}
	return text
}

func loadSite(path string) (*site.Site, error) {
	if path == "" {
		return site.Default()
	}
	return site.LoadFile(path)
}
