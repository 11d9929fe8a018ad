package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gusta765/portfolio/internal/config"
	"github.com/gusta765/portfolio/internal/store"
	"github.com/gusta765/portfolio/internal/web"
)

const retentionInterval = 24 * time.Hour

// setupAdmin fills in the admin credentials and mints the session token.
func setupAdmin(cfg *config.Config, logger zerolog.Logger) (string, error) {
	if cfg.ApplyAdminDefaults() {
		logger.Warn().Msg("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	token, err := web.GenerateToken()
	if err != nil {
		return "", err
	}

	logger.Info().Msg("admin access available at /admin/login")
	if gin.Mode() == gin.DebugMode {
		logger.Info().Str("token", token).Msg("admin token (dev only)")
	}
	return token, nil
}

// trackingSalt returns the configured IP hashing salt or a random one. A
// random salt means visitor hashes do not survive a restart.
func trackingSalt(cfg config.TrackingConfig, logger zerolog.Logger) (string, error) {
	if cfg.Salt != "" {
		return cfg.Salt, nil
	}
	salt, err := web.GenerateToken()
	if err != nil {
		return "", err
	}
	logger.Warn().Msg("tracking.salt not set, unique visitor counts reset on restart")
	return salt, nil
}

// runRetention deletes visitor records older than maxAge now and then once
// per interval until ctx is done.
func runRetention(ctx context.Context, db *store.Store, maxAge, interval time.Duration, logger zerolog.Logger) {
	logger = logger.With().Str("component", "retention").Logger()
	cleanup := func() {
		removed, err := db.CleanupVisits(ctx, maxAge)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error().Err(err).Msg("visitor cleanup failed")
			}
			return
		}
		if removed > 0 {
			logger.Info().Int64("removed", removed).Dur("max_age", maxAge).Msg("removed old visitor records")
		}
	}

	cleanup()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}
