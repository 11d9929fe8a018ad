package web

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	adminCookie     = "admin_token"
	adminCookieAge  = 3600 * 24
	adminListLimit  = 200
	adminTopPaths   = 10
	adminExportName = "admin-stats.json"
)

func (s *Server) clientHash(c *gin.Context) string {
	if s.store == nil {
		return ""
	}
	return s.store.HashIP(c.ClientIP())
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireStore answers 503 for admin pages that need the database.
func (s *Server) requireStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{
				"error": "Banco de dados desativado",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) credentialsMatch(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password))
	return s.admin.Username != "" && u&p == 1
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if !s.credentialsMatch(c.PostForm("username"), c.PostForm("password")) {
			s.logger.Warn().Str("client", s.clientHash(c)).Msg("failed admin login")
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin",
				"error": "Credenciais inválidas",
			})
			return
		}
		c.SetCookie(adminCookie, s.adminToken, adminCookieAge, "/admin", "", false, true)
		s.logger.Info().Str("client", s.clientHash(c)).Msg("admin login")
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin", s.adminAuth())

	admin.GET("/content", func(c *gin.Context) {
		snap := s.content.Snapshot()
		type section struct {
			Name string
			Keys []string
		}
		var sections []section
		for _, name := range snap.Document.Names() {
			sec, _ := snap.Document.Section(name)
			sections = append(sections, section{Name: name, Keys: sec.Keys()})
		}
		c.HTML(http.StatusOK, "admin-content.html", gin.H{
			"sections": sections,
			"projects": len(snap.Projects),
			"assets":   s.assets.Keys(),
		})
	})

	db := admin.Group("", s.requireStore())

	db.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load admin stats")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Falha ao carregar estatísticas",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	db.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load admin stats")
			writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	db.GET("/api/paths", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(adminTopPaths)))
		if err != nil || limit <= 0 {
			writeError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		paths, err := s.store.TopPaths(c.Request.Context(), limit)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load top paths")
			writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			return
		}
		c.JSON(http.StatusOK, paths)
	})

	db.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.store.RecentVisitors(c.Request.Context(), adminListLimit)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load visitors")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Falha ao carregar visitantes",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	db.GET("/messages", func(c *gin.Context) {
		messages, err := s.store.ContactMessages(c.Request.Context(), adminListLimit)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load contact messages")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Falha ao carregar mensagens",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{
			"messages": messages,
		})
	})

	db.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := s.store.CleanupVisits(c.Request.Context(), s.retention)
		if err != nil {
			s.logger.Error().Err(err).Msg("visitor cleanup failed")
			writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			return
		}
		s.logger.Info().Int64("removed", removed).Msg("visitor cleanup")
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})

	db.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to export admin stats")
			writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+adminExportName)
		s.logger.Info().Str("client", s.clientHash(c)).Msg("admin stats exported")
		c.JSON(http.StatusOK, stats)
	})
}
