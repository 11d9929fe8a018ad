package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gusta765/portfolio/internal/content"
)

type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes the JSON error envelope and aborts the chain.
func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorPayload{
		RequestID: c.GetString(RequestIDKey),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

func (s *Server) apiProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.projectViews(c.Query("categoria")))
}

func (s *Server) apiProject(c *gin.Context) {
	p, ok := content.FindProject(s.content.Snapshot().Projects, c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	c.JSON(http.StatusOK, s.view(p, true))
}

func (s *Server) apiProfile(c *gin.Context) {
	profile := s.content.Snapshot().Profile
	if profile == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "profile not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"photoPath": profile.PhotoPath,
		"photo":     s.resolve(profile.PhotoPath),
	})
}
