package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gusta765/portfolio/internal/content"
	"github.com/gusta765/portfolio/internal/site"
)

// featuredCount is how many projects the home page shows.
const featuredCount = 3

// ProjectView is a project as the pages and the API present it.
type ProjectView struct {
	content.Project
	Image    string        `json:"image"`
	Category string        `json:"category"`
	Details  *site.Details `json:"details,omitempty"`
}

func (s *Server) view(p content.Project, withDetails bool) ProjectView {
	v := ProjectView{
		Project:  p,
		Image:    s.resolve(p.ImagePath),
		Category: s.site.Category(p.ID),
	}
	if withDetails {
		d := s.site.Details(p.ID)
		v.Details = &d
	}
	return v
}

// projectViews returns the current projects filtered by category. An empty
// category or AllCategories keeps every project.
func (s *Server) projectViews(category string) []ProjectView {
	projects := s.content.Snapshot().Projects
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		v := s.view(p, false)
		if category != "" && category != site.AllCategories && v.Category != category {
			continue
		}
		views = append(views, v)
	}
	return views
}

func (s *Server) photo() string {
	if profile := s.content.Snapshot().Profile; profile != nil {
		return s.resolve(profile.PhotoPath)
	}
	return ""
}

func (s *Server) home(c *gin.Context) {
	featured := s.projectViews("")
	if len(featured) > featuredCount {
		featured = featured[:featuredCount]
	}
	s.render(c, http.StatusOK, "index.html", gin.H{
		"title":    s.site.Owner.Name,
		"page":     "home",
		"metrics":  s.site.Metrics,
		"skills":   s.site.Skills,
		"featured": featured,
		"photo":    s.photo(),
	})
}

func (s *Server) about(c *gin.Context) {
	s.render(c, http.StatusOK, "about.html", gin.H{
		"title":        "Sobre",
		"page":         "about",
		"photo":        s.photo(),
		"timeline":     s.site.Timeline,
		"education":    s.site.Education,
		"competencies": s.site.Competencies,
	})
}

func (s *Server) projects(c *gin.Context) {
	category := c.DefaultQuery("categoria", site.AllCategories)
	s.render(c, http.StatusOK, "projects.html", gin.H{
		"title":      "Projetos",
		"page":       "projects",
		"categories": s.site.Categories,
		"active":     category,
		"projects":   s.projectViews(category),
	})
}

func (s *Server) projectDetail(c *gin.Context) {
	p, ok := content.FindProject(s.content.Snapshot().Projects, c.Param("id"))
	if !ok {
		s.notFound(c)
		return
	}
	v := s.view(p, true)
	s.render(c, http.StatusOK, "project.html", gin.H{
		"title":   p.Title,
		"page":    "projects",
		"project": v,
	})
}

func (s *Server) contactPage(c *gin.Context) {
	s.render(c, http.StatusOK, "contact.html", gin.H{
		"title":       "Contato",
		"page":        "contact",
		"contact":     s.site.Contact,
		"whatsappURL": s.site.Contact.WhatsAppURL(),
		"whatsappQR":  s.resolve(s.site.Contact.WhatsAppQR),
	})
}

func (s *Server) privacy(c *gin.Context) {
	s.render(c, http.StatusOK, "privacy.html", gin.H{
		"title": "Privacidade",
		"page":  "privacy",
	})
}

func (s *Server) health(c *gin.Context) {
	status := gin.H{
		"status":   "ok",
		"projects": len(s.content.Snapshot().Projects),
		"assets":   s.assets.Len(),
	}
	if s.store != nil {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			s.logger.Error().Err(err).Msg("database ping failed")
			status["status"] = "degraded"
			status["database"] = "unavailable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}
