// Package site holds the portfolio's static copy: owner profile, timeline,
// skills, contact channels and the long-form details of each project.
package site

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultSite []byte

// AllCategories is the listing filter that shows every project.
const AllCategories = "Todos"

// DefaultCategory applies to projects without an explicit category.
const DefaultCategory = "Análise"

type Owner struct {
	Name     string   `yaml:"name"`
	Headline string   `yaml:"headline"`
	Tagline  string   `yaml:"tagline"`
	About    []string `yaml:"about"`
}

type Contact struct {
	Email           string `yaml:"email"`
	WhatsAppNumber  string `yaml:"whatsapp_number"`
	WhatsAppDisplay string `yaml:"whatsapp_display"`
	WhatsAppQR      string `yaml:"whatsapp_qr"`
}

// WhatsAppURL is the click-to-chat link for the configured number.
func (c Contact) WhatsAppURL() string {
	return "https://wa.me/" + c.WhatsAppNumber
}

type Link struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type Metric struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type Skill struct {
	Name        string `yaml:"name"`
	Level       string `yaml:"level,omitempty"`
	Description string `yaml:"description"`
}

type TimelineItem struct {
	Period      string `yaml:"period"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Description string `yaml:"description"`
}

// Details is the long-form write-up shown on a project's page.
type Details struct {
	Category   string   `yaml:"category" json:"category"`
	Context    string   `yaml:"context" json:"context"`
	Approach   string   `yaml:"approach" json:"approach"`
	Techniques []string `yaml:"techniques" json:"techniques"`
	Insights   []string `yaml:"insights" json:"insights"`
	Results    []string `yaml:"results" json:"results"`
}

// Site is the whole static catalog.
type Site struct {
	Owner        Owner              `yaml:"owner"`
	Contact      Contact            `yaml:"contact"`
	Social       []Link             `yaml:"social"`
	Metrics      []Metric           `yaml:"metrics"`
	Skills       []Skill            `yaml:"skills"`
	Timeline     []TimelineItem     `yaml:"timeline"`
	Education    []string           `yaml:"education"`
	Competencies []Skill            `yaml:"competencies"`
	Categories   []string           `yaml:"categories"`
	Projects     map[string]Details `yaml:"projects"`
}

// fallbackDetails mirrors what the page shows for a project with no write-up.
var fallbackDetails = Details{
	Category:   DefaultCategory,
	Context:    "Contexto não disponível",
	Approach:   "Abordagem não disponível",
	Techniques: []string{"Técnicas não disponíveis"},
	Insights:   []string{"Insights não disponíveis"},
	Results:    []string{"Resultados não disponíveis"},
}

// Default decodes the embedded catalog.
func Default() (*Site, error) {
	return Parse(defaultSite)
}

// LoadFile decodes a catalog from disk, for overriding the embedded one.
func LoadFile(path string) (*Site, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a catalog.
func Parse(b []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode site: %w", err)
	}
	if len(s.Categories) == 0 {
		s.Categories = []string{AllCategories}
	}
	return &s, nil
}

// Details returns the write-up for a project slug, or the placeholder text
// when none exists.
func (s *Site) Details(slug string) Details {
	d, ok := s.Projects[slug]
	if !ok {
		return fallbackDetails
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	return d
}

// Category returns the listing category of a project slug.
func (s *Site) Category(slug string) string {
	return s.Details(slug).Category
}
