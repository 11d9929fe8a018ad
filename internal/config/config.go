// Package config loads the server configuration from defaults, portfolio.yaml
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ContentConfig says where the portfolio content text comes from.
type ContentConfig struct {
	Path  string `mapstructure:"path"`
	URL   string `mapstructure:"url"`
	Watch bool   `mapstructure:"watch"`
}

// AssetsConfig describes the bundled image directory.
type AssetsConfig struct {
	Root   string `mapstructure:"root"`
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

// ContactConfig holds the form relay settings.
type ContactConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AdminConfig holds the admin dashboard credentials.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// TrackingConfig controls visitor tracking.
type TrackingConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Salt      string        `mapstructure:"salt"`
	Retention time.Duration `mapstructure:"retention"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Config is the application configuration.
type Config struct {
	Port      string         `mapstructure:"port"`
	Mode      string         `mapstructure:"mode"`
	Templates string         `mapstructure:"templates"`
	Static    string         `mapstructure:"static"`
	Site      string         `mapstructure:"site"`
	Content   ContentConfig  `mapstructure:"content"`
	Assets    AssetsConfig   `mapstructure:"assets"`
	Contact   ContactConfig  `mapstructure:"contact"`
	Database  DatabaseConfig `mapstructure:"database"`
	Admin     AdminConfig    `mapstructure:"admin"`
	Tracking  TrackingConfig `mapstructure:"tracking"`
	Log       LogConfig      `mapstructure:"log"`
}

// DefaultAdminUsername and DefaultAdminPassword are development fallbacks.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("mode", "release")
	v.SetDefault("templates", "")
	v.SetDefault("static", "./static")
	v.SetDefault("site", "")
	v.SetDefault("content.path", "content/projetos.yaml")
	v.SetDefault("content.url", "")
	v.SetDefault("content.watch", true)
	v.SetDefault("assets.root", ".")
	v.SetDefault("assets.dir", "images")
	v.SetDefault("assets.prefix", "/assets")
	v.SetDefault("contact.endpoint", "https://formspree.io/f/xkonnywk")
	v.SetDefault("contact.timeout", 10*time.Second)
	v.SetDefault("database.path", "portfolio.db")
	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("tracking.enabled", true)
	v.SetDefault("tracking.salt", "")
	v.SetDefault("tracking.retention", 365*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// New returns a viper instance with defaults, the optional portfolio config
// file search paths and environment bindings. PORTFOLIO_CONTENT_PATH maps to
// content.path; PORT, ADMIN_USERNAME and ADMIN_PASSWORD are also honoured.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("portfolio")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "PORTFOLIO_PORT", "PORT")
	_ = v.BindEnv("admin.username", "PORTFOLIO_ADMIN_USERNAME", "ADMIN_USERNAME")
	_ = v.BindEnv("admin.password", "PORTFOLIO_ADMIN_PASSWORD", "ADMIN_PASSWORD")
	_ = v.BindEnv("mode", "PORTFOLIO_MODE", "GIN_MODE")

	return v
}

// Load reads the config file given by path, or searches the default
// locations when path is empty, then unmarshals everything into a Config.
// A missing config file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// ApplyAdminDefaults fills in missing admin credentials with the development
// defaults and reports whether it had to.
func (c *Config) ApplyAdminDefaults() bool {
	defaulted := false
	if c.Admin.Username == "" {
		c.Admin.Username = DefaultAdminUsername
		defaulted = true
	}
	if c.Admin.Password == "" {
		c.Admin.Password = DefaultAdminPassword
		defaulted = true
	}
	return defaulted
}
