package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/tagging"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Synonyms SynonymsConfig    `yaml:"synonyms"`
	Catalog  CatalogConfig     `yaml:"catalog"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Store.Driver == StoreDriverSQLite {
		if err := c.SQLite.Validate(); err != nil {
			return err
		}
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Catalog.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects the catalog store implementation.
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = StoreDriverSQLite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(StoreDriverSQLite, StoreDriverMemory)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// ModeratorToken, when set in token mode, is the only token allowed to
// curate official tags and reset scores.
type AuthConfig struct {
	Mode           string `yaml:"mode"`
	Token          string `yaml:"token"`
	ModeratorToken string `yaml:"moderator_token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	if c.ModeratorToken != "" && c.ModeratorToken == c.Token {
		return fmt.Errorf("auth: moderator_token must differ from token")
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SynonymsConfig points at the optional synonym file. An empty path
// disables synonyms.
type SynonymsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// CatalogConfig tunes the tag catalog.
type CatalogConfig struct {
	DefaultOfficialTags []string      `yaml:"default_official_tags"`
	SuggestionLimit     int           `yaml:"suggestion_limit"`
	ExtractLimit        int           `yaml:"extract_limit"`
	EventThrottle       time.Duration `yaml:"event_throttle"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultOfficialTags, validation.Each(validation.By(func(v any) error {
			if s, _ := v.(string); tagging.NormalizeTag(s) == "" {
				return fmt.Errorf("%q is not a tag", s)
			}
			return nil
		}))),
		validation.Field(&c.SuggestionLimit, validation.Min(0)),
		validation.Field(&c.ExtractLimit, validation.Min(0), validation.Max(50)),
		validation.Field(&c.EventThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Driver: StoreDriverSQLite,
		},
		SQLite: SQLiteConfig{
			Path: "./taxon.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Catalog: CatalogConfig{
			DefaultOfficialTags: catalog.DefaultOfficialTags,
			SuggestionLimit:     20,
			ExtractLimit:        tagging.DefaultExtractLimit,
			EventThrottle:       2 * time.Second,
		},
	}
}
