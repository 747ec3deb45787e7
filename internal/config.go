package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/evz/family-wiki-sub001/internal/gedcom"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Tree   TreeConfig        `yaml:"tree"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	GEDCOM GEDCOMConfig      `yaml:"gedcom"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Tree.Validate(); err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.GEDCOM.Validate(); err != nil {
		return fmt.Errorf("gedcom: %w", err)
	}
	return nil
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

// TreeConfig points at the directory holding the .ged files that make up the
// family tree.
type TreeConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
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
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// GEDCOMConfig controls how exported GEDCOM files look.
type GEDCOMConfig struct {
	// NoteWidth is the maximum NOTE line length before CONT lines are used.
	NoteWidth int `yaml:"note_width"`
	// HeaderProfile selects "full" or "minimal".
	HeaderProfile string `yaml:"header_profile"`
	SubmitterName string `yaml:"submitter_name"`
	Language      string `yaml:"language"`
}

// Validate validates the GEDCOM configuration.
func (c *GEDCOMConfig) Validate() error {
	if c.NoteWidth == 0 {
		c.NoteWidth = gedcom.DefaultNoteWidth
	}
	if c.HeaderProfile == "" {
		c.HeaderProfile = gedcom.ProfileFull
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.NoteWidth, validation.Min(gedcom.MinNoteWidth), validation.Max(gedcom.MaxNoteWidth)),
		validation.Field(&c.HeaderProfile, validation.In(gedcom.ProfileFull, gedcom.ProfileMinimal)),
	)
}

// Header builds the HEAD layout for exports.
func (c *GEDCOMConfig) Header() gedcom.HeaderConfig {
	h := gedcom.HeaderProfile(c.HeaderProfile)
	if c.SubmitterName != "" && c.HeaderProfile != gedcom.ProfileMinimal {
		h.SubmitterName = c.SubmitterName
	}
	if c.Language != "" {
		h.Language = c.Language
	}
	return h
}

// EncoderOptions returns the encoder settings this configuration implies.
func (c *GEDCOMConfig) EncoderOptions() []gedcom.EncoderOption {
	return []gedcom.EncoderOption{
		gedcom.WithHeader(c.Header()),
		gedcom.WithNoteWidth(c.NoteWidth),
	}
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
		Tree: TreeConfig{
			Path: "./tree",
		},
		SQLite: SQLiteConfig{
			Path: "./familywiki.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		GEDCOM: GEDCOMConfig{
			NoteWidth:     gedcom.DefaultNoteWidth,
			HeaderProfile: gedcom.ProfileFull,
		},
	}
}
