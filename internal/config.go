package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Oracle providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Runs   RunsConfig        `yaml:"runs"`
	Oracle OracleConfig      `yaml:"oracle"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Runs.Validate(); err != nil {
		return err
	}
	if err := c.Oracle.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// RunsConfig holds the locations of analysis run artifacts.
type RunsConfig struct {
	// Dir is the directory where run folders are created.
	Dir string `yaml:"dir"`
	// Catalog is the SQLite database path for the run catalog.
	Catalog string `yaml:"catalog"`
}

// Validate validates the runs configuration.
func (c *RunsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Catalog, validation.Required),
	)
}

// OracleConfig holds the summarization backend configuration.
//
// Provider selects the backend:
//   - "anthropic" (default): the Anthropic messages API; APIKey must be set.
//   - "ollama": a local Ollama instance reachable at Host.
type OracleConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	Host         string `yaml:"host"`
	MaxTokens    int    `yaml:"max_tokens"`
	MaxPromptLen int    `yaml:"max_prompt_len"`
}

// Validate validates the oracle configuration.
func (c *OracleConfig) Validate() error {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderAnthropic, ProviderOllama)),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTokens, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.Provider == ProviderOllama && c.Host == "" {
		return fmt.Errorf("oracle: provider is %q but host is empty", ProviderOllama)
	}
	return nil
}

// AuthConfig holds authentication configuration for the HTTP API.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Runs: RunsConfig{
			Dir:     "./runs",
			Catalog: "./project-guide.db",
		},
		Oracle: OracleConfig{
			Provider:     ProviderAnthropic,
			Model:        "claude-3-7-sonnet-20250219",
			MaxTokens:    8192,
			MaxPromptLen: 100000,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
