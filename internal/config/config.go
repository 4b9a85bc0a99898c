package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/kwsearch/internal/access"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/mode"
)

// Config holds the kwsearch configuration.
type Config struct {
	HTTP     HTTPConfig                     `yaml:"http"`
	Database DatabaseConfig                 `yaml:"database"`
	Auth     AuthConfig                     `yaml:"auth"`
	Access   map[string]map[string][]string `yaml:"access"` // resource -> action -> roles
	Search   SearchConfig                   `yaml:"search"`
	Logging  LoggingConfig                  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. With no keys, every request
// runs as the anonymous principal.
type AuthConfig struct {
	APIKeys        []APIKey `yaml:"api_keys"`
	AnonymousRoles []string `yaml:"anonymous_roles"`
}

// APIKey maps a bearer token to a principal.
type APIKey struct {
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // sqlite (default)
	Path             string `yaml:"path"`   // file path or ":memory:"
	BusyTimeoutMS    int    `yaml:"busy_timeout_ms"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
	HealthTimeout    int    `yaml:"health_timeout_sec"`
}

// SearchConfig holds keyword search limits.
type SearchConfig struct {
	MaxItems      int       `yaml:"max_items"`      // 0 = no ceiling
	MinCharacters int       `yaml:"min_characters"` // 0 = any length
	MaxPerPage    int       `yaml:"max_per_page"`   // 0 = no clamp
	BareTerms     mode.Mode `yaml:"bare_terms"`     // drop (default) | route
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, substituting ${VAR} references, then
// applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = 5000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.HealthTimeout <= 0 {
		c.Database.HealthTimeout = 2
	}
	if c.Search.MaxPerPage == 0 {
		c.Search.MaxPerPage = 100
	}
	c.Search.BareTerms = c.Search.BareTerms.OrDefault()
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be \"sqlite\", got %q", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Search.MaxItems < 0 {
		return fmt.Errorf("search.max_items must not be negative, got %d", c.Search.MaxItems)
	}
	if c.Search.MinCharacters < 0 {
		return fmt.Errorf("search.min_characters must not be negative, got %d", c.Search.MinCharacters)
	}
	if c.Search.MaxPerPage < 0 {
		return fmt.Errorf("search.max_per_page must not be negative, got %d", c.Search.MaxPerPage)
	}
	if !c.Search.BareTerms.IsValid() {
		return fmt.Errorf("search.bare_terms must be \"drop\" or \"route\", got %q", c.Search.BareTerms)
	}

	seen := make(map[string]bool, len(c.Auth.APIKeys))
	for i, k := range c.Auth.APIKeys {
		if k.Key == "" {
			return fmt.Errorf("auth.api_keys[%d].key is required", i)
		}
		if k.Principal == "" {
			return fmt.Errorf("auth.api_keys[%d].principal is required", i)
		}
		if seen[k.Key] {
			return fmt.Errorf("auth.api_keys[%d]: duplicate key", i)
		}
		seen[k.Key] = true
	}

	for resource, actions := range c.Access {
		for action := range actions {
			if !knownActions[strings.ToLower(action)] {
				return fmt.Errorf("access.%s: unknown action %q", resource, action)
			}
		}
	}
	return nil
}

var knownActions = map[string]bool{
	access.ActionSearch: true,
	access.ActionRead:   true,
	access.ActionCreate: true,
	access.ActionUpdate: true,
	access.ActionDelete: true,
}

// Principals maps each configured API key to its principal.
func (c *Config) Principals() map[string]access.Principal {
	out := make(map[string]access.Principal, len(c.Auth.APIKeys))
	for _, k := range c.Auth.APIKeys {
		out[k.Key] = access.Principal{Name: k.Principal, Roles: k.Roles}
	}
	return out
}

// Anonymous returns the principal used when no API keys are configured.
func (c *Config) Anonymous() access.Principal {
	p := access.Anonymous
	p.Roles = c.Auth.AnonymousRoles
	return p
}

// ReadinessTimeout returns the database readiness timeout.
func (c *Config) ReadinessTimeout() time.Duration {
	return time.Duration(c.Database.ReadinessTimeout) * time.Second
}

// HealthTimeout bounds a single health check.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.Database.HealthTimeout) * time.Second
}

// BusyTimeout returns the SQLite busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to this source file, for tests run from package directories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
