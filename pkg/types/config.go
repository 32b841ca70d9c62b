package types

import "errors"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported translation engine kinds.
const (
	EngineKindHTTP     = "http"
	EngineKindIdentity = "identity"
)

// Config validation errors.
var (
	ErrDriverEmpty       = errors.New("database driver must not be empty")
	ErrDriverUnknown     = errors.New("unknown database driver")
	ErrDSNEmpty          = errors.New("database dsn must not be empty")
	ErrDefaultLocale     = errors.New("default locale must not be empty")
	ErrEngineKindUnknown = errors.New("unknown engine kind")
	ErrEngineEndpoint    = errors.New("http engine requires an endpoint")
)

// DatabaseConfig selects and parameterizes the storage platform.
type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// LocaleConfig holds the global locale set plus per-class overrides.
type LocaleConfig struct {
	// Default is the source-locale fallback and the display-locale of last
	// resort.
	Default string `json:"default" yaml:"default" mapstructure:"default"`

	// Enabled is the ordered set of locales the system serves. The target
	// set for a record is derived from it unless the class overrides it.
	Enabled []string `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// EngineConfig parameterizes the machine-translation backend.
type EngineConfig struct {
	Kind           string `json:"kind" yaml:"kind" mapstructure:"kind"`
	Name           string `json:"name" yaml:"name" mapstructure:"name"`
	Endpoint       string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	APIKey         string `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// ServerConfig holds the operator HTTP API parameters.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config is the full traduit configuration.
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database" mapstructure:"database"`
	Locales  LocaleConfig   `json:"locales" yaml:"locales" mapstructure:"locales"`
	Engine   EngineConfig   `json:"engine" yaml:"engine" mapstructure:"engine"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`

	// Tolerant makes flush commits best-effort: a failed commit is logged
	// and abandoned instead of being propagated to the caller.
	Tolerant bool `json:"tolerant" yaml:"tolerant" mapstructure:"tolerant"`
}

var knownDrivers = map[string]bool{
	DriverSQLite:   true,
	DriverPostgres: true,
}

// Validate checks that the Config is well-formed, returning a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Database.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Database.Driver] {
		return ErrDriverUnknown
	}
	if c.Database.DSN == "" {
		return ErrDSNEmpty
	}
	if c.Locales.Default == "" {
		return ErrDefaultLocale
	}
	switch c.Engine.Kind {
	case "", EngineKindIdentity:
	case EngineKindHTTP:
		if c.Engine.Endpoint == "" {
			return ErrEngineEndpoint
		}
	default:
		return ErrEngineKindUnknown
	}
	return nil
}
