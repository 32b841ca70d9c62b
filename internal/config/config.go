// Package config loads the traduit configuration file with Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/quillworks/traduit/pkg/types"
)

const configFileType = "yaml"

// defaultConfigYAML is written next to the resolved config path on first run.
const defaultConfigYAML = `# traduit configuration

database:
  driver: sqlite
  dsn: traduit.db

locales:
  default: en
  # enabled: [fr, de, es]

engine:
  kind: identity
  # kind: http
  # endpoint: http://localhost:5000
  # api_key:

server:
  addr: :8765

# tolerant keeps flush failures from surfacing to the host write cycle.
tolerant: false
`

// Load reads the configuration file at path, applies defaults, and validates
// the result. A missing file is not an error: defaults are written to path
// and then used.
func Load(path string) (types.Config, error) {
	if err := ensureDefaultConfigFile(path); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType(configFileType)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration without touching the filesystem.
func Default() types.Config {
	v := viper.New()
	setDefaults(v)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: default unmarshal: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", types.DriverSQLite)
	v.SetDefault("database.dsn", "traduit.db")
	v.SetDefault("locales.default", "en")
	v.SetDefault("engine.kind", types.EngineKindIdentity)
	v.SetDefault("server.addr", ":8765")
	v.SetDefault("tolerant", false)
}

// ensureDefaultConfigFile creates the parent directory and a default config
// file at path when the file does not exist.
func ensureDefaultConfigFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
