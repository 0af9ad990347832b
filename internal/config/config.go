// Package config loads the CLI configuration.
//
// Precedence (highest to lowest):
//  1. Command-line flags (applied by the caller)
//  2. QUILL_* environment variables
//  3. YAML config file (quill.yaml or --config)
//  4. Defaults
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "QUILL_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// Config is the resolved CLI configuration.
type Config struct {
	Adapter   string       `koanf:"adapter"`
	Path      string       `koanf:"path"`
	DevSafety bool         `koanf:"dev_safety"`
	Verbose   bool         `koanf:"verbose"`
	SQLite    SQLiteConfig `koanf:"sqlite"`
	FS        FSConfig     `koanf:"fs"`
}

// SQLiteConfig configures the sqlite adapter.
type SQLiteConfig struct {
	Driver string `koanf:"driver"`
}

// FSConfig configures the fs adapter.
type FSConfig struct {
	SystemDir string `koanf:"system_dir"`
	ReadOnly  bool   `koanf:"read_only"`
	Watch     bool   `koanf:"watch"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Adapter:   "fs",
		Path:      ".",
		DevSafety: true,
		SQLite:    SQLiteConfig{Driver: "sqlite"},
		FS:        FSConfig{SystemDir: ".quill"},
	}
}

// sections are the nested keys reachable from the environment:
// QUILL_SQLITE_DRIVER -> sqlite.driver, QUILL_FS_SYSTEM_DIR -> fs.system_dir.
var sections = []string{"sqlite", "fs"}

// Load reads configPath (skipped when empty), then applies QUILL_* overrides.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// Validate rejects unknown adapter and driver names.
func (c *Config) Validate() error {
	switch c.Adapter {
	case "fs", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown adapter %q (want fs, sqlite or memory)", c.Adapter)
	}
	switch c.SQLite.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unknown sqlite driver %q (want sqlite or sqlite3)", c.SQLite.Driver)
	}
	return nil
}
