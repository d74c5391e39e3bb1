// Package config loads runner configuration from a YAML file and
// environment variables, with hot-reload support.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the runner's environment variables, e.g.
// RUNNER_SERVER_PORT=9090 overrides server.port.
const envPrefix = "RUNNER_"

type Config struct {
	Server Server  `koanf:"server"`
	Debug  bool    `koanf:"debug"`
	Audit  Audit   `koanf:"audit"`
	Stages []Stage `koanf:"stages"`
}

type Server struct {
	Port int `koanf:"port"`
}

// Audit configures the run audit trail.
type Audit struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"` // SQLite database path, ":memory:" allowed
}

// Stage declares one pipeline stage. Handler names a factory registered
// in the registry; Params are passed to that factory.
type Stage struct {
	Name            string         `koanf:"name"`
	Handler         string         `koanf:"handler"`
	Priority        int            `koanf:"priority"`
	Paths           []string       `koanf:"paths"`
	ContinueOnError bool           `koanf:"continue_on_error"`
	Params          map[string]any `koanf:"params"`
}

// Load reads configuration from the given file (optional) layered under
// RUNNER_-prefixed environment variables, then applies defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
