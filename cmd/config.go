package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"media-dedup/internal/cluster"
	"media-dedup/internal/engine"
)

// defaultConfigFile is looked for in the working directory when --config
// is not given.
const defaultConfigFile = "dedup.yaml"

// Config holds CLI defaults that flags override per invocation.
type Config struct {
	Database   string             `yaml:"database"`
	Serve      ServeConfig        `yaml:"serve"`
	Scan       engine.Options     `yaml:"scan"`
	Thresholds cluster.Thresholds `yaml:"thresholds"`
}

// ServeConfig configures the HTTP query server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the built-in defaults used when no config file
// exists.
func DefaultConfig() *Config {
	return &Config{
		Database:   "catalog.db",
		Serve:      ServeConfig{Addr: ":8080"},
		Scan:       engine.DefaultOptions(),
		Thresholds: cluster.DefaultThresholds(),
	}
}

// LoadConfig reads the YAML config at path. An empty path means the
// default location, where a missing file is not an error; an explicit
// --config that does not exist is.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing configuration %s: %w", path, err)
	}
	return config, nil
}
