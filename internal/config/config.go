// Package config loads the optional YAML file holding default settings for
// the clusterkit command line. Flags always take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileMode = 0600

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the command defaults.
type Config struct {
	// Seed is the K-Means random seed.
	Seed int64 `yaml:"seed"`
	// K is the number of clusters for the kmeans command.
	K int `yaml:"k"`
	// NInit is the number of K-Means initializations.
	NInit int `yaml:"n_init"`
	// MaxK is the largest k swept by elbow, silhouette and optimal.
	MaxK int `yaml:"max_k"`
	// Method is the hierarchical linkage method.
	Method string `yaml:"method"`
	// Selection is the optimal-k heuristic: elbow, silhouette or both.
	Selection string `yaml:"selection"`
	// Metric is the k-distance metric.
	Metric string `yaml:"metric"`
	// Neighbors is the k-distance neighbor rank.
	Neighbors int `yaml:"neighbors"`
	// Workers bounds parallelism; 0 uses every CPU.
	Workers int `yaml:"workers"`
	// Format is the result output format, json or yaml.
	Format string `yaml:"format"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Seed:      42,
		K:         5,
		NInit:     1,
		MaxK:      10,
		Method:    "ward",
		Selection: "both",
		Metric:    "cosine",
		Neighbors: 4,
		Format:    FormatJSON,
		LogLevel:  "info",
	}
}

// Load reads path on top of the defaults. An empty path returns the
// defaults; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as YAML, creating parent directories as needed.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields that can be verified without the data.
func (c *Config) Validate() error {
	if c.Format != FormatJSON && c.Format != FormatYAML {
		return fmt.Errorf("format must be %q or %q, got %q", FormatJSON, FormatYAML, c.Format)
	}
	if c.K < 0 || c.MaxK < 0 || c.Neighbors < 0 || c.NInit < 0 || c.Workers < 0 {
		return errors.New("k, max_k, neighbors, n_init and workers must not be negative")
	}
	return nil
}
