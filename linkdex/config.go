// CLAUDE:SUMMARY Configuration structs (source, parser, sink, http) and YAML loader for linkdex.
package linkdex

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/linkdex/sink"
	"github.com/hazyhaar/linkdex/source"
)

// Config holds all linkdex configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Source   source.Config `yaml:"source"`
	Parser   ParserConfig  `yaml:"parser"`
	Sink     sink.Config   `yaml:"sink"`
	HTTP     HTTPConfig    `yaml:"http"`
}

// ParserConfig controls parsing and post-processing of the tree.
type ParserConfig struct {
	Descriptions bool   `yaml:"descriptions"`
	Fallback     string `yaml:"fallback"`

	// FragmentBase, when set, turns "#anchor" links into absolute URLs
	// rooted at this page.
	FragmentBase string `yaml:"fragment_base"`
}

// HTTPConfig controls the HTTP API listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

func (c *Config) defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8086"
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("linkdex: read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("linkdex: parse config %s: %w", path, err)
	}
	return cfg, nil
}
