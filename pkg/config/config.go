// Package config handles configuration for the locator resolver.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/locator-resolver/pkg/resolver"
)

// Config represents the resolver configuration file (resolver.yaml).
type Config struct {
	// Registry is the path to the semantic-id registry file.
	Registry string `yaml:"registry"`

	// Resolution pipeline settings.
	StrategyOrder        []string `yaml:"strategyOrder"`        // Strategy names, in precedence order
	CacheMaxEntries      int      `yaml:"cacheMaxEntries"`      // Cache bound (entries)
	PerStrategyTimeoutMs int      `yaml:"perStrategyTimeoutMs"` // Per-attempt time box
	ResolveTimeoutMs     int      `yaml:"resolveTimeoutMs"`     // Whole-resolve deadline

	// Semantic strategy settings.
	SemanticStrategyEnabled *bool  `yaml:"semanticStrategyEnabled"` // nil = enabled
	SemanticMatcherURL      string `yaml:"semanticMatcherUrl"`      // External matcher endpoint

	// Script strategy settings.
	ScriptFile string `yaml:"scriptFile"` // User JS resolver, empty = disabled

	// Page engine settings.
	TestIDAttribute string `yaml:"testIdAttribute"` // Attribute for testid locators, default data-test
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for resolver.yaml or resolver.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"resolver.yaml", "resolver.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// No config file found, return empty config.
	return &Config{}, nil
}

// SemanticEnabled returns the effective semantic-strategy toggle.
func (c *Config) SemanticEnabled() bool {
	return c.SemanticStrategyEnabled == nil || *c.SemanticStrategyEnabled
}

// ResolverConfig converts the file surface to the runtime configuration,
// filling defaults for anything unset.
func (c *Config) ResolverConfig() resolver.Config {
	rc := resolver.DefaultConfig()
	if len(c.StrategyOrder) > 0 {
		rc.StrategyOrder = c.StrategyOrder
	}
	if c.CacheMaxEntries > 0 {
		rc.CacheMaxEntries = c.CacheMaxEntries
	}
	if c.PerStrategyTimeoutMs > 0 {
		rc.PerStrategyTimeout = time.Duration(c.PerStrategyTimeoutMs) * time.Millisecond
	}
	if c.ResolveTimeoutMs > 0 {
		rc.ResolveTimeout = time.Duration(c.ResolveTimeoutMs) * time.Millisecond
	}
	rc.SemanticEnabled = c.SemanticEnabled()
	return rc
}
