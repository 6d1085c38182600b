package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manseek/manseek/internal/manpage"
)

// Config is the in-memory representation of ~/.manseek/manseek.yaml.
type Config struct {
	// Manpaths overrides manpath(1) discovery when non-empty.
	Manpaths []string `yaml:"manpaths,omitempty"`
	// Sections lists the manual sections worth indexing (NAME, DESCRIPTION, ...).
	Sections []string `yaml:"sections,omitempty"`
	// Weighting selects the term-frequency scheme: "raw" or "log".
	Weighting string `yaml:"weighting,omitempty"`
	// StopWords are dropped by the tokenizer at build and query time.
	StopWords []string `yaml:"stop_words,omitempty"`
	// ResultLimit caps search output; 0 or negative means unlimited.
	ResultLimit int `yaml:"result_limit,omitempty"`
}

// DefaultResultLimit caps search output when neither flag, environment
// nor config say otherwise.
const DefaultResultLimit = 20

// ManseekDir returns the absolute path to ~/.manseek/.
func ManseekDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".manseek"), nil
}

// ConfigPath returns the absolute path to ~/.manseek/manseek.yaml.
func ConfigPath() (string, error) {
	dir, err := ManseekDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "manseek.yaml"), nil
}

// IndexDir returns the directory holding the installed index snapshot.
func IndexDir() (string, error) {
	dir, err := ManseekDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "index"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the config written on first manseek init.
func DefaultConfig() *Config {
	return &Config{
		Sections:    append([]string(nil), manpage.DefaultSections...),
		Weighting:   "log",
		ResultLimit: DefaultResultLimit,
	}
}

// Load reads and parses ~/.manseek/manseek.yaml.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	// Expand ~ in manpath overrides at load time.
	for i, p := range cfg.Manpaths {
		cfg.Manpaths[i], err = ExpandPath(p)
		if err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.manseek/manseek.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// EffectiveSections returns the configured section allowlist, falling
// back to the standard set.
func (c *Config) EffectiveSections() []string {
	if len(c.Sections) > 0 {
		return c.Sections
	}
	return manpage.DefaultSections
}

// EffectiveWeighting returns the configured weighting scheme name,
// defaulting to log-scaled term frequency.
func (c *Config) EffectiveWeighting() string {
	if c.Weighting != "" {
		return c.Weighting
	}
	return "log"
}

// EffectiveManpaths resolves where to look for manual pages: the
// MANSEEK_MANPATH override first, then the config, then manpath(1).
func (c *Config) EffectiveManpaths() ([]string, error) {
	if v, err := GetConfigValue(EnvManpath); err == nil && v != "" {
		var roots []string
		for _, p := range strings.Split(v, ":") {
			if p = strings.TrimSpace(p); p != "" {
				roots = append(roots, p)
			}
		}
		if len(roots) > 0 {
			return roots, nil
		}
	}
	if len(c.Manpaths) > 0 {
		return c.Manpaths, nil
	}
	return manpage.Manpaths()
}
