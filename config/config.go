// Package config holds shared defaults for the lk-* tools. Flags take
// precedence; a YAML config file fills in anything not set on the command
// line.
package config

import (
	"fmt"
	"os"
	"path"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/openlit/litkit/split"
)

// Config for the splitter tools.
type Config struct {
	// DataDir is the parent for relative output dirs. Empty means the
	// working directory; set it to xdg.DataHome/litkit to keep batches
	// out of the tree you run from.
	DataDir string `yaml:"data-dir"`
	// InputFile is the dump to split, a path or an http(s) URL.
	InputFile string `yaml:"input"`
	// OutputDir is where batch files and the manifest go.
	OutputDir string `yaml:"output-dir"`
	// Prefix for batch file names; derived from the input name if empty.
	Prefix string `yaml:"prefix"`
	// MaxEntriesPerFile caps the entries per batch file.
	MaxEntriesPerFile int `yaml:"max-entries-per-file"`
	// Compression for batch output: "", "gz", "zst" or "lz4".
	Compression string `yaml:"compression"`
	// MaxEntrySize is the hard cap for a single entry in bytes.
	MaxEntrySize int `yaml:"max-entry-size"`
}

// Default returns the conventional working-directory setup.
func Default() *Config {
	return &Config{
		InputFile:         "extracted_data.json",
		OutputDir:         "extracted_batches",
		MaxEntriesPerFile: split.DefaultMaxEntriesPerFile,
		MaxEntrySize:      split.DefaultMaxEntrySize,
	}
}

// OutputPath resolves the output dir against DataDir. Absolute output dirs
// win; otherwise they are joined onto DataDir when one is set.
func (c *Config) OutputPath() string {
	if c.DataDir == "" || path.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return path.Join(c.DataDir, c.OutputDir)
}

// FromFile loads a YAML config file over the defaults.
func FromFile(p string) (*Config, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", p, err)
	}
	return cfg, nil
}

// Load returns the config from p, or the defaults when p is empty and no
// file exists at the conventional location ($XDG_CONFIG_HOME/litkit/config.yaml).
func Load(p string) (*Config, error) {
	if p != "" {
		return FromFile(p)
	}
	conventional := path.Join(xdg.ConfigHome, "litkit", "config.yaml")
	if _, err := os.Stat(conventional); err == nil {
		return FromFile(conventional)
	}
	return Default(), nil
}
