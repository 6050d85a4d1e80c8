// Package config handles converter configuration loading and management.
package config

import "fmt"

// FileName is the project config file looked up beside the inputs.
const FileName = "meshbake.yaml"

// Config holds all converter settings.
type Config struct {
	Convert  ConvertConfig  `yaml:"convert"`
	Textures TexturesConfig `yaml:"textures"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ConvertConfig controls OBJ/MTL parsing and mesh baking.
type ConvertConfig struct {
	NameLimit    int    `yaml:"name_limit"`    // Max name length in bytes, 0 = unlimited
	StrictNames  bool   `yaml:"strict_names"`  // Fail instead of truncating long names
	DegenerateUV string `yaml:"degenerate_uv"` // "skip" or "keep"
	Encoding     string `yaml:"encoding"`      // Input charset, empty for UTF-8
}

// TexturesConfig controls texture inspection and conversion.
type TexturesConfig struct {
	Probe   bool   `yaml:"probe"`
	BakeDir string `yaml:"bake_dir"` // Re-encode textures to WebP here; implies probe
}

// OutputConfig holds output paths.
type OutputConfig struct {
	Manifest string `yaml:"manifest"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			NameLimit:    127,
			StrictNames:  false,
			DegenerateUV: "skip",
			Encoding:     "",
		},
		Textures: TexturesConfig{
			Probe:   false,
			BakeDir: "",
		},
		Output: OutputConfig{
			Manifest: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Convert.NameLimit < 0 {
		return fmt.Errorf("convert.name_limit must not be negative, got %d", c.Convert.NameLimit)
	}
	switch c.Convert.DegenerateUV {
	case "", "skip", "keep":
	default:
		return fmt.Errorf("convert.degenerate_uv must be skip or keep, got %q", c.Convert.DegenerateUV)
	}
	return nil
}
