// Package config holds runtime configuration: defaults, loading from file and
// environment via viper, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/backmassage/bidsmanager/internal/bids"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// EnvPrefix prefixes every environment override, e.g. BIDSMANAGER_STRICT.
const EnvPrefix = "BIDSMANAGER"

// Config holds all runtime settings. Values come from [DefaultConfig], then a
// config file, then BIDSMANAGER_* environment variables, then CLI flags.
type Config struct {
	// Parsing.
	Strict               bool     `mapstructure:"strict"`                                      // Reject unrecognized entity keys.
	Extensions           []string `mapstructure:"extensions" validate:"dive,startswith=."`     // Extra known extensions, e.g. ".dtseries.nii".
	FunctionalModalities []string `mapstructure:"functional_modalities" validate:"dive,alphanum"` // Replaces the default functional suffixes when set.

	// Sidecars.
	SidecarIndent int `mapstructure:"sidecar_indent" validate:"gte=0,lte=8"` // Default: 2.

	// Behavior.
	DryRun bool `mapstructure:"dry_run"` // Log planned renames without touching disk.

	// Display and logging.
	Verbose   bool      `mapstructure:"verbose"`
	ColorMode ColorMode `mapstructure:"color_mode" validate:"required,oneof=auto always never"` // Default: "auto".
	LogFile   string    `mapstructure:"log_file"`                                             // Optional log file path.
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Strict:        false,
		SidecarIndent: bids.DefaultIndent,
		DryRun:        false,
		Verbose:       false,
		ColorMode:     ColorAuto,
	}
}

// ParseOptions converts the parsing settings for the bids package.
func (c *Config) ParseOptions() bids.ParseOptions {
	return bids.ParseOptions{
		Strict:               c.Strict,
		Extensions:           c.Extensions,
		FunctionalModalities: c.FunctionalModalities,
	}
}

// Load reads configuration into a validated Config. configPath selects an
// explicit file; when empty, ".bidsmanager.{yaml,toml,json}" is searched for
// in the working directory and then the home directory, and a missing file
// is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)
	setupViper(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ColorMode = ColorMode(strings.ToLower(string(cfg.ColorMode)))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("strict", d.Strict)
	v.SetDefault("extensions", []string{})
	v.SetDefault("functional_modalities", []string{})
	v.SetDefault("sidecar_indent", d.SidecarIndent)
	v.SetDefault("dry_run", d.DryRun)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("color_mode", string(d.ColorMode))
	v.SetDefault("log_file", d.LogFile)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.SetConfigName(".bidsmanager")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
}

var validate = validator.New()

// Validate checks field values against their struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError reports the first failing field in a readable form.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
