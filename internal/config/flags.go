package config

// This file registers the persistent CLI flags and binds them into viper so
// that an explicitly passed flag wins over file and environment values.

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is shown by the version command; override at build time with
// -ldflags "-X github.com/backmassage/bidsmanager/internal/config.Version=...".
var Version = "0.1.0-dev"

// flagBindings maps viper keys to the flag names that feed them.
var flagBindings = []struct {
	key  string
	flag string
}{
	{"strict", "strict"},
	{"verbose", "verbose"},
	{"color_mode", "color"},
	{"log_file", "log"},
	{"dry_run", "dry-run"},
	{"sidecar_indent", "indent"},
	{"extensions", "extension"},
}

// DefineFlags registers the persistent flags shared by every command.
// The --config flag is read directly by the caller and is not bound.
func DefineFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "Config file (default .bidsmanager.{yaml,toml,json} in cwd or home)")
	fs.Bool("strict", d.Strict, "Reject entity keys outside the BIDS grammar")
	fs.BoolP("verbose", "v", d.Verbose, "Verbose output")
	fs.String("color", string(d.ColorMode), "Color output: auto | always | never")
	fs.StringP("log", "l", "", "Append logs to file")
	fs.BoolP("dry-run", "d", d.DryRun, "Preview only; do not touch disk")
	fs.Int("indent", d.SidecarIndent, "Indent width for written JSON sidecars (0 = compact)")
	fs.StringSlice("extension", nil, "Extra known file extension, e.g. .dtseries.nii (repeatable)")
}

// BindFlags binds every flag registered by [DefineFlags] into v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	for _, b := range flagBindings {
		f := fs.Lookup(b.flag)
		if f == nil {
			return fmt.Errorf("flag --%s is not defined", b.flag)
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", b.flag, err)
		}
	}
	return nil
}
