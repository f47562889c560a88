package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/tdewolff/picosvg"
)

// Config is the optional configuration file. Command line flags take precedence.
type Config struct {
	AllowAllDefs     bool `toml:"allow_all_defs"`
	AllowText        bool `toml:"allow_text"`
	DropUnsupported  bool `toml:"drop_unsupported"`
	StrokeToFill     bool `toml:"stroke_to_fill"`
	EvenOddToNonZero bool `toml:"evenodd_to_nonzero"`
	ClipToViewBox    bool `toml:"clip_to_viewbox"`
	RemoveUnpainted  bool `toml:"remove_unpainted"`
	Precision        *int `toml:"precision"`
	PermissiveUnits  bool `toml:"permissive_units"`
	Pretty           bool `toml:"pretty"`
}

func loadConfig(filename string) (Config, error) {
	cfg := Config{}
	if filename == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// options merges the configuration file with the flags. A negative precision flag is unset.
func (cmd *Normalize) options(cfg Config) *picosvg.Options {
	opts := picosvg.DefaultOptions
	opts.AllowAllDefs = cmd.AllowAllDefs || cfg.AllowAllDefs
	opts.AllowText = cmd.AllowText || cfg.AllowText
	opts.DropUnsupported = cmd.DropUnsupported || cfg.DropUnsupported
	opts.StrokeToFill = cmd.StrokeToFill || cfg.StrokeToFill
	opts.EvenOddToNonZero = cmd.EvenOddToNonZero || cfg.EvenOddToNonZero
	opts.ClipToViewBox = cmd.ClipToViewBox || cfg.ClipToViewBox
	opts.RemoveUnpainted = cmd.RemoveUnpainted || cfg.RemoveUnpainted
	opts.PermissiveUnits = cmd.PermissiveUnits || cfg.PermissiveUnits
	opts.Pretty = cmd.Pretty || cfg.Pretty
	if 0 <= cmd.Precision {
		opts.Precision = cmd.Precision
	} else if cfg.Precision != nil {
		opts.Precision = *cfg.Precision
	}
	return &opts
}
