// Package config holds the tunable constants of the workflow graph engine.
// The heuristic thresholds (importance cut-offs, edge caps, canvas size)
// are product choices, not derived invariants, so they load through a
// layered koanf stack: flags > env > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces environment overrides, e.g. REPOATLAS_EXPORTS_HIGH=8.
const envPrefix = "REPOATLAS_"

// configNames are the file names probed when no explicit config is given.
var configNames = []string{"repoatlas.yaml", "repoatlas.yml"}

// Engine carries every tunable constant of the graph engine.
type Engine struct {
	// Workers bounds the classification worker pool; 0 means one per CPU.
	Workers int `koanf:"workers"`

	// Importance thresholds for node classification.
	ExportsHigh     int `koanf:"exports_high"`
	FunctionsHigh   int `koanf:"functions_high"`
	ExportsMedium   int `koanf:"exports_medium"`
	FunctionsMedium int `koanf:"functions_medium"`

	// Essential-builder caps.
	SpineComponentCap int `koanf:"spine_component_cap"`
	SpineServiceCap   int `koanf:"spine_service_cap"`
	SpineChainLen     int `koanf:"spine_chain_len"`
	CriticalImportCap int `koanf:"critical_import_cap"`
	ConnectivityCap   int `koanf:"connectivity_cap"`
	FallbackFanCap    int `koanf:"fallback_fan_cap"`

	// Detailed-builder caps.
	ContainsCap   int `koanf:"contains_cap"`
	GovernanceCap int `koanf:"governance_cap"`
	UsesCap       int `koanf:"uses_cap"`
	CallsCap      int `koanf:"calls_cap"`
	SimilarCap    int `koanf:"similar_cap"`

	// CriticalPathCap bounds the number of reported critical paths.
	CriticalPathCap int `koanf:"critical_path_cap"`

	// EdgeBudget is the deadline for detailed edge construction; on expiry
	// the engine substitutes the cheap heuristic graph.
	EdgeBudget time.Duration `koanf:"edge_budget"`

	// Layout parameters.
	CanvasWidth   float64 `koanf:"canvas_width"`
	CanvasHeight  float64 `koanf:"canvas_height"`
	MinSeparation float64 `koanf:"min_separation"`
	LevelCap      int     `koanf:"level_cap"`
	RelaxPasses   int     `koanf:"relax_passes"`

	// AliasPrefixes maps scoped import prefixes to source roots,
	// e.g. "@/" -> "src/".
	AliasPrefixes map[string]string `koanf:"alias_prefixes"`
}

// Default returns the engine configuration with the stock thresholds.
func Default() Engine {
	return Engine{
		Workers:           0,
		ExportsHigh:       5,
		FunctionsHigh:     10,
		ExportsMedium:     2,
		FunctionsMedium:   3,
		SpineComponentCap: 3,
		SpineServiceCap:   2,
		SpineChainLen:     4,
		CriticalImportCap: 8,
		ConnectivityCap:   3,
		FallbackFanCap:    5,
		ContainsCap:       3,
		GovernanceCap:     5,
		UsesCap:           5,
		CallsCap:          3,
		SimilarCap:        2,
		CriticalPathCap:   10,
		EdgeBudget:        2 * time.Second,
		CanvasWidth:       1200,
		CanvasHeight:      800,
		MinSeparation:     80,
		LevelCap:          10,
		RelaxPasses:       50,
		AliasPrefixes:     map[string]string{"@/": "src/"},
	}
}

// defaultMap mirrors Default() as a koanf confmap so file/env/flag layers
// can override individual keys.
func defaultMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"workers":             d.Workers,
		"exports_high":        d.ExportsHigh,
		"functions_high":      d.FunctionsHigh,
		"exports_medium":      d.ExportsMedium,
		"functions_medium":    d.FunctionsMedium,
		"spine_component_cap": d.SpineComponentCap,
		"spine_service_cap":   d.SpineServiceCap,
		"spine_chain_len":     d.SpineChainLen,
		"critical_import_cap": d.CriticalImportCap,
		"connectivity_cap":    d.ConnectivityCap,
		"fallback_fan_cap":    d.FallbackFanCap,
		"contains_cap":        d.ContainsCap,
		"governance_cap":      d.GovernanceCap,
		"uses_cap":            d.UsesCap,
		"calls_cap":           d.CallsCap,
		"similar_cap":         d.SimilarCap,
		"critical_path_cap":   d.CriticalPathCap,
		"edge_budget":         d.EdgeBudget,
		"canvas_width":        d.CanvasWidth,
		"canvas_height":       d.CanvasHeight,
		"min_separation":      d.MinSeparation,
		"level_cap":           d.LevelCap,
		"relax_passes":        d.RelaxPasses,
		"alias_prefixes":      d.AliasPrefixes,
	}
}

// findConfigFile returns the config file to use: the explicit path if
// given, otherwise the first repoatlas.yaml/.yml found in the working
// directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds an Engine config with precedence flags > env > file >
// defaults. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (Engine, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return Engine{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(filepath.Clean(path)), yaml.Parser()); err != nil {
			return Engine{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Engine{}, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Engine{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Engine
	if err := k.Unmarshal("", &cfg); err != nil {
		return Engine{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
