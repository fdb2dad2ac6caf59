// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"

	"github.com/alexiswl/gridss/internal/assembly"
	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/export"
	"github.com/alexiswl/gridss/internal/kmer"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AssemblyConfig is settings for the de Bruijn assembler
type AssemblyConfig struct {
	// the k-mer length
	K int `mapstructure:"k"`

	// the widest subgraph assembled, in multiples of the maximum
	// concordant fragment size
	MaxSubgraphFragmentWidth float64 `mapstructure:"max-subgraph-fragment-width"`

	// edits allowed between collapsed paths; 0 disables collapse
	MaxBaseMismatchForCollapse int `mapstructure:"max-base-mismatch-for-collapse"`

	// whether to only collapse paths that rejoin
	CollapseBubblesOnly bool `mapstructure:"collapse-bubbles-only"`

	// the simplification work allowed per subgraph; 0 is unlimited
	MaxCollapseOperations int `mapstructure:"max-collapse-operations"`

	// whether to check graph consistency after every window (slow)
	Validate bool `mapstructure:"validate"`
}

// EvidenceConfig is settings about the evidence library
type EvidenceConfig struct {
	// the largest fragment size considered concordant
	MaxConcordantFragmentSize int `mapstructure:"max-concordant-fragment-size"`
}

// VisualisationConfig is settings for debug exports of subgraphs
type VisualisationConfig struct {
	// the directory to write DOT files to; empty disables export
	Directory string `mapstructure:"directory"`

	// whether to export every subgraph
	All bool `mapstructure:"all"`

	// whether to export subgraphs skipped for being too wide
	Timeouts bool `mapstructure:"timeouts"`

	// whether to zstd compress exports
	Compress bool `mapstructure:"compress"`
}

// LogConfig is settings for logging
type LogConfig struct {
	// one of debug, info, warn or error
	Level string `mapstructure:"level"`
}

// MetricsConfig is settings for metrics
type MetricsConfig struct {
	// whether to print metrics once assembly completes
	Enabled bool `mapstructure:"enabled"`
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file and those
// available from the command line
type Config struct {
	Assembly      AssemblyConfig      `mapstructure:"assembly"`
	Evidence      EvidenceConfig      `mapstructure:"evidence"`
	Visualisation VisualisationConfig `mapstructure:"visualisation"`
	Log           LogConfig           `mapstructure:"log"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// SetDefaults registers the default of every setting on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("assembly.k", 25)
	v.SetDefault("assembly.max-subgraph-fragment-width", 6.0)
	v.SetDefault("assembly.max-base-mismatch-for-collapse", 2)
	v.SetDefault("assembly.collapse-bubbles-only", true)
	v.SetDefault("assembly.max-collapse-operations", 250000)
	v.SetDefault("assembly.validate", false)
	v.SetDefault("evidence.max-concordant-fragment-size", 600)
	v.SetDefault("visualisation.directory", "")
	v.SetDefault("visualisation.all", false)
	v.SetDefault("visualisation.timeouts", true)
	v.SetDefault("visualisation.compress", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", false)
}

// New returns a Config populated by Viper settings (either from a settings
// file and/or command line arguments) and checks it
func New(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unable to decode settings: %w", err)
	}
	return c, c.Validate()
}

// Validate reports the first unusable setting
func (c Config) Validate() error {
	if err := kmer.ValidK(c.Assembly.K); err != nil {
		return fmt.Errorf("assembly.k %d: %w", c.Assembly.K, err)
	}
	if c.Assembly.MaxSubgraphFragmentWidth <= 0 {
		return fmt.Errorf("assembly.max-subgraph-fragment-width must be positive, got %v", c.Assembly.MaxSubgraphFragmentWidth)
	}
	if c.Assembly.MaxBaseMismatchForCollapse < 0 {
		return fmt.Errorf("assembly.max-base-mismatch-for-collapse must not be negative, got %d", c.Assembly.MaxBaseMismatchForCollapse)
	}
	if c.Assembly.MaxCollapseOperations < 0 {
		return fmt.Errorf("assembly.max-collapse-operations must not be negative, got %d", c.Assembly.MaxCollapseOperations)
	}
	if c.Evidence.MaxConcordantFragmentSize <= 0 {
		return fmt.Errorf("evidence.max-concordant-fragment-size must be positive, got %d", c.Evidence.MaxConcordantFragmentSize)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Params are the assembler settings for breakends of one direction
func (c Config) Params(direction evidence.Direction) assembly.Params {
	return assembly.Params{
		K:                          c.Assembly.K,
		Direction:                  direction,
		MaxSubgraphFragmentWidth:   c.Assembly.MaxSubgraphFragmentWidth,
		MaxBaseMismatchForCollapse: c.Assembly.MaxBaseMismatchForCollapse,
		CollapseBubblesOnly:        c.Assembly.CollapseBubblesOnly,
		MaxCollapseOperations:      c.Assembly.MaxCollapseOperations,
	}
}

// Source is the evidence library described by the settings
func (c Config) Source() evidence.Source {
	return evidence.FragmentSize(c.Evidence.MaxConcordantFragmentSize)
}

// Exporter is where subgraph snapshots go: files when a visualisation
// directory is set, nowhere otherwise
func (c Config) Exporter() export.Exporter {
	if c.Visualisation.Directory == "" {
		return export.Nop{}
	}
	return &export.Files{
		Directory: c.Visualisation.Directory,
		All:       c.Visualisation.All,
		Timeouts:  c.Visualisation.Timeouts,
		Compress:  c.Visualisation.Compress,
	}
}

// Logger builds a production logger at the configured level, or at debug
// level when verbose
func (c Config) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}
