// Package config provides configuration management for the chart digitizer.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/chart-digitizer-mcp/internal/axis"
	"github.com/ironsheep/chart-digitizer-mcp/internal/digitizer"
	"github.com/ironsheep/chart-digitizer-mcp/internal/legend"
	"github.com/ironsheep/chart-digitizer-mcp/internal/series"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// CHART_DIGITIZER_LOG_LEVEL.
const EnvPrefix = "CHART_DIGITIZER"

// Config holds all configuration settings.
// Configuration precedence: CLI flags > Environment variables > Config file > Defaults
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// LogFormat is "console" or "json"
	LogFormat string

	// LogFile is an optional file receiving a copy of the log output
	LogFile string

	// OutputFormat is the document format for reconstructed diagrams (json, yaml)
	OutputFormat string

	// OCRLanguage is the Tesseract language list, e.g. "eng" or "eng+deu"
	OCRLanguage string

	// Workers bounds the number of diagrams reconstructed concurrently in batch mode
	Workers int

	// Heuristics
	LogStepTolerance   float64
	ValueDecimals      int
	PixelBucket        float64
	DistanceRatio      float64
	FallbackDistance   float64
	ContainmentRatio   float64
	MergeVerticalRatio float64
	MergeMinGap        float64
	MergeMaxGap        float64
}

// Load reads configuration from defaults, the config file, the environment
// and, when flags is non-nil, any flags the user set explicitly.
//
// An empty configFile looks for $HOME/.chart-digitizer.yaml; a missing file
// is not an error.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".chart-digitizer")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	config := &Config{
		LogLevel:           v.GetString("log-level"),
		LogFormat:          v.GetString("log-format"),
		LogFile:            v.GetString("log-file"),
		OutputFormat:       v.GetString("format"),
		OCRLanguage:        v.GetString("ocr-language"),
		Workers:            v.GetInt("workers"),
		LogStepTolerance:   v.GetFloat64("log-step-tolerance"),
		ValueDecimals:      v.GetInt("value-decimals"),
		PixelBucket:        v.GetFloat64("pixel-bucket"),
		DistanceRatio:      v.GetFloat64("distance-ratio"),
		FallbackDistance:   v.GetFloat64("fallback-distance"),
		ContainmentRatio:   v.GetFloat64("containment-ratio"),
		MergeVerticalRatio: v.GetFloat64("merge-vertical-ratio"),
		MergeMinGap:        v.GetFloat64("merge-min-gap"),
		MergeMaxGap:        v.GetFloat64("merge-max-gap"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
	v.SetDefault("log-file", "")
	v.SetDefault("format", "json")
	v.SetDefault("ocr-language", "eng")
	v.SetDefault("workers", runtime.NumCPU())

	d := digitizer.DefaultOptions()
	v.SetDefault("log-step-tolerance", d.Axis.LogStepTolerance)
	v.SetDefault("value-decimals", d.Axis.ValueDecimals)
	v.SetDefault("pixel-bucket", d.Axis.PixelBucket)
	v.SetDefault("distance-ratio", d.Series.DistanceRatio)
	v.SetDefault("fallback-distance", d.Series.FallbackDistance)
	v.SetDefault("containment-ratio", d.Legend.ContainmentRatio)
	v.SetDefault("merge-vertical-ratio", d.Legend.MergeVerticalRatio)
	v.SetDefault("merge-min-gap", d.Legend.MergeMinGap)
	v.SetDefault("merge-max-gap", d.Legend.MergeMaxGap)
}

// Validate checks that the configuration is valid and internally consistent
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log-format must be console or json, got %q", c.LogFormat)
	}

	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("format must be json or yaml, got %q", c.OutputFormat)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if c.LogStepTolerance <= 0 {
		return fmt.Errorf("log-step-tolerance must be positive")
	}
	if c.ValueDecimals < 0 {
		return fmt.Errorf("value-decimals cannot be negative")
	}
	if c.PixelBucket <= 0 {
		return fmt.Errorf("pixel-bucket must be positive")
	}
	if c.DistanceRatio <= 0 || c.FallbackDistance <= 0 {
		return fmt.Errorf("distance-ratio and fallback-distance must be positive")
	}
	if c.ContainmentRatio < 0 || c.ContainmentRatio > 1 {
		return fmt.Errorf("containment-ratio must be within [0, 1]")
	}
	if c.MergeMinGap >= c.MergeMaxGap {
		return fmt.Errorf("merge-min-gap must be below merge-max-gap")
	}

	return nil
}

// Options converts the heuristic settings into reconstruction options.
func (c *Config) Options() digitizer.Options {
	return digitizer.Options{
		Axis: axis.Options{
			LogStepTolerance: c.LogStepTolerance,
			ValueDecimals:    c.ValueDecimals,
			PixelBucket:      c.PixelBucket,
		},
		Series: series.Options{
			DistanceRatio:    c.DistanceRatio,
			FallbackDistance: c.FallbackDistance,
		},
		Legend: legend.Options{
			ContainmentRatio:   c.ContainmentRatio,
			MergeVerticalRatio: c.MergeVerticalRatio,
			MergeMinGap:        c.MergeMinGap,
			MergeMaxGap:        c.MergeMaxGap,
		},
	}
}
