package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bdahlka1/cec.ai-demo/constants"
)

// EnvPrefix is the prefix for environment overrides (BIDSCORE_SCORING_THRESHOLD, ...).
const EnvPrefix = "BIDSCORE"

// Config holds all application configuration
type Config struct {
	Scoring ScoringConfig `mapstructure:"scoring" yaml:"scoring"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Harness HarnessConfig `mapstructure:"harness" yaml:"harness"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ScoringConfig holds the rubric and decision settings
type ScoringConfig struct {
	RulesPath      string  `mapstructure:"rules_path" yaml:"rules_path"`
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold"`
	SnippetLength  int     `mapstructure:"snippet_length" yaml:"snippet_length"`
	FallbackLength int     `mapstructure:"fallback_length" yaml:"fallback_length"`
}

// ExtractConfig holds document text extraction settings
type ExtractConfig struct {
	Pdftotext string        `mapstructure:"pdftotext" yaml:"pdftotext"`
	MaxPages  int           `mapstructure:"max_pages" yaml:"max_pages"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	OCR       bool          `mapstructure:"ocr" yaml:"ocr"` // recognize PDFs without a text layer
	Pdftoppm  string        `mapstructure:"pdftoppm" yaml:"pdftoppm"`
	Tesseract string        `mapstructure:"tesseract" yaml:"tesseract"`
	OCRLang   string        `mapstructure:"ocr_lang" yaml:"ocr_lang"`
	OCRDPI    int           `mapstructure:"ocr_dpi" yaml:"ocr_dpi"`
}

// HarnessConfig holds evaluation harness settings
type HarnessConfig struct {
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
	Manifest       string        `mapstructure:"manifest" yaml:"manifest"`
	RFPDir         string        `mapstructure:"rfp_dir" yaml:"rfp_dir"`
	ScorecardDir   string        `mapstructure:"scorecard_dir" yaml:"scorecard_dir"`
	Workers        int           `mapstructure:"workers" yaml:"workers"`
	ProjectTimeout time.Duration `mapstructure:"project_timeout" yaml:"project_timeout"`
}

// OutputConfig holds scorecard rendering settings
type OutputConfig struct {
	TemplatePath string `mapstructure:"template_path" yaml:"template_path"`
	Dir          string `mapstructure:"dir" yaml:"dir"`
	Location     string `mapstructure:"location" yaml:"location"`
}

// ArchiveConfig holds the optional run history store
type ArchiveConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"` // sqlite path or postgres:// URL; empty disables
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text | json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			RulesPath:      "Bid_Scoring_Calibration.xlsx",
			Threshold:      constants.DefaultThreshold,
			SnippetLength:  constants.DefaultSnippetLength,
			FallbackLength: constants.DefaultFallbackLength,
		},
		Extract: ExtractConfig{
			Pdftotext: "pdftotext",
			Timeout:   2 * time.Minute,
			CacheTTL:  30 * time.Minute,
			Pdftoppm:  "pdftoppm",
			Tesseract: "tesseract",
			OCRLang:   "eng",
			OCRDPI:    300,
		},
		Harness: HarnessConfig{
			DataDir:        "./data",
			Workers:        1,
			ProjectTimeout: 5 * time.Minute,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// NewViper builds a viper instance seeded with defaults, the config file and BIDSCORE_* env.
// An explicit path must exist; the default search path ($HOME/.bidscore/config.yaml) is optional.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bidscore"))
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// ConfigFromViper decodes and validates a Config
func ConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from defaults, an optional file, and the environment
func LoadConfig(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return ConfigFromViper(v)
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scoring.rules_path", d.Scoring.RulesPath)
	v.SetDefault("scoring.threshold", d.Scoring.Threshold)
	v.SetDefault("scoring.snippet_length", d.Scoring.SnippetLength)
	v.SetDefault("scoring.fallback_length", d.Scoring.FallbackLength)

	v.SetDefault("extract.pdftotext", d.Extract.Pdftotext)
	v.SetDefault("extract.max_pages", d.Extract.MaxPages)
	v.SetDefault("extract.timeout", d.Extract.Timeout)
	v.SetDefault("extract.cache_ttl", d.Extract.CacheTTL)
	v.SetDefault("extract.ocr", d.Extract.OCR)
	v.SetDefault("extract.pdftoppm", d.Extract.Pdftoppm)
	v.SetDefault("extract.tesseract", d.Extract.Tesseract)
	v.SetDefault("extract.ocr_lang", d.Extract.OCRLang)
	v.SetDefault("extract.ocr_dpi", d.Extract.OCRDPI)

	v.SetDefault("harness.data_dir", d.Harness.DataDir)
	v.SetDefault("harness.manifest", d.Harness.Manifest)
	v.SetDefault("harness.rfp_dir", d.Harness.RFPDir)
	v.SetDefault("harness.scorecard_dir", d.Harness.ScorecardDir)
	v.SetDefault("harness.workers", d.Harness.Workers)
	v.SetDefault("harness.project_timeout", d.Harness.ProjectTimeout)

	v.SetDefault("output.template_path", d.Output.TemplatePath)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.location", d.Output.Location)

	v.SetDefault("archive.dsn", d.Archive.DSN)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// ManifestPath resolves the harness manifest, defaulting to <data_dir>/mapping.csv
func (h HarnessConfig) ManifestPath() string {
	if h.Manifest != "" {
		return h.Manifest
	}
	return filepath.Join(h.DataDir, "mapping.csv")
}

// RFPPath resolves the directory holding historical RFP documents
func (h HarnessConfig) RFPPath() string {
	if h.RFPDir != "" {
		return h.RFPDir
	}
	return filepath.Join(h.DataDir, "rfps")
}

// ScorecardPath resolves the directory holding historical scorecards
func (h HarnessConfig) ScorecardPath() string {
	if h.ScorecardDir != "" {
		return h.ScorecardDir
	}
	return filepath.Join(h.DataDir, "scorecards")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("scoring.threshold", c.Scoring.Threshold, Finite, NonNegative)
	v.Field("scoring.snippet_length", c.Scoring.SnippetLength, Positive)
	v.Field("scoring.fallback_length", c.Scoring.FallbackLength, Positive)
	v.Field("extract.pdftotext", c.Extract.Pdftotext, Required)
	v.Field("extract.max_pages", c.Extract.MaxPages, NonNegative)
	v.Field("extract.ocr_dpi", c.Extract.OCRDPI, Positive)
	v.Field("harness.workers", c.Harness.Workers, Positive)
	v.Field("log.level", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error"))
	v.Field("log.format", strings.ToLower(c.Log.Format), OneOf("text", "json"))
	if v.HasErrors() {
		return ConfigurationError("invalid configuration", v.Error())
	}
	return nil
}
