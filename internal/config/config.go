// Package config loads the YAML run configuration used by the wbp CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Classifier kinds.
const (
	KindLogistic = "logistic"
	KindONNX     = "onnx"
)

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("config: invalid configuration")

// Paths names the input and output files of a run.
type Paths struct {
	Raw        string `yaml:"raw"`
	Segmented  string `yaml:"segmented"`
	Normalized string `yaml:"normalized"`
	NGrams     string `yaml:"ngrams"`
	Output     string `yaml:"output"`
}

// Classifier selects and tunes the boundary classifier.
type Classifier struct {
	Kind          string  `yaml:"kind"`
	ONNXModel     string  `yaml:"onnx_model,omitempty"`
	C             float64 `yaml:"c"`
	MaxIterations int     `yaml:"max_iterations"`
}

// Config is the complete run configuration. Numeric ranges are checked by
// the estimator; Validate covers what only the file layer knows about.
type Config struct {
	Paths      Paths      `yaml:"paths"`
	MaxN       int        `yaml:"max_n"`
	UsageRatio float64    `yaml:"usage_ratio"`
	Workers    int        `yaml:"workers"`
	RandomSeed int64      `yaml:"random_seed"`
	TestRatio  float64    `yaml:"test_ratio"`
	Marker     string     `yaml:"marker"`
	Dataset    string     `yaml:"dataset"`
	Classifier Classifier `yaml:"classifier"`
	LogLevel   string     `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MaxN:       4,
		UsageRatio: 0.1,
		Workers:    8,
		RandomSeed: 2018,
		TestRatio:  0.1,
		Marker:     "␣",
		Dataset:    "word_boundary",
		Classifier: Classifier{
			Kind:          KindLogistic,
			C:             1.0,
			MaxIterations: 100,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalid, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks marker, classifier and log level settings.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Marker) != 1 {
		return fmt.Errorf("%w: marker must be a single character, got %q", ErrInvalid, c.Marker)
	}
	switch c.Classifier.Kind {
	case KindLogistic:
		if c.Classifier.C <= 0 {
			return fmt.Errorf("%w: classifier.c must be positive", ErrInvalid)
		}
	case KindONNX:
		if c.Classifier.ONNXModel == "" {
			return fmt.Errorf("%w: classifier.onnx_model is required for kind %q", ErrInvalid, KindONNX)
		}
	default:
		return fmt.Errorf("%w: unknown classifier kind %q", ErrInvalid, c.Classifier.Kind)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// MarkerRune returns the configured boundary marker.
func (c *Config) MarkerRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Marker)
	return r
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return level, nil
}
