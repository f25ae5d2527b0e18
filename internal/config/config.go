// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Log     LogConfig
	Parser  ParserConfig
	Metrics MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type ParserConfig struct {
	// Workers caps concurrent document parses; 0 means one per CPU.
	Workers              int
	LineTolerance        float64
	RowPaddingMultiplier float64
	DefaultRowPadding    float64
}

type MetricsConfig struct {
	// File receives a text exposition dump after each run; empty disables it.
	File string
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, then builds the config. Missing files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := &Config{
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("PARSER_LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("PARSER_LOG_FORMAT", "text")),
		},
		Parser: ParserConfig{
			Workers:              getEnvAsInt("PARSER_WORKERS", 0, &errs),
			LineTolerance:        getEnvAsFloat("PARSER_LINE_TOLERANCE", 3, &errs),
			RowPaddingMultiplier: getEnvAsFloat("PARSER_ROW_PADDING_MULTIPLIER", 3, &errs),
			DefaultRowPadding:    getEnvAsFloat("PARSER_DEFAULT_ROW_PADDING", 50, &errs),
		},
		Metrics: MetricsConfig{
			File: getEnv("PARSER_METRICS_FILE", ""),
		},
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("PARSER_LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if c.Parser.Workers < 0 {
		return fmt.Errorf("PARSER_WORKERS must not be negative, got %d", c.Parser.Workers)
	}
	if c.Parser.LineTolerance <= 0 {
		return fmt.Errorf("PARSER_LINE_TOLERANCE must be positive, got %v", c.Parser.LineTolerance)
	}
	if c.Parser.RowPaddingMultiplier <= 0 || c.Parser.DefaultRowPadding <= 0 {
		return errors.New("row padding settings must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return n
}

func getEnvAsFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", key, value))
		return defaultValue
	}
	return f
}
