// Package config loads the scarepick configuration file.
//
// Values are resolved in order: built-in defaults, then the YAML file.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	scerrors "github.com/felixgeelhaar/scarepick/internal/errors"
)

// DefaultPath is where the config file is looked up when --config is not set.
const DefaultPath = "scarepick.yaml"

// Config is the complete application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Convert   ConvertConfig   `yaml:"convert"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DataConfig points at the quiz data files. Empty paths select the
// embedded default data set.
type DataConfig struct {
	Questions string `yaml:"questions,omitempty"`
	Movies    string `yaml:"movies,omitempty"`
	Root      string `yaml:"root" validate:"required"`
	Watch     bool   `yaml:"watch"`
}

// ConvertConfig holds the stand-in values the converters use when the
// spreadsheet has nothing better.
type ConvertConfig struct {
	DefaultYear       int    `yaml:"default_year" validate:"gte=1888,lte=2100"`
	DefaultRuntime    string `yaml:"default_runtime" validate:"required"`
	PosterURLTemplate string `yaml:"poster_url_template" validate:"required,contains=%s"`
}

// ServerConfig configures `scarepick serve`.
type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	SessionTTL      time.Duration `yaml:"session_ttl" validate:"gt=0"`
	MaxSessions     int           `yaml:"max_sessions" validate:"gt=0"`
	CORSOrigins     []string      `yaml:"cors_origins" validate:"dive,required"`
}

// LogConfig configures the default logger. An empty format logs text for
// interactive commands and JSON for serve.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=text json"`
}

// TelemetryConfig configures OpenTelemetry tracing. Spans are only
// exported when an endpoint is set.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint,omitempty" validate:"omitempty,hostname_port"`
	Insecure    bool    `yaml:"insecure"`
	Environment string  `yaml:"environment" validate:"required"`
	SampleRate  float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// FormatFor returns the configured format, or fallback when none is set.
func (c LogConfig) FormatFor(fallback string) string {
	if c.Format == "" {
		return fallback
	}
	return c.Format
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Root: "1",
		},
		Convert: ConvertConfig{
			DefaultYear:       2000,
			DefaultRuntime:    "95 min",
			PosterURLTemplate: "https://via.placeholder.com/300x450/1a1a1a/ffffff?text=%s",
		},
		Server: ServerConfig{
			Address:         "0.0.0.0:8080",
			ShutdownTimeout: 30 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			SessionTTL:      30 * time.Minute,
			MaxSessions:     10000,
			CORSOrigins:     []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Environment: "development",
			SampleRate:  1.0,
		},
	}
}

// Load reads the config file at path on top of the defaults. A missing
// file is not an error when optional is true.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, scerrors.Wrap(scerrors.ErrCodeConfigUnreadable, fmt.Sprintf("cannot read config file %s", path), err)
	}

	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays YAML data onto cfg and validates the result.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return scerrors.Wrap(scerrors.ErrCodeConfigUnreadable, "cannot parse config file", err)
	}
	return cfg.Validate()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field constraint and reports them together.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return scerrors.NewConfigInvalidError(strings.Join(msgs, "; "))
		}
		return scerrors.NewConfigInvalidError(err.Error())
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	case "contains":
		return fmt.Sprintf("%s must contain %q", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
