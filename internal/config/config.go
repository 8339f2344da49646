package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. DOCOUTLINE_INPUT_DIR or
// DOCOUTLINE_SERVER_PORT.
const EnvPrefix = "DOCOUTLINE"

// ConfigName is the config file base name searched in . and ~/.docoutline.
const ConfigName = "docoutline"

type Config struct {
	// Batch locations
	InputDir    string `mapstructure:"input_dir" yaml:"input_dir"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	Workers     int    `mapstructure:"workers" yaml:"workers"`
	CleanOutput bool   `mapstructure:"clean_output" yaml:"clean_output"`

	PDF     PDFConfig     `mapstructure:"pdf" yaml:"pdf"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type PDFConfig struct {
	Preflight      bool `mapstructure:"preflight" yaml:"preflight"`
	FallbackMutool bool `mapstructure:"fallback_mutool" yaml:"fallback_mutool"`
}

type OutputConfig struct {
	Validate bool `mapstructure:"validate" yaml:"validate"`
}

type ExtractConfig struct {
	ClusterTolerance float64 `mapstructure:"cluster_tolerance" yaml:"cluster_tolerance"`
	MaxLevels        int     `mapstructure:"max_levels" yaml:"max_levels"`
	TitleTolerance   float64 `mapstructure:"title_tolerance" yaml:"title_tolerance"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port" yaml:"port"`
	APIKey         string        `mapstructure:"api_key" yaml:"api_key"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	Workers        int           `mapstructure:"workers" yaml:"workers"`
	MaxQueueSize   int           `mapstructure:"max_queue_size" yaml:"max_queue_size"`
	JobTTL         time.Duration `mapstructure:"job_ttl" yaml:"job_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		InputDir:    "/app/input",
		OutputDir:   "/app/output",
		Workers:     1,
		CleanOutput: true,
		PDF: PDFConfig{
			Preflight:      true,
			FallbackMutool: false,
		},
		Output: OutputConfig{Validate: true},
		Extract: ExtractConfig{
			ClusterTolerance: 0.5,
			MaxLevels:        3,
			TitleTolerance:   0.01,
		},
		Server: ServerConfig{
			Port:           "8090",
			MaxUploadBytes: 52428800, // 50MB
			Workers:        2,
			MaxQueueSize:   100,
			JobTTL:         1 * time.Hour,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads defaults, then the config file, then DOCOUTLINE_* environment
// variables. An explicit cfgFile must exist; the searched default file is
// optional.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.docoutline")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("clean_output", d.CleanOutput)

	v.SetDefault("pdf.preflight", d.PDF.Preflight)
	v.SetDefault("pdf.fallback_mutool", d.PDF.FallbackMutool)

	v.SetDefault("output.validate", d.Output.Validate)

	v.SetDefault("extract.cluster_tolerance", d.Extract.ClusterTolerance)
	v.SetDefault("extract.max_levels", d.Extract.MaxLevels)
	v.SetDefault("extract.title_tolerance", d.Extract.TitleTolerance)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.workers", d.Server.Workers)
	v.SetDefault("server.max_queue_size", d.Server.MaxQueueSize)
	v.SetDefault("server.job_ttl", d.Server.JobTTL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return fmt.Errorf("input_dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Extract.ClusterTolerance <= 0 {
		return fmt.Errorf("extract.cluster_tolerance must be positive")
	}
	if c.Extract.TitleTolerance <= 0 {
		return fmt.Errorf("extract.title_tolerance must be positive")
	}
	if c.Extract.MaxLevels < 1 || c.Extract.MaxLevels > 3 {
		return fmt.Errorf("extract.max_levels must be between 1 and 3, got %d", c.Extract.MaxLevels)
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("server.workers must be at least 1, got %d", c.Server.Workers)
	}
	if c.Server.MaxQueueSize < 1 {
		return fmt.Errorf("server.max_queue_size must be at least 1, got %d", c.Server.MaxQueueSize)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// Logger builds the slog logger described by the log section.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# docoutline configuration
# Every key can be overridden with a DOCOUTLINE_ environment variable,
# e.g. DOCOUTLINE_INPUT_DIR or DOCOUTLINE_SERVER_PORT.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
