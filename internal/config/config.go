package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/abatilo/taskgate/internal/logging"
	"github.com/abatilo/taskgate/internal/task"
)

// EnvPrefix is the prefix for environment overrides, e.g. TASKGATE_IDS_SCHEME.
const EnvPrefix = "TASKGATE"

// Config represents the complete taskgate configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	IDs     IDConfig      `mapstructure:"ids"`
	Logging LoggingConfig `mapstructure:"logging"`
	Shell   ShellConfig   `mapstructure:"shell"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	// Format is "human" or "json"
	Format string `mapstructure:"format"`
}

// IDConfig controls task id generation
type IDConfig struct {
	// Scheme is "hash", "sequence" or "uuid"
	Scheme string `mapstructure:"scheme"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level"`
	// File is the log destination; empty means stderr
	File string `mapstructure:"file"`
}

// ShellConfig controls the interactive shell
type ShellConfig struct {
	Prompt string `mapstructure:"prompt"`
	// Summary reprints the task list after every mutation
	Summary bool `mapstructure:"summary"`
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Output:  OutputConfig{Format: "human"},
		IDs:     IDConfig{Scheme: string(task.IDSchemeHash)},
		Logging: LoggingConfig{Level: logging.LevelWarn},
		Shell:   ShellConfig{Prompt: "taskgate> ", Summary: false},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("ids.scheme", defaults.IDs.Scheme)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("shell.prompt", defaults.Shell.Prompt)
	viper.SetDefault("shell.summary", defaults.Shell.Summary)
}

// Init wires viper to the environment and an optional config file.
// An explicit path must exist; the default path may be absent.
func Init(path string) error {
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}

	viper.SetConfigFile(ConfigFile())
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
		return err
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &cfg, nil
}

// Validate checks every setting and returns all problems found.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: "must be one of " + strings.Join(ValidOutputFormats(), ", "),
		})
	}
	if !task.IsValidIDScheme(task.IDScheme(c.IDs.Scheme)) {
		errs = append(errs, ValidationError{
			Field:   "ids.scheme",
			Value:   c.IDs.Scheme,
			Message: "must be one of hash, sequence, uuid",
		})
	}
	if !slices.Contains(logging.ValidLevels(), strings.ToUpper(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of " + strings.Join(logging.ValidLevels(), ", "),
		})
	}

	return errs
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskgate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskgate"
	}
	return filepath.Join(home, ".config", "taskgate")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidOutputFormats returns the list of valid output.format values
func ValidOutputFormats() []string {
	return []string{"human", "json"}
}
