package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/fancybread-com/cursor-plans/internal/types"
	"github.com/fancybread-com/cursor-plans/internal/util"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	// Load reads the config file at path. The file must exist.
	Load(path string) (*Config, error)
	// LoadWithDefaults reads the config file at path, falling back to the
	// built-in defaults when the file does not exist. Environment
	// overrides apply either way.
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
				fmt.Sprintf("malformed config file %s", path), err)
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	return l.finish(v)
}

// LoadWithDefaults loads configuration from the specified file path. A
// missing file is not an error; defaults and DEVPLAN_* variables still
// apply.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return l.finish(newViper())
	}
	return l.Load(path)
}

// finish unmarshals, interpolates, and validates whatever v has
// accumulated from defaults, file, and environment.
func (l *viperConfigLoader) finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	interpolateConfig(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}

	// Expansion cleans paths, so it runs after validation to keep shape
	// checks (like a trailing slash on plan_file) observable.
	if err := expandConfigPaths(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViper builds a viper instance with every known key defaulted, so
// DEVPLAN_* environment variables override keys even when no config file
// exists.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	def := DefaultConfig()
	v.SetDefault("state_dir", def.StateDir)
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("plan_file", def.PlanFile)
	v.SetDefault("strict_mode", def.StrictMode)
	v.SetDefault("ignore_patterns", def.IgnorePatterns)
	v.SetDefault("validation.standards_hook", def.Validation.StandardsHook)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetEnvPrefix("DEVPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// interpolateConfig expands ${VAR_NAME} references in string values, so
// paths like "state_dir: ${XDG_STATE_HOME}/devplan" resolve at load time.
func interpolateConfig(cfg *Config) {
	cfg.StateDir = interpolateString(cfg.StateDir)
	cfg.DatabasePath = interpolateString(cfg.DatabasePath)
	cfg.PlanFile = interpolateString(cfg.PlanFile)
	for i := range cfg.IgnorePatterns {
		cfg.IgnorePatterns[i] = interpolateString(cfg.IgnorePatterns[i])
	}
	cfg.Validation.StandardsHook = interpolateString(cfg.Validation.StandardsHook)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
}

// expandConfigPaths expands a leading tilde in the path-valued fields.
// Ignore patterns are globs, not paths, and are left alone.
func expandConfigPaths(cfg *Config) error {
	for _, field := range []struct {
		name string
		p    *string
	}{
		{"state_dir", &cfg.StateDir},
		{"database_path", &cfg.DatabasePath},
		{"plan_file", &cfg.PlanFile},
	} {
		expanded, err := util.ExpandPath(*field.p)
		if err != nil {
			return types.WrapError(types.CONFIG_LOAD_FAILED,
				fmt.Sprintf("cannot expand %s %q", field.name, *field.p), err)
		}
		*field.p = expanded
	}
	return nil
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with the environment variable
// value. Unknown references are left as-is.
func interpolateString(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}
