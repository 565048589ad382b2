package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"iecsize/internal/dirs"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Jobs     int    `mapstructure:"jobs" validate:"gte=1,lte=256"`
	NoUI     bool   `mapstructure:"no_ui"`
	Textfile string `mapstructure:"textfile"`
}

// flagKeys maps CLI flag names to viper keys.
var flagKeys = map[string]string{
	"verbose":   "verbose",
	"log-level": "log_level",
	"jobs":      "jobs",
	"no-ui":     "no_ui",
	"textfile":  "textfile",
}

var (
	validate *validator.Validate
	once     sync.Once
)

// Init wires Viper with config paths, env, and defaults, then reads the
// config file if one exists. A missing config file is not an error.
func Init(v *viper.Viper) error {
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("jobs", 2)
	v.SetDefault("no_ui", false)
	v.SetDefault("textfile", "")

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: IECSIZE_*
	v.SetEnvPrefix("IECSIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// BindFlags binds every known flag present in fs to its viper key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unable to decode config: %w", err)
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	if s.Verbose && s.LogLevel != "debug" {
		s.LogLevel = "debug"
	}
	if err := Validate(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Report config keys rather than Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks s and returns a readable error listing every bad key.
func Validate(s Settings) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s %s", e.Field(), getErrorMessage(e)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s (got %v)", e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("must not exceed %s (got %v)", e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %q)", e.Param(), e.Value())
	default:
		return fmt.Sprintf("failed %q validation", e.Tag())
	}
}
