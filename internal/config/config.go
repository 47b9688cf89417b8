package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL      string `mapstructure:"database_url"`
	JWTSecret        string `mapstructure:"jwt_secret"`
	Port             string `mapstructure:"port"`
	CORSOrigin       string `mapstructure:"cors_origin"`
	MigrationsDir    string `mapstructure:"migrations_dir"`
	StrictValidation bool   `mapstructure:"strict_validation"`
	DBMaxConns       int32  `mapstructure:"db_max_conns"`
	InMemory         bool   `mapstructure:"in_memory"`
}

// flagKeys maps config keys to the command line flags that may set them.
var flagKeys = map[string]string{
	"port":              "port",
	"migrations_dir":    "migrations-dir",
	"strict_validation": "strict",
	"in_memory":         "in-memory",
}

// Origins splits the comma separated CORS_ORIGIN value.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load reads defaults, an optional enkrateia.{yaml,json} file in the working
// directory, environment variables (DATABASE_URL, JWT_SECRET, ...) and
// finally any flags in flags that were set explicitly. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("port", "8080")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("strict_validation", false)
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("cors_origin", "http://localhost:5173")
	v.SetDefault("in_memory", false)

	v.SetConfigName("enkrateia")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" && !cfg.InMemory {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}
