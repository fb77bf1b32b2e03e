package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const envPrefix = "DASH"

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Sheet    string       `mapstructure:"sheet"`
	Server   ServerConfig `mapstructure:"server"`
	CSV      CSVConfig    `mapstructure:"csv"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CSVConfig struct {
	Encoding string `mapstructure:"encoding"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"sheet":     "sheet",
	"addr":      "server.addr",
	"encoding":  "csv.encoding",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("sheet", "")
	v.SetDefault("server.addr", "127.0.0.1:3000")
	v.SetDefault("csv.encoding", "utf-8")
}

// Build loads configuration from, in increasing priority: defaults, the
// config file, DASH_* environment variables (a .env file is read first) and
// the flags that were set on the command line.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	return &cfg, nil
}

// Level returns the configured log level, info when unset.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
