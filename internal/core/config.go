// Package core contains the configuration and logging plumbing shared by
// every part of the server.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the server.
type Config struct {
	// Hostname or IP address on which the server will listen.
	Hostname string `mapstructure:"hostname"`
	// Port for the HTTP frontend.
	Port int `mapstructure:"port"`

	Logging struct {
		// Full path to the file to which logs will be written. Blank writes
		// to stdout.
		LogFilePath string `mapstructure:"log_file_path"`
		// Minimum level required for a log to be written. Options: debug,
		// info, warn, error.
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"logging"`

	Database struct {
		// Path of the sqlite database file holding the account table.
		Path string `mapstructure:"path"`
		// Enable database-level query logging.
		LoggingEnabled bool `mapstructure:"logging_enabled"`
	} `mapstructure:"database"`

	Bancho struct {
		// Seconds without a keep-alive before a session is reaped.
		PingTimeout int `mapstructure:"ping_timeout"`
		// Username the server bot appears under.
		BotName string `mapstructure:"bot_name"`
	} `mapstructure:"bancho"`
}

const envVarPrefix = "BANCHO"

// LoadConfig initializes Viper with the contents of the config file under
// configPath, allowing any nested key to be overridden through environment
// variables (e.g. database.path becomes BANCHO_DATABASE_PATH).
func LoadConfig(configPath string) (*Config, error) {
	viper.AddConfigPath(configPath)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("hostname", "0.0.0.0")
	viper.SetDefault("port", 5001)
	viper.SetDefault("logging.log_level", "info")
	viper.SetDefault("database.path", "bancho.db")
	viper.SetDefault("bancho.ping_timeout", 300)
	viper.SetDefault("bancho.bot_name", "banchobot")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file in %s: %w", configPath, err)
		}
		// No config file is fine; defaults and env vars carry it.
	}

	for _, k := range viper.AllKeys() {
		envVar := envVarPrefix + "_" + strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVar); err != nil {
			return nil, fmt.Errorf("binding %s to %s: %w", k, envVar, err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return config, nil
}

// ListenAddress returns the frontend's host:port listen address.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// PingTimeout returns the session liveness timeout as a duration.
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.Bancho.PingTimeout) * time.Second
}
