// Package config loads this tool's configuration from flags, environment,
// and an optional config file, the way the reference service's
// internal/config/config.go did for its AWS/DynamoDB settings, but bound
// through viper since this is the repo where that dependency actually gets
// wired in (see DESIGN.md).
package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the settings the CLI needs for a verify/rebuild run.
type Config struct {
	LogLevel string
	ShardDir string
	KeyHex   string
}

// LoadConfig binds flags, NEBULA_-prefixed environment variables, and an
// optional config.yaml in the working directory, in that precedence order,
// and returns the resolved Config.
func LoadConfig(configPath string, cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEBULA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("log-level", "info")
	v.SetDefault("shard-dir", "")
	v.SetDefault("key-hex", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, err
		}
	}

	if cmd != nil {
		_ = v.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))
		_ = v.BindPFlag("shard-dir", cmd.PersistentFlags().Lookup("shard-dir"))
	}

	return &Config{
		LogLevel: v.GetString("log-level"),
		ShardDir: v.GetString("shard-dir"),
		KeyHex:   v.GetString("key-hex"),
	}, nil
}
