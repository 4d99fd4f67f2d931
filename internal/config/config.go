// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port         int `mapstructure:"port"`
	SyncInterval int `mapstructure:"sync_interval"` // minutes between notes sync attempts
	Database     struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Source struct {
		BaseURL string `mapstructure:"base_url"` // upstream scripture content API
	} `mapstructure:"source"`
	Notes struct {
		BaseURL string `mapstructure:"base_url"` // remote notes API
	} `mapstructure:"notes"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "LOGOS_" prefix.
	// e.g., LOGOS_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("LOGOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("sync_interval", 5)
	viper.SetDefault("database.path", "./logos.db")
	viper.SetDefault("source.base_url", "https://scripture.example.org/api/v1")
	viper.SetDefault("notes.base_url", "https://notes.example.org/api/v1")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
