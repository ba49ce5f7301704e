package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Stash   StashConfig   `mapstructure:"stash"`
	Log     LogConfig     `mapstructure:"log"`
	Sidecar SidecarConfig `mapstructure:"sidecar"`
	Image   ImageConfig   `mapstructure:"image"`
	Create  CreateConfig  `mapstructure:"create"`
	Search  SearchConfig  `mapstructure:"search"`
	Server  ServerConfig  `mapstructure:"server"`
	Journal JournalConfig `mapstructure:"journal"`

	DryRun        bool `mapstructure:"dry_run"`
	SkipOrganized bool `mapstructure:"skip_organized"`
	// Only nfo-sourced records may flip the organized flag.
	SetOrganized       bool     `mapstructure:"set_organized"`
	SetOrganizedOnlyIf []string `mapstructure:"set_organized_only_if"`

	// Record fields that are never written to the scene.
	Blacklist []string `mapstructure:"blacklist"`
	// Tags that are never looked up nor created (case-insensitive).
	BlacklistedTags []string `mapstructure:"blacklisted_tags"`

	// When false, only fields currently empty on the scene are updated.
	OverrideValues bool `mapstructure:"override_values"`

	RegexConfigName string `mapstructure:"regex_config_name"`
}

type StashConfig struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SidecarConfig struct {
	Extension string `mapstructure:"extension"`
}

type ImageConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type CreateConfig struct {
	Performers bool `mapstructure:"performers"`
	Studio     bool `mapstructure:"studio"`
	Tags       bool `mapstructure:"tags"`
	Movie      bool `mapstructure:"movie"`
}

type SearchConfig struct {
	PerformerAliases bool `mapstructure:"performer_aliases"`
	StudioAliases    bool `mapstructure:"studio_aliases"`
	// Single-word performer names never match via alias when set, only
	// via direct name. Avoids false positives on common short names.
	IgnoreSingleNameAliases bool `mapstructure:"ignore_single_name_aliases"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug or release
}

type JournalConfig struct {
	// SQLite file for the run history. Empty disables the journal.
	Path string `mapstructure:"path"`
}

// Load reads config.yaml (from configPath and the working directory) with
// NFOHOOK_* env overrides. A missing config file is fine, defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("stash.url", "http://localhost:9999/graphql")
	v.SetDefault("stash.api_key", "")
	v.SetDefault("stash.timeout_seconds", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("sidecar.extension", "nfo")
	v.SetDefault("image.timeout_seconds", 10)
	v.SetDefault("create.performers", true)
	v.SetDefault("create.studio", true)
	v.SetDefault("create.tags", true)
	v.SetDefault("create.movie", true)
	v.SetDefault("search.performer_aliases", true)
	v.SetDefault("search.studio_aliases", true)
	v.SetDefault("search.ignore_single_name_aliases", true)
	v.SetDefault("server.port", 9863)
	v.SetDefault("server.mode", "release")
	v.SetDefault("journal.path", "")
	v.SetDefault("dry_run", false)
	v.SetDefault("skip_organized", true)
	v.SetDefault("set_organized", true)
	v.SetDefault("set_organized_only_if",
		[]string{"title", "performers", "details", "date", "studio"})
	v.SetDefault("blacklist", []string{})
	v.SetDefault("blacklisted_tags", []string{})
	v.SetDefault("override_values", true)
	v.SetDefault("regex_config_name", "nfoSceneParser.json")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	// NFOHOOK_STASH_URL overrides stash.url, etc.
	v.SetEnvPrefix("NFOHOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
