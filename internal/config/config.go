package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/filter"
	"github.com/ikudjoi/fluentmigrator/internal/source"
)

// Source kinds
const (
	// SourceDirectory reads scripts from source.path
	SourceDirectory = "directory"
	// SourceGlobal uses the migrations registered in the running binary
	SourceGlobal = "global"
)

// EnvPrefix prefixes every environment variable, e.g. FM_FILTER_NAMESPACE
const EnvPrefix = "FM"

// DefaultConfigName is looked up in the working directory when no file is given
const DefaultConfigName = "fluentmigrator"

// Config holds the application configuration
type Config struct {
	Filter struct {
		Namespace        string   `mapstructure:"namespace"`
		NestedNamespaces bool     `mapstructure:"nested_namespaces"`
		Tags             []string `mapstructure:"tags"`
	} `mapstructure:"filter"`
	Source struct {
		Kind string `mapstructure:"kind"` // directory or global
		Path string `mapstructure:"path"` // Root of the {backend}/{connection} script tree
	} `mapstructure:"source"`
	Conventions struct {
		CaseInsensitiveTags bool `mapstructure:"case_insensitive_tags"`
	} `mapstructure:"conventions"`
	Server struct {
		HTTPPort string `mapstructure:"http_port"`
		APIToken string `mapstructure:"api_token"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("filter.namespace", "")
	v.SetDefault("filter.nested_namespaces", false)
	v.SetDefault("filter.tags", []string{})
	v.SetDefault("source.kind", SourceDirectory)
	v.SetDefault("source.path", "./migrations")
	v.SetDefault("conventions.case_insensitive_tags", false)
	v.SetDefault("server.http_port", "7070")
	v.SetDefault("server.api_token", "")
	v.SetDefault("log_level", "info")
}

// Load reads configuration from defaults, an optional YAML file and FM_*
// environment variables, in increasing order of precedence. With an empty
// path, ./fluentmigrator.yaml is used if it exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Filter.Tags = normalizeTags(cfg.Filter.Tags)
	cfg.Source.Kind = strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	if _, err := cfg.MigrationSource(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MigrationSource returns the source selected by source.kind
func (c *Config) MigrationSource() (source.Source, error) {
	switch c.Source.Kind {
	case SourceDirectory, "":
		return source.NewDirectory(c.Source.Path), nil
	case SourceGlobal:
		return source.Global, nil
	default:
		return nil, fmt.Errorf("unknown source.kind %q (expected %s or %s)", c.Source.Kind, SourceDirectory, SourceGlobal)
	}
}

// FilterOptions returns the migration filter described by the configuration
func (c *Config) FilterOptions() filter.Options {
	return filter.Options{
		Namespace:        c.Filter.Namespace,
		NestedNamespaces: c.Filter.NestedNamespaces,
		Tags:             append([]string(nil), c.Filter.Tags...),
	}
}

// ConventionOptions returns the options for the default conventions
func (c *Config) ConventionOptions() []conventions.Option {
	var opts []conventions.Option
	if c.Conventions.CaseInsensitiveTags {
		opts = append(opts, conventions.WithCaseInsensitiveTags())
	}
	return opts
}

// ValidateServer checks the settings the HTTP server needs
func (c *Config) ValidateServer() error {
	if c.Server.APIToken == "" {
		return fmt.Errorf("%s_SERVER_API_TOKEN (server.api_token) is required", EnvPrefix)
	}
	if c.Server.HTTPPort == "" {
		return fmt.Errorf("server.http_port must not be empty")
	}
	return nil
}

// normalizeTags trims tags, drops empty ones and splits comma-joined values
func normalizeTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
