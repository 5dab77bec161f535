package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikudjoi/fluentmigrator/internal/filter"
	"github.com/ikudjoi/fluentmigrator/internal/source"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "", cfg.Filter.Namespace)
	require.False(t, cfg.Filter.NestedNamespaces)
	require.Empty(t, cfg.Filter.Tags)
	require.Equal(t, "./migrations", cfg.Source.Path)
	require.Equal(t, SourceDirectory, cfg.Source.Kind)
	require.Equal(t, "7070", cfg.Server.HTTPPort)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
filter:
  namespace: postgresql/core
  nested_namespaces: true
  tags: [prod, " eu "]
source:
  path: /srv/migrations
conventions:
  case_insensitive_tags: true
server:
  http_port: "8080"
  api_token: secret
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filter.Options{
		Namespace:        "postgresql/core",
		NestedNamespaces: true,
		Tags:             []string{"prod", "eu"},
	}, cfg.FilterOptions())
	require.Equal(t, "/srv/migrations", cfg.Source.Path)
	require.Len(t, cfg.ConventionOptions(), 1)
	require.Equal(t, "8080", cfg.Server.HTTPPort)
	require.Equal(t, "secret", cfg.Server.APIToken)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigName+".yaml"), []byte("filter:\n  namespace: etcd/metadata\n"), 0o644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "etcd/metadata", cfg.Filter.Namespace)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter:\n  namespace: from-file\n"), 0o644))

	t.Setenv("FM_FILTER_NAMESPACE", "from-env")
	t.Setenv("FM_FILTER_NESTED_NAMESPACES", "true")
	t.Setenv("FM_FILTER_TAGS", "prod,eu")
	t.Setenv("FM_SERVER_API_TOKEN", "token")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Filter.Namespace)
	require.True(t, cfg.Filter.NestedNamespaces)
	require.Equal(t, []string{"prod", "eu"}, cfg.Filter.Tags)
	require.Equal(t, "token", cfg.Server.APIToken)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		port    string
		wantErr bool
	}{
		{name: "valid", token: "secret", port: "7070"},
		{name: "missing token", port: "7070", wantErr: true},
		{name: "missing port", token: "secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Server.APIToken = tt.token
			cfg.Server.HTTPPort = tt.port
			err := cfg.ValidateServer()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, normalizeTags([]string{" a ,b", "", "c"}))
	require.Equal(t, []string{}, normalizeTags(nil))
}

func TestMigrationSource(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		want    func(t *testing.T, src source.Source)
		wantErr bool
	}{
		{
			name: "directory by default",
			want: func(t *testing.T, src source.Source) {
				dir, ok := src.(*source.Directory)
				require.True(t, ok)
				require.Equal(t, "./migrations", dir.Root())
			},
		},
		{
			name: "global",
			kind: " Global ",
			want: func(t *testing.T, src source.Source) {
				require.Same(t, source.Global, src)
			},
		},
		{name: "unknown", kind: "s3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			if tt.kind != "" {
				t.Setenv("FM_SOURCE_KIND", tt.kind)
			}

			cfg, err := Load("")
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, cfg)
				return
			}
			require.NoError(t, err)

			src, err := cfg.MigrationSource()
			require.NoError(t, err)
			tt.want(t, src)
		})
	}
}
