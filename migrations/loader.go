package migrations

import (
	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/filter"
	"github.com/ikudjoi/fluentmigrator/internal/loader"
	"github.com/ikudjoi/fluentmigrator/internal/registry"
)

type (
	// Loader discovers, filters and orders migrations
	Loader = loader.Loader
	// FilterOptions selects migrations by namespace and tags
	FilterOptions = filter.Options
	// Registry is the ordered set of loaded migrations
	Registry = registry.Registry
	// ConventionOption configures how migrations are recognised
	ConventionOption = conventions.Option
)

var (
	// ErrMissingMigrations is returned when no migration matches the filter
	ErrMissingMigrations = registry.ErrMissingMigrations
	// ErrDuplicateVersion is matched by errors reporting a repeated version
	ErrDuplicateVersion = registry.ErrDuplicateVersion
)

// WithCaseInsensitiveTags makes tag matching ignore case
func WithCaseInsensitiveTags() ConventionOption {
	return conventions.WithCaseInsensitiveTags()
}

// NewLoader returns a loader over every migration registered with Register
func NewLoader(opts FilterOptions, conventionOpts ...ConventionOption) *Loader {
	return loader.New(GlobalSource, opts, conventions.NewDefault(conventionOpts...))
}
