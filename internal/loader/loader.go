// Package loader discovers, filters and orders migrations into a registry.
//
// A Loader runs discovery once. The first call to LoadMigrations either
// produces a registry or fails, and every later call returns that same
// registry or that same error. Build a new Loader to discover again.
package loader

import (
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/filter"
	"github.com/ikudjoi/fluentmigrator/internal/logger"
	"github.com/ikudjoi/fluentmigrator/internal/migration"
	"github.com/ikudjoi/fluentmigrator/internal/registry"
	"github.com/ikudjoi/fluentmigrator/internal/source"
)

// Loader loads the migration registry from a source
type Loader struct {
	source      source.Source
	conventions conventions.Conventions
	options     filter.Options

	mu        sync.Mutex
	attempted bool
	registry  *registry.Registry
	err       error
}

// New creates a loader. opts is copied.
func New(src source.Source, opts filter.Options, conv conventions.Conventions) *Loader {
	opts.Tags = append([]string(nil), opts.Tags...)
	return &Loader{
		source:      src,
		conventions: conv,
		options:     opts,
	}
}

// Options returns the filter options the loader was built with
func (l *Loader) Options() filter.Options {
	opts := l.options
	opts.Tags = append([]string(nil), opts.Tags...)
	return opts
}

// Conventions returns the conventions used to filter and describe migrations
func (l *Loader) Conventions() conventions.Conventions {
	return l.conventions
}

// LoadMigrations returns the registry of migrations matching the loader's filter,
// ordered by version. Errors from the source and the conventions are returned
// unmodified; otherwise the error is registry.ErrMissingMigrations or a
// *registry.DuplicateVersionError.
func (l *Loader) LoadMigrations() (*registry.Registry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.attempted {
		return l.registry, l.err
	}
	l.attempted = true
	l.registry, l.err = l.load()
	return l.registry, l.err
}

func (l *Loader) load() (*registry.Registry, error) {
	candidates, err := l.find()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, registry.ErrMissingMigrations
	}

	b := registry.NewBuilder()
	for _, m := range candidates {
		desc, err := l.conventions.Describe(m)
		if err != nil {
			return nil, err
		}
		if err := b.Add(desc); err != nil {
			return nil, err
		}
	}

	// Build rejects an empty registry with ErrMissingMigrations.
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	logger.Debugf("Loaded %d migration(s)", reg.Len())
	return reg, nil
}

// find returns the candidates accepted by the filter, pushing the predicate
// down when the source supports it.
func (l *Loader) find() ([]migration.Migration, error) {
	keep := filter.Predicate(l.conventions, l.options)

	if fs, ok := l.source.(source.FilteringSource); ok {
		return fs.FilterMigrations(keep)
	}

	all, err := l.source.Migrations()
	if err != nil {
		return nil, err
	}
	var matched []migration.Migration
	for _, m := range all {
		if keep(m) {
			matched = append(matched, m)
		}
	}
	logger.Debugf("%d of %d candidate(s) matched the filter", len(matched), len(all))
	return matched, nil
}

// Validate runs discovery without caching and reports every problem at once:
// each failed conversion and each duplicate version. It returns
// registry.ErrMissingMigrations when nothing matches the filter.
func (l *Loader) Validate() error {
	candidates, err := l.find()
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return registry.ErrMissingMigrations
	}

	var result *multierror.Error
	descs := make([]*migration.Descriptor, 0, len(candidates))
	for _, m := range candidates {
		desc, err := l.conventions.Describe(m)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		descs = append(descs, desc)
	}
	for _, dup := range registry.FindDuplicates(descs) {
		result = multierror.Append(result, dup)
	}
	return result.ErrorOrNil()
}

// IsMissing reports whether err means no migrations were found
func IsMissing(err error) bool {
	return errors.Is(err, registry.ErrMissingMigrations)
}

// IsDuplicate reports whether err is, or contains, a duplicate version
func IsDuplicate(err error) bool {
	return errors.Is(err, registry.ErrDuplicateVersion)
}
