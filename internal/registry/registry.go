package registry

import (
	"github.com/google/btree"

	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

const degree = 8

func byVersion(a, b *migration.Descriptor) bool {
	return a.Version < b.Version
}

func key(version int64) *migration.Descriptor {
	return &migration.Descriptor{Version: version}
}

// Registry is an ordered, immutable set of migration descriptors keyed by version.
// Iteration is always in ascending version order.
type Registry struct {
	tree *btree.BTreeG[*migration.Descriptor]
}

// Len returns the number of migrations
func (r *Registry) Len() int {
	return r.tree.Len()
}

// Get returns the migration with the given version
func (r *Registry) Get(version int64) (*migration.Descriptor, bool) {
	return r.tree.Get(key(version))
}

// Has reports whether a migration with the given version exists
func (r *Registry) Has(version int64) bool {
	return r.tree.Has(key(version))
}

// Ascend calls fn for each migration in ascending version order until fn returns false
func (r *Registry) Ascend(fn func(d *migration.Descriptor) bool) {
	r.tree.Ascend(fn)
}

// Descriptors returns all migrations in ascending version order
func (r *Registry) Descriptors() []*migration.Descriptor {
	out := make([]*migration.Descriptor, 0, r.tree.Len())
	r.tree.Ascend(func(d *migration.Descriptor) bool {
		out = append(out, d)
		return true
	})
	return out
}

// Versions returns all versions in ascending order
func (r *Registry) Versions() []int64 {
	out := make([]int64, 0, r.tree.Len())
	r.tree.Ascend(func(d *migration.Descriptor) bool {
		out = append(out, d.Version)
		return true
	})
	return out
}

// First returns the migration with the lowest version
func (r *Registry) First() (*migration.Descriptor, bool) {
	return r.tree.Min()
}

// Last returns the migration with the highest version
func (r *Registry) Last() (*migration.Descriptor, bool) {
	return r.tree.Max()
}

// Range returns migrations with from <= version < to, ascending
func (r *Registry) Range(from, to int64) []*migration.Descriptor {
	var out []*migration.Descriptor
	if from >= to {
		return out
	}
	r.tree.AscendRange(key(from), key(to), func(d *migration.Descriptor) bool {
		out = append(out, d)
		return true
	})
	return out
}

// Since returns migrations with a version strictly greater than version, ascending.
// It is what a runner applies on top of a database currently at version.
func (r *Registry) Since(version int64) []*migration.Descriptor {
	var out []*migration.Descriptor
	r.tree.AscendGreaterOrEqual(key(version), func(d *migration.Descriptor) bool {
		if d.Version > version {
			out = append(out, d)
		}
		return true
	})
	return out
}
