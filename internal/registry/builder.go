package registry

import (
	"sort"

	"github.com/google/btree"

	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

// Builder accumulates descriptors for a Registry.
// A Builder is single use: after Build it must not be added to.
type Builder struct {
	tree  *btree.BTreeG[*migration.Descriptor]
	built bool
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		tree: btree.NewG(degree, byVersion),
	}
}

// Add inserts d. A version that is already present yields a
// *DuplicateVersionError and leaves the builder unchanged.
func (b *Builder) Add(d *migration.Descriptor) error {
	if b.built {
		panic("registry: Add called after Build")
	}
	if existing, ok := b.tree.Get(d); ok {
		return &DuplicateVersionError{
			Version:   d.Version,
			Existing:  existing,
			Duplicate: d,
		}
	}
	b.tree.ReplaceOrInsert(d)
	return nil
}

// Len returns the number of descriptors added so far
func (b *Builder) Len() int {
	return b.tree.Len()
}

// Build freezes the builder into a Registry. An empty builder yields ErrMissingMigrations.
func (b *Builder) Build() (*Registry, error) {
	if b.tree.Len() == 0 {
		return nil, ErrMissingMigrations
	}
	b.built = true
	return &Registry{tree: b.tree}, nil
}

// FindDuplicates returns one error per colliding descriptor, ordered by version.
// The first descriptor seen for a version is the one the others collide with.
func FindDuplicates(descs []*migration.Descriptor) []*DuplicateVersionError {
	first := make(map[int64]*migration.Descriptor, len(descs))
	var dups []*DuplicateVersionError
	for _, d := range descs {
		if existing, ok := first[d.Version]; ok {
			dups = append(dups, &DuplicateVersionError{
				Version:   d.Version,
				Existing:  existing,
				Duplicate: d,
			})
			continue
		}
		first[d.Version] = d
	}
	sort.SliceStable(dups, func(i, j int) bool {
		return dups[i].Version < dups[j].Version
	})
	return dups
}
