package migration

import (
	"fmt"
)

// Descriptor is the normalized, versioned form of an accepted migration.
// It references the migration without owning it.
type Descriptor struct {
	Version             int64
	TransactionBehavior TransactionBehavior
	Migration           Migration
	Description         string
	BreakingChange      bool

	traits map[string]any
}

// NewDescriptor creates a descriptor for m
func NewDescriptor(version int64, behavior TransactionBehavior, m Migration) (*Descriptor, error) {
	if m == nil {
		return nil, fmt.Errorf("migration %d: %w", version, ErrNotMigration)
	}
	return &Descriptor{
		Version:             version,
		TransactionBehavior: behavior,
		Migration:           m,
	}, nil
}

// AddTrait attaches a named value. A trait can only be set once.
func (d *Descriptor) AddTrait(name string, value any) error {
	if d.traits == nil {
		d.traits = make(map[string]any)
	}
	if _, exists := d.traits[name]; exists {
		return fmt.Errorf("migration %d: trait %q already set", d.Version, name)
	}
	d.traits[name] = value
	return nil
}

// Trait returns the named trait, or nil if it is not set
func (d *Descriptor) Trait(name string) any {
	return d.traits[name]
}

// HasTrait reports whether the named trait is set
func (d *Descriptor) HasTrait(name string) bool {
	_, ok := d.traits[name]
	return ok
}

// Traits returns a copy of all traits
func (d *Descriptor) Traits() map[string]any {
	out := make(map[string]any, len(d.traits))
	for k, v := range d.traits {
		out[k] = v
	}
	return out
}

// Name returns the display name: "<version>: <TypeName>"
func (d *Descriptor) Name() string {
	return fmt.Sprintf("%d: %s", d.Version, TypeName(d.Migration))
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("MigrationType: %s, TransactionBehavior: %s", TypeName(d.Migration), d.TransactionBehavior)
}
