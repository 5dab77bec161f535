// Package conventions encodes the rules that decide which values are migrations,
// which namespace and tags they carry, and how they become descriptors.
package conventions

import (
	"fmt"
	"strings"

	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

// namespaceSeparators split a namespace into segments
var namespaceSeparators = []string{".", "/"}

// Trait names recorded by the default conventions
const (
	TraitDescription    = "description"
	TraitBreakingChange = "breaking_change"
)

// Conventions decides what counts as a migration and how it is described
type Conventions interface {
	// IsMigration reports whether m satisfies the migration recognition rules
	IsMigration(m migration.Migration) bool

	// HasTags reports whether m carries any tags
	HasTags(m migration.Migration) bool

	// HasMatchingTags reports whether m's tags match the given tag set
	HasMatchingTags(m migration.Migration, tags []string) bool

	// InNamespace reports whether m lives in namespace, or below it when nested is set
	InNamespace(m migration.Migration, namespace string, nested bool) bool

	// Describe converts a recognised migration into a descriptor
	Describe(m migration.Migration) (*migration.Descriptor, error)
}

// Option configures the default conventions
type Option func(*Default)

// WithCaseInsensitiveTags makes tag matching ignore case
func WithCaseInsensitiveTags() Option {
	return func(d *Default) {
		d.caseInsensitiveTags = true
	}
}

// Default implements Conventions for values implementing migration.Describer.
// A migration's namespace is its Namespace() if it is a migration.Namespacer,
// otherwise the import path of the package declaring its type.
type Default struct {
	caseInsensitiveTags bool
}

// NewDefault creates the default conventions
func NewDefault(opts ...Option) *Default {
	d := &Default{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsMigration reports whether m implements migration.Describer
func (d *Default) IsMigration(m migration.Migration) bool {
	if m == nil {
		return false
	}
	_, ok := m.(migration.Describer)
	return ok
}

// Namespace returns the namespace m lives in
func (d *Default) Namespace(m migration.Migration) string {
	if ns, ok := m.(migration.Namespacer); ok {
		return ns.Namespace()
	}
	return migration.PackagePath(m)
}

// InNamespace matches m's namespace exactly, or with nested set, any namespace
// below it. Both "." and "/" separate namespace segments, so App.Migrations
// contains App.Migrations.Sub and postgresql contains postgresql/core. An
// empty namespace matches everything.
func (d *Default) InNamespace(m migration.Migration, namespace string, nested bool) bool {
	if namespace == "" {
		return true
	}
	ns := d.Namespace(m)
	if ns == namespace {
		return true
	}
	if !nested {
		return false
	}
	parent := strings.TrimRight(namespace, "./")
	for _, sep := range namespaceSeparators {
		if strings.HasPrefix(ns, parent+sep) {
			return true
		}
	}
	return false
}

// HasTags reports whether any of m's tag groups names a tag
func (d *Default) HasTags(m migration.Migration) bool {
	for _, group := range tagGroups(m) {
		if len(group.Names) > 0 {
			return true
		}
	}
	return false
}

// HasMatchingTags reports whether the configured tags satisfy m's tag groups:
// every tag must appear among the RequireAll names, or any tag among the
// RequireAny names. Nothing matches when either side has no tags.
func (d *Default) HasMatchingTags(m migration.Migration, tags []string) bool {
	groups := tagGroups(m)
	if len(groups) == 0 || len(tags) == 0 {
		return false
	}

	var all, anyOf []string
	for _, group := range groups {
		switch group.Behavior {
		case migration.RequireAll:
			all = append(all, group.Names...)
		default:
			anyOf = append(anyOf, group.Names...)
		}
	}

	// Every configured tag must appear among the RequireAll names.
	if len(all) > 0 && d.containsAll(all, tags) {
		return true
	}
	if len(anyOf) > 0 && d.containsAny(anyOf, tags) {
		return true
	}
	return false
}

// Describe builds a descriptor from m's metadata. The version is taken as is;
// any int64, negative ones included, is a valid version. The description and
// breaking change flag are also recorded as traits unless m sets those traits
// itself.
func (d *Default) Describe(m migration.Migration) (*migration.Descriptor, error) {
	describer, ok := m.(migration.Describer)
	if !ok {
		return nil, fmt.Errorf("%s: %w", migration.TypeName(m), migration.ErrNotMigration)
	}

	md := describer.Metadata()

	desc, err := migration.NewDescriptor(md.Version, md.TransactionBehavior, m)
	if err != nil {
		return nil, err
	}
	desc.Description = md.Description
	desc.BreakingChange = md.BreakingChange

	for name, value := range md.Traits {
		if err := desc.AddTrait(name, value); err != nil {
			return nil, err
		}
	}
	if md.Description != "" && !desc.HasTrait(TraitDescription) {
		_ = desc.AddTrait(TraitDescription, md.Description)
	}
	if md.BreakingChange && !desc.HasTrait(TraitBreakingChange) {
		_ = desc.AddTrait(TraitBreakingChange, true)
	}
	return desc, nil
}

func (d *Default) equal(a, b string) bool {
	if d.caseInsensitiveTags {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func (d *Default) containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		for _, h := range haystack {
			if d.equal(n, h) {
				return true
			}
		}
	}
	return false
}

func (d *Default) containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if d.equal(n, h) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func tagGroups(m migration.Migration) []migration.Tags {
	describer, ok := m.(migration.Describer)
	if !ok {
		return nil
	}
	return describer.Metadata().Tags
}
