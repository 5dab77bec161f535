// Package filter decides which candidate migrations take part in a run.
package filter

import (
	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

// Options selects migrations by namespace and tags
type Options struct {
	Namespace        string   // Empty means every namespace
	NestedNamespaces bool     // Also accept namespaces below Namespace
	Tags             []string // Tags to match; order is irrelevant
}

// Predicate returns the inclusion test for opts.
//
// A candidate is included when it is in the configured namespace, is
// recognised as a migration, and either its tags match, or no tags are
// configured and it has none, or it has no tags at all. Untagged migrations
// are therefore always included, whatever tags are configured.
func Predicate(conv conventions.Conventions, opts Options) func(migration.Migration) bool {
	tags := append([]string(nil), opts.Tags...)

	return func(m migration.Migration) bool {
		if !conv.InNamespace(m, opts.Namespace, opts.NestedNamespaces) {
			return false
		}
		if !conv.IsMigration(m) {
			return false
		}
		return conv.HasMatchingTags(m, tags) ||
			(len(tags) == 0 && !conv.HasTags(m)) ||
			!conv.HasTags(m)
	}
}
