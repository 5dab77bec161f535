package migrations

import "github.com/ikudjoi/fluentmigrator/internal/migration"

type (
	// Migration is a single schema change that can be applied and reverted
	Migration = migration.Migration
	// Execer is the database handle a migration runs against
	Execer = migration.Execer
	// Metadata is what a migration declares about itself
	Metadata = migration.Metadata
	// Tags is a group of tag names sharing one matching behavior
	Tags = migration.Tags
	// TagBehavior decides how a tag group is matched
	TagBehavior = migration.TagBehavior
	// TransactionBehavior controls transaction wrapping
	TransactionBehavior = migration.TransactionBehavior
	// Script is a migration backed by SQL or JSON text
	Script = migration.Script
	// Descriptor is the normalized form of an accepted migration
	Descriptor = migration.Descriptor
)

const (
	RequireAny         = migration.RequireAny
	RequireAll         = migration.RequireAll
	TransactionDefault = migration.TransactionDefault
	TransactionNone    = migration.TransactionNone
)
