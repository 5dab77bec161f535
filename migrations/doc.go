// Package migrations is the public API migration authors build against.
// It exports the migration types and the global source that migration
// files register themselves with from init functions.
//
// Example of a Go migration:
//
//	package core
//
//	import (
//		"context"
//
//		"github.com/ikudjoi/fluentmigrator/migrations"
//	)
//
//	type CreateUsers struct{}
//
//	func (CreateUsers) Metadata() migrations.Metadata {
//		return migrations.Metadata{
//			Version:     20250101120000,
//			Description: "create users",
//			Tags:        []migrations.Tags{{Names: []string{"prod"}}},
//		}
//	}
//
//	func (CreateUsers) Up(ctx context.Context, db migrations.Execer) error {
//		_, err := db.ExecContext(ctx, "CREATE TABLE users (id bigint primary key)")
//		return err
//	}
//
//	func (CreateUsers) Down(ctx context.Context, db migrations.Execer) error {
//		_, err := db.ExecContext(ctx, "DROP TABLE users")
//		return err
//	}
//
//	func init() {
//		migrations.Register(CreateUsers{})
//	}
//
// SQL scripts can be registered the same way with a *migrations.Script, which
// is what `fluentmigrator build` generates.
package migrations
