package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotMigration is returned when a value does not describe itself as a migration
	ErrNotMigration = errors.New("value is not a migration")

	// ErrInvalidVersion is returned when migration metadata carries an unusable version
	ErrInvalidVersion = errors.New("invalid migration version")
)

// Execer is the part of a database handle a migration needs to apply itself.
// *sql.DB, *sql.Tx and *sql.Conn all satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migration is a single schema change that can be applied and reverted
type Migration interface {
	Up(ctx context.Context, db Execer) error
	Down(ctx context.Context, db Execer) error
}

// Describer is implemented by migrations that carry metadata.
// Only describers are recognised by the default conventions.
type Describer interface {
	Metadata() Metadata
}

// Namespacer overrides the namespace derived from the implementation's package path
type Namespacer interface {
	Namespace() string
}

// TransactionBehavior controls whether the execution engine wraps a migration in a transaction
type TransactionBehavior int

const (
	// TransactionDefault runs the migration inside the engine's transaction
	TransactionDefault TransactionBehavior = iota
	// TransactionNone runs the migration without a transaction
	TransactionNone
)

func (b TransactionBehavior) String() string {
	switch b {
	case TransactionDefault:
		return "default"
	case TransactionNone:
		return "none"
	default:
		return fmt.Sprintf("TransactionBehavior(%d)", int(b))
	}
}

// ParseTransactionBehavior parses "default" (or "") and "none", case-insensitively
func ParseTransactionBehavior(s string) (TransactionBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return TransactionDefault, nil
	case "none":
		return TransactionNone, nil
	default:
		return TransactionDefault, fmt.Errorf("unknown transaction behavior %q", s)
	}
}

// TagBehavior decides how a tag group is matched against the configured tags
type TagBehavior int

const (
	// RequireAny matches when any tag of the group is configured
	RequireAny TagBehavior = iota
	// RequireAll matches when every configured tag is part of the group
	RequireAll
)

// Tags is a group of tag names sharing one matching behavior
type Tags struct {
	Names    []string
	Behavior TagBehavior
}

// Metadata is what a migration declares about itself
type Metadata struct {
	Version             int64
	Description         string
	TransactionBehavior TransactionBehavior
	BreakingChange      bool
	Tags                []Tags
	Traits              map[string]any
}

// TypeName returns the name of the concrete type behind m, dereferencing pointers
func TypeName(m any) string {
	if m == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// PackagePath returns the import path of the package declaring m's concrete type
func PackagePath(m any) string {
	if m == nil {
		return ""
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}
