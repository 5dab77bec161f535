package registry

import (
	"errors"
	"fmt"

	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

var (
	// ErrMissingMigrations indicates that no migration survived discovery
	ErrMissingMigrations = errors.New("no migrations found")

	// ErrDuplicateVersion indicates that two migrations resolve to the same version
	ErrDuplicateVersion = errors.New("duplicate migration version")
)

// DuplicateVersionError identifies a version claimed by more than one migration
type DuplicateVersionError struct {
	Version   int64
	Existing  *migration.Descriptor // Descriptor already holding the version
	Duplicate *migration.Descriptor // Descriptor that collided with it
}

// Error implements the error interface
func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("duplicate migration version %d", e.Version)
}

// Is matches ErrDuplicateVersion
func (e *DuplicateVersionError) Is(target error) bool {
	return target == ErrDuplicateVersion
}
