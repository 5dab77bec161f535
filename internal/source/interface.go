// Package source enumerates candidate migrations.
package source

import (
	"sync"

	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

// Source enumerates every candidate migration it knows about.
// The order of the returned slice carries no meaning.
type Source interface {
	Migrations() ([]migration.Migration, error)
}

// FilteringSource is a Source that can apply a predicate while enumerating,
// so rejected candidates are never fully materialised. It must return exactly
// the candidates Migrations would return that keep accepts.
type FilteringSource interface {
	Source
	FilterMigrations(keep func(migration.Migration) bool) ([]migration.Migration, error)
}

// Set is an in-memory Source fed by Register. It is safe for concurrent use.
type Set struct {
	mu         sync.RWMutex
	migrations []migration.Migration
}

// NewSet creates a set holding ms
func NewSet(ms ...migration.Migration) *Set {
	return &Set{migrations: append([]migration.Migration(nil), ms...)}
}

// Register adds migrations to the set
func (s *Set) Register(ms ...migration.Migration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.migrations = append(s.migrations, ms...)
}

// Len returns the number of registered migrations
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.migrations)
}

// Migrations returns a snapshot of the registered migrations
func (s *Set) Migrations() ([]migration.Migration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]migration.Migration(nil), s.migrations...), nil
}

// Global is the set migrations register themselves with from init functions
var Global = NewSet()

// Register adds migrations to Global
func Register(ms ...migration.Migration) {
	Global.Register(ms...)
}
