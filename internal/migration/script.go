package migration

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Script is a migration backed by SQL (or JSON) text rather than Go code
type Script struct {
	Version     int64
	Name        string
	Backend     string // Backend type (e.g., "postgresql", "etcd")
	Connection  string // Connection name (e.g., "core")
	Dir         string // Optional namespace override, "/" separated
	UpSQL       string
	DownSQL     string
	Description string
	Transaction TransactionBehavior
	Breaking    bool
	Tags        []Tags
	Traits      map[string]any
}

// Up executes the up script
func (s *Script) Up(ctx context.Context, db Execer) error {
	return s.exec(ctx, db, "up", s.UpSQL)
}

// Down executes the down script
func (s *Script) Down(ctx context.Context, db Execer) error {
	return s.exec(ctx, db, "down", s.DownSQL)
}

func (s *Script) exec(ctx context.Context, db Execer, direction, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("migration %d_%s %s: %w", s.Version, s.Name, direction, err)
	}
	return nil
}

// Namespace returns Dir when set, otherwise "{backend}/{connection}"
func (s *Script) Namespace() string {
	if s.Dir != "" {
		return s.Dir
	}
	return path.Join(s.Backend, s.Connection)
}

// Metadata implements Describer
func (s *Script) Metadata() Metadata {
	description := s.Description
	if description == "" {
		description = s.Name
	}
	return Metadata{
		Version:             s.Version,
		Description:         description,
		TransactionBehavior: s.Transaction,
		BreakingChange:      s.Breaking,
		Tags:                s.Tags,
		Traits:              s.Traits,
	}
}
