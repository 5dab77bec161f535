package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ikudjoi/fluentmigrator/internal/conventions"
	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

type candidate struct {
	namespace string
	tags      []string
}

func (c *candidate) Up(ctx context.Context, db migration.Execer) error   { return nil }
func (c *candidate) Down(ctx context.Context, db migration.Execer) error { return nil }
func (c *candidate) Namespace() string                                   { return c.namespace }
func (c *candidate) Metadata() migration.Metadata {
	md := migration.Metadata{Version: 1}
	if len(c.tags) > 0 {
		md.Tags = []migration.Tags{{Names: c.tags}}
	}
	return md
}

// notMigration has a namespace but no metadata
type notMigration struct{}

func (notMigration) Up(ctx context.Context, db migration.Execer) error   { return nil }
func (notMigration) Down(ctx context.Context, db migration.Execer) error { return nil }
func (notMigration) Namespace() string                                   { return "App.Migrations" }

func TestPredicate(t *testing.T) {
	conv := conventions.NewDefault()

	tests := []struct {
		name      string
		opts      Options
		candidate migration.Migration
		want      bool
	}{
		{
			name:      "nested namespace excluded when nesting is off",
			opts:      Options{Namespace: "App.Migrations"},
			candidate: &candidate{namespace: "App.Migrations.Sub"},
			want:      false,
		},
		{
			name:      "nested namespace included when nesting is on",
			opts:      Options{Namespace: "App.Migrations", NestedNamespaces: true},
			candidate: &candidate{namespace: "App.Migrations.Sub"},
			want:      true,
		},
		{
			name:      "nested directory namespace included when nesting is on",
			opts:      Options{Namespace: "postgresql", NestedNamespaces: true},
			candidate: &candidate{namespace: "postgresql/core"},
			want:      true,
		},
		{
			name:      "untagged in namespace",
			opts:      Options{Namespace: "App.Migrations"},
			candidate: &candidate{namespace: "App.Migrations"},
			want:      true,
		},
		{
			name:      "tagged, no tags configured",
			opts:      Options{Namespace: "App.Migrations"},
			candidate: &candidate{namespace: "App.Migrations", tags: []string{"prod"}},
			want:      false,
		},
		{
			name:      "tagged and matching",
			opts:      Options{Tags: []string{"prod"}},
			candidate: &candidate{namespace: "App.Migrations", tags: []string{"prod"}},
			want:      true,
		},
		{
			name:      "tagged and not matching",
			opts:      Options{Tags: []string{"dev"}},
			candidate: &candidate{namespace: "App.Migrations", tags: []string{"prod"}},
			want:      false,
		},
		{
			name:      "untagged is included even when tags are configured",
			opts:      Options{Tags: []string{"dev"}},
			candidate: &candidate{namespace: "App.Migrations"},
			want:      true,
		},
		{
			name:      "other namespace",
			opts:      Options{Namespace: "App.Migrations"},
			candidate: &candidate{namespace: "Other"},
			want:      false,
		},
		{
			name:      "no namespace configured",
			candidate: &candidate{namespace: "Other"},
			want:      true,
		},
		{
			name:      "not recognised as a migration",
			opts:      Options{Namespace: "App.Migrations"},
			candidate: notMigration{},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predicate(conv, tt.opts)(tt.candidate)
			if got != tt.want {
				t.Errorf("Predicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicate_CopiesTags(t *testing.T) {
	tags := []string{"prod"}
	keep := Predicate(conventions.NewDefault(), Options{Tags: tags})
	tags[0] = "dev"

	require.True(t, keep(&candidate{tags: []string{"prod"}}))
}

func TestPredicate_UntaggedAlwaysIncluded(t *testing.T) {
	conv := conventions.NewDefault()
	rapid.Check(t, func(t *rapid.T) {
		tags := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,5}`)).Draw(t, "tags")
		keep := Predicate(conv, Options{Tags: tags})
		if !keep(&candidate{namespace: "any"}) {
			t.Fatalf("untagged candidate excluded with tags %v", tags)
		}
	})
}
