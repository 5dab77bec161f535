package dto

import (
	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

// MigrationListFilters specifies filters for listing migrations
type MigrationListFilters struct {
	Since string `form:"since"` // Only versions strictly greater than this
}

// MigrationListResponse represents the ordered list of migrations
type MigrationListResponse struct {
	Items []MigrationListItem `json:"items" yaml:"items"`
	Total int                 `json:"total" yaml:"total"`
}

// MigrationListItem represents a single migration in the list
type MigrationListItem struct {
	Version             int64  `json:"version" yaml:"version"`
	Name                string `json:"name" yaml:"name"`
	Type                string `json:"type" yaml:"type"`
	Description         string `json:"description,omitempty" yaml:"description,omitempty"`
	TransactionBehavior string `json:"transaction_behavior" yaml:"transaction_behavior"`
	BreakingChange      bool   `json:"breaking_change" yaml:"breaking_change"`
	Backend             string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Connection          string `json:"connection,omitempty" yaml:"connection,omitempty"`
}

// MigrationDetailResponse represents detailed migration information
type MigrationDetailResponse struct {
	MigrationListItem
	Traits  map[string]any `json:"traits,omitempty"`
	UpSQL   string         `json:"up_sql,omitempty"`   // SQL for SQL backends or JSON for NoSQL backends
	DownSQL string         `json:"down_sql,omitempty"` // SQL for SQL backends or JSON for NoSQL backends
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewMigrationListItem converts a descriptor
func NewMigrationListItem(d *migration.Descriptor) MigrationListItem {
	item := MigrationListItem{
		Version:             d.Version,
		Name:                d.Name(),
		Type:                migration.TypeName(d.Migration),
		Description:         d.Description,
		TransactionBehavior: d.TransactionBehavior.String(),
		BreakingChange:      d.BreakingChange,
	}
	if s, ok := d.Migration.(*migration.Script); ok {
		item.Backend = s.Backend
		item.Connection = s.Connection
	}
	return item
}

// NewMigrationDetailResponse converts a descriptor, including script bodies
func NewMigrationDetailResponse(d *migration.Descriptor) MigrationDetailResponse {
	resp := MigrationDetailResponse{
		MigrationListItem: NewMigrationListItem(d),
	}
	if traits := d.Traits(); len(traits) > 0 {
		resp.Traits = traits
	}
	if s, ok := d.Migration.(*migration.Script); ok {
		resp.UpSQL = s.UpSQL
		resp.DownSQL = s.DownSQL
	}
	return resp
}
