package migrations

import "github.com/ikudjoi/fluentmigrator/internal/source"

// GlobalSource is the source migrations register themselves with
var GlobalSource = source.Global

// Register adds migrations to GlobalSource
func Register(ms ...Migration) {
	source.Register(ms...)
}
