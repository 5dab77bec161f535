package migrations

// GoFileTemplate renders a Go file registering one SQL/JSON script pair.
// Metadata from the script's .meta.yaml is rendered as Script fields; Tags
// entries carry pre-rendered Names literals and a Behavior constant name,
// Traits is a pre-rendered map literal.
const GoFileTemplate = `// Code generated by fluentmigrator build. DO NOT EDIT.

package {{.PackageName}}

import (
	_ "embed"

	"github.com/ikudjoi/fluentmigrator/migrations"
)

//go:embed {{.UpFileName}}
var upSQL{{.Version}} string
{{if .DownFileName}}
//go:embed {{.DownFileName}}
var downSQL{{.Version}} string
{{end}}
func init() {
	migrations.Register(&migrations.Script{
		Version: {{.Version}},
		Name: {{printf "%q" .Name}},
		Backend: {{printf "%q" .Backend}},
		Connection: {{printf "%q" .Connection}},
		UpSQL: upSQL{{.Version}},
{{- if .DownFileName}}
		DownSQL: downSQL{{.Version}},
{{- end}}
{{- if .Description}}
		Description: {{printf "%q" .Description}},
{{- end}}
{{- if .TransactionNone}}
		Transaction: migrations.TransactionNone,
{{- end}}
{{- if .Breaking}}
		Breaking: true,
{{- end}}
{{- if .Tags}}
		Tags: []migrations.Tags{
{{- range .Tags}}
			{Names: {{.Names}}, Behavior: migrations.{{.Behavior}}},
{{- end}}
		},
{{- end}}
{{- if .Traits}}
		Traits: {{.Traits}},
{{- end}}
	})
}
`
