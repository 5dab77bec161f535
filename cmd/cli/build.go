package main

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/ikudjoi/fluentmigrator/internal/migration"
	"github.com/ikudjoi/fluentmigrator/internal/source"
	"github.com/ikudjoi/fluentmigrator/migrations"
)

var (
	scriptNameRegex  = regexp.MustCompile(`^(\d+)_(.+)$`)
	invalidPkgChars  = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	scriptExtensions = []string{".sql", ".json"}
)

type migrationFile struct {
	UpFile      string
	DownFile    string
	Version     string
	Name        string
	Backend     string
	Connection  string
	PackageName string
	Meta        *source.Sidecar
}

// templateTags is a tag group rendered as Go source
type templateTags struct {
	Names    string
	Behavior string
}

type buildOptions struct {
	path      string
	verbose   bool
	dryRun    bool
	outputDir string
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build migration .go files from SQL/JSON scripts",
		Long: `Build generates .go files that register each script pair with the
global migration source, so the scripts ship inside the binary.

Example:
  fluentmigrator build ./migrations
  fluentmigrator build ./migrations --output ./generated --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.path = args[0]
			} else if opts.path == "" {
				opts.path = "./migrations"
			}

			if _, err := os.Stat(opts.path); os.IsNotExist(err) {
				return fmt.Errorf("migration path does not exist: %s", opts.path)
			}
			return buildMigrations(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Path to the script tree (default: first argument or ./migrations)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be generated without creating files")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory (default: same as source files)")
	return cmd
}

// splitScriptName returns the base name and direction of a script file
func splitScriptName(filename string) (base string, up bool, ok bool) {
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(filename, ".up"+ext) {
			return strings.TrimSuffix(filename, ".up"+ext), true, true
		}
		if strings.HasSuffix(filename, ".down"+ext) {
			return strings.TrimSuffix(filename, ".down"+ext), false, true
		}
	}
	return "", false, false
}

func scanScripts(w io.Writer, opts *buildOptions) (map[string]*migrationFile, error) {
	found := make(map[string]*migrationFile)

	err := filepath.WalkDir(opts.path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		filename := d.Name()
		baseName, up, ok := splitScriptName(filename)
		if !ok {
			return nil
		}
		if opts.verbose {
			fmt.Fprintf(w, "Found migration file: %s\n", path)
		}

		matches := scriptNameRegex.FindStringSubmatch(baseName)
		if len(matches) != 3 {
			return fmt.Errorf("invalid filename format: %s (expected: {version}_{name}.up.{ext})", filename)
		}

		relPath, err := filepath.Rel(opts.path, path)
		if err != nil {
			return err
		}
		parts := strings.Split(relPath, string(filepath.Separator))
		if len(parts) != 3 {
			return fmt.Errorf("invalid directory structure for %s (expected: {backend}/{connection}/{filename})", path)
		}

		key := filepath.Join(parts[0], parts[1], baseName)
		mf, exists := found[key]
		if !exists {
			meta, err := source.ReadSidecar(source.SidecarPath(filepath.Dir(path), baseName))
			if err != nil {
				return err
			}
			mf = &migrationFile{
				Meta:        meta,
				Version:     matches[1],
				Name:        matches[2],
				Backend:     parts[0],
				Connection:  parts[1],
				PackageName: sanitizePackageName(parts[1]),
			}
			found[key] = mf
		}

		if up {
			mf.UpFile = filename
		} else {
			mf.DownFile = filename
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func buildMigrations(w io.Writer, opts *buildOptions) error {
	if opts.verbose {
		fmt.Fprintf(w, "Scanning migration directory: %s\n", opts.path)
	}
	if opts.dryRun {
		fmt.Fprintln(w, "DRY RUN MODE - No files will be created")
	}

	found, err := scanScripts(w, opts)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(w, "No migration files found in the specified directory")
		return nil
	}

	tmpl, err := template.New("migration").Parse(migrations.GoFileTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	keys := make([]string, 0, len(found))
	for key := range found {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var generated int
	for _, key := range keys {
		mf := found[key]
		if mf.UpFile == "" {
			return fmt.Errorf("missing up file for migration: %s", key)
		}

		root := opts.path
		if opts.outputDir != "" {
			root = opts.outputDir
		}
		dirPath := filepath.Join(root, mf.Backend, mf.Connection)
		goFilePath := filepath.Join(dirPath, fmt.Sprintf("%s_%s.go", mf.Version, mf.Name))

		if opts.dryRun {
			fmt.Fprintf(w, "[DRY RUN] Would generate: %s\n", goFilePath)
			generated++
			continue
		}

		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
		}
		if err := writeGoFile(tmpl, goFilePath, mf); err != nil {
			return err
		}
		fmt.Fprintf(w, "Generated: %s\n", goFilePath)
		generated++
	}

	if opts.dryRun {
		fmt.Fprintf(w, "\nWould generate %d migration file(s)\n", generated)
	} else {
		fmt.Fprintf(w, "\nSuccessfully generated %d migration file(s)\n", generated)
	}
	return nil
}

func writeGoFile(tmpl *template.Template, path string, mf *migrationFile) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData(mf)); err != nil {
		return fmt.Errorf("failed to generate file %s: %w", path, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format file %s: %w", path, err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return nil
}

// templateData flattens a script pair and its sidecar into the values
// migrations.GoFileTemplate renders
func templateData(mf *migrationFile) map[string]any {
	data := map[string]any{
		"PackageName":  mf.PackageName,
		"UpFileName":   mf.UpFile,
		"DownFileName": mf.DownFile,
		"Version":      mf.Version,
		"Name":         mf.Name,
		"Connection":   mf.Connection,
		"Backend":      mf.Backend,
	}
	if mf.Meta == nil {
		return data
	}

	script := &migration.Script{}
	mf.Meta.Apply(script)

	data["Description"] = script.Description
	data["TransactionNone"] = script.Transaction == migration.TransactionNone
	data["Breaking"] = script.Breaking
	var tags []templateTags
	for _, group := range script.Tags {
		behavior := "RequireAny"
		if group.Behavior == migration.RequireAll {
			behavior = "RequireAll"
		}
		tags = append(tags, templateTags{Names: fmt.Sprintf("%#v", group.Names), Behavior: behavior})
	}
	data["Tags"] = tags
	if len(script.Traits) > 0 {
		data["Traits"] = fmt.Sprintf("%#v", script.Traits)
	}
	return data
}

// sanitizePackageName converts a connection name to a valid Go package name
func sanitizePackageName(name string) string {
	result := invalidPkgChars.ReplaceAllString(name, "_")

	if len(result) > 0 && result[0] >= '0' && result[0] <= '9' {
		result = "_" + result
	}
	if result == "" {
		result = "migration"
	}
	return result
}
