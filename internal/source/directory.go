package source

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ikudjoi/fluentmigrator/internal/logger"
	"github.com/ikudjoi/fluentmigrator/internal/migration"
)

// filename format: {version}_{name}, version is all digits
var versionRegex = regexp.MustCompile(`^(\d+)_(.+)$`)

var upExtensions = []string{".up.sql", ".up.json"}

// Sidecar is the optional {version}_{name}.meta.yaml next to a script
type Sidecar struct {
	Description    string         `yaml:"description"`
	Transaction    string         `yaml:"transaction"`
	BreakingChange bool           `yaml:"breaking_change"`
	Tags           []string       `yaml:"tags"`
	RequireAllTags []string       `yaml:"require_all_tags"`
	Traits         map[string]any `yaml:"traits"`
}

// Directory is a FilteringSource reading script migrations from a tree laid out as
//
//	{root}/{backend}/{connection}/{version}_{name}.up.sql
//	{root}/{backend}/{connection}/{version}_{name}.down.sql
//	{root}/{backend}/{connection}/{version}_{name}.meta.yaml
//
// JSON scripts (.up.json / .down.json) are accepted as well. Deeper directories
// are allowed; the namespace of a script is its directory relative to root.
// Script bodies are read only for candidates the filter keeps.
type Directory struct {
	root string
}

// NewDirectory creates a source rooted at root
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Root returns the directory the source reads from
func (d *Directory) Root() string {
	return d.root
}

// Migrations returns every script migration in the tree
func (d *Directory) Migrations() ([]migration.Migration, error) {
	return d.FilterMigrations(nil)
}

// FilterMigrations returns the script migrations keep accepts. A nil keep accepts all.
func (d *Directory) FilterMigrations(keep func(migration.Migration) bool) ([]migration.Migration, error) {
	entries, err := d.scan()
	if err != nil {
		return nil, err
	}

	var result []migration.Migration
	for _, e := range entries {
		if keep != nil && !keep(e.script) {
			logger.Debugf("Skipping migration %s (filtered out)", e.upPath)
			continue
		}
		if err := e.load(); err != nil {
			return nil, err
		}
		result = append(result, e.script)
	}

	logger.Debugf("Loaded %d of %d migration(s) from %s", len(result), len(entries), d.root)
	return result, nil
}

type entry struct {
	script   *migration.Script
	upPath   string
	downPath string
}

// load reads the script bodies. The down script is optional.
func (e *entry) load() error {
	up, err := os.ReadFile(e.upPath)
	if err != nil {
		return &FileError{Path: e.upPath, Op: "read", Err: err}
	}
	e.script.UpSQL = string(up)

	down, err := os.ReadFile(e.downPath)
	if err != nil && !os.IsNotExist(err) {
		return &FileError{Path: e.downPath, Op: "read", Err: err}
	}
	e.script.DownSQL = string(down)
	return nil
}

// scan walks the tree and builds script stubs from file names and sidecars
func (d *Directory) scan() ([]*entry, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, &FileError{Path: d.root, Op: "scan", Err: err}
	}
	if !info.IsDir() {
		return nil, &FileError{Path: d.root, Op: "scan", Err: fmt.Errorf("not a directory")}
	}

	var entries []*entry
	err = filepath.WalkDir(d.root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}

		base, ext := splitUpExtension(de.Name())
		if ext == "" {
			return nil
		}

		// Verify directory structure: {backend}/{connection}/{file}
		relPath, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(relPath), "/")
		if len(parts) < 3 {
			logger.Debugf("Ignoring %s: expected {backend}/{connection}/{version}_{name}%s", p, ext)
			return nil
		}

		matches := versionRegex.FindStringSubmatch(base)
		if len(matches) != 3 {
			return &FileError{Path: p, Op: "parse", Err: fmt.Errorf("%w: expected {version}_{name}%s", ErrInvalidMigrationFile, ext)}
		}

		version, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return &FileError{Path: p, Op: "parse", Err: fmt.Errorf("%w: %w", migration.ErrInvalidVersion, err)}
		}

		dir := filepath.Dir(p)
		script := &migration.Script{
			Version:    version,
			Name:       matches[2],
			Backend:    parts[0],
			Connection: parts[1],
			Dir:        path.Join(parts[:len(parts)-1]...),
		}
		if err := applySidecar(script, SidecarPath(dir, base)); err != nil {
			return err
		}

		entries = append(entries, &entry{
			script:   script,
			upPath:   p,
			downPath: filepath.Join(dir, base+strings.Replace(ext, ".up.", ".down.", 1)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning migration directory %s: %w", d.root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].upPath < entries[j].upPath
	})
	return entries, nil
}

func splitUpExtension(name string) (string, string) {
	for _, ext := range upExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext), ext
		}
	}
	return name, ""
}

// ReadSidecar parses the metadata file at metaPath. A missing file yields nil
// and no error.
func ReadSidecar(metaPath string) (*Sidecar, error) {
	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &FileError{Path: metaPath, Op: "read", Err: err}
	}

	var meta Sidecar
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, &FileError{Path: metaPath, Op: "parse", Err: fmt.Errorf("%w: %w", ErrInvalidMigrationFile, err)}
	}
	if _, err := migration.ParseTransactionBehavior(meta.Transaction); err != nil {
		return nil, &FileError{Path: metaPath, Op: "parse", Err: fmt.Errorf("%w: %w", ErrInvalidMigrationFile, err)}
	}
	return &meta, nil
}

// Apply copies the sidecar metadata onto script
func (s *Sidecar) Apply(script *migration.Script) {
	// Validated by ReadSidecar
	script.Transaction, _ = migration.ParseTransactionBehavior(s.Transaction)
	script.Description = s.Description
	script.Breaking = s.BreakingChange
	script.Traits = s.Traits
	if len(s.Tags) > 0 {
		script.Tags = append(script.Tags, migration.Tags{Names: s.Tags, Behavior: migration.RequireAny})
	}
	if len(s.RequireAllTags) > 0 {
		script.Tags = append(script.Tags, migration.Tags{Names: s.RequireAllTags, Behavior: migration.RequireAll})
	}
}

// SidecarPath returns the metadata file belonging to a script of the given base name
func SidecarPath(dir, base string) string {
	return filepath.Join(dir, base+".meta.yaml")
}

// applySidecar merges an optional metadata file into script
func applySidecar(script *migration.Script, metaPath string) error {
	meta, err := ReadSidecar(metaPath)
	if err != nil || meta == nil {
		return err
	}
	meta.Apply(script)
	return nil
}
