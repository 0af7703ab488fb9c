package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker     = "-- +goose Up"
	downMarker   = "-- +goose Down"
	beginMarker  = "-- +goose StatementBegin"
	endMarker    = "-- +goose StatementEnd"
	sqlExtension = ".sql"
)

// ValidateDir checks migration filenames and goose annotations in dir. An
// empty dir validates the migrations compiled into the binary.
func ValidateDir(dir string) error {
	if dir == "" {
		return validateFS(embedded, embeddedDir, "embedded migrations")
	}
	return validateFS(os.DirFS(dir), ".", dir)
}

func validateFS(fsys fs.FS, dir, label string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", label, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, sqlExtension) {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := validateBody(string(b)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("no migrations found in %q", label)
	}
	return nil
}

// validateBody requires an Up section followed by a Down section with
// balanced StatementBegin/End markers in each.
func validateBody(txt string) error {
	up := strings.Index(txt, upMarker)
	if up < 0 {
		return fmt.Errorf("missing %q", upMarker)
	}
	down := strings.Index(txt, downMarker)
	if down < 0 {
		return fmt.Errorf("missing %q", downMarker)
	}
	if down < up {
		return fmt.Errorf("%q must come before %q", upMarker, downMarker)
	}
	for _, section := range []struct{ name, body string }{
		{"up", txt[up+len(upMarker) : down]},
		{"down", txt[down+len(downMarker):]},
	} {
		if strings.Count(section.body, beginMarker) != strings.Count(section.body, endMarker) {
			return fmt.Errorf("%s section has unbalanced statement markers", section.name)
		}
	}
	return nil
}
