package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// File is a migration pair on disk
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Create writes the next numbered up/down pair, e.g. 000002_add_timetable
func Create(dir, name string) (*File, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	f := &File{
		Version:  next,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(f.UpPath, []byte(fmt.Sprintf("-- %s (created %s)\n\n", slug, stamp)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", f.UpPath, err)
	}
	if err := os.WriteFile(f.DownPath, []byte(fmt.Sprintf("-- rollback %s\n\n", slug)), 0o644); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, fmt.Errorf("failed to write %s: %w", f.DownPath, err)
	}
	return f, nil
}

// List returns the migrations in dir ordered by version
func List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := map[uint]*File{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		f, ok := byVersion[uint(v)]
		if !ok {
			f = &File{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = f
		}
		path := filepath.Join(dir, e.Name())
		if m[3] == "up" {
			f.UpPath = path
		} else {
			f.DownPath = path
		}
	}

	files := make([]File, 0, len(byVersion))
	for _, f := range byVersion {
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if s := b.String(); len(s) > 0 && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
