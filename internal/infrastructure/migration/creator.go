package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// MigrationFile is a freshly created up/down pair
type MigrationFile struct {
	Version  string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down pair named
// <YYYYMMDDHHMMSS>_<name> into dir
func CreateMigration(dir, name string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := now.UTC().Format("20060102150405")
	base := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{Version: version, UpPath: base + upSuffix, DownPath: base + downSuffix}

	header := fmt.Sprintf("-- %s_%s\n", version, slug)
	if err := os.WriteFile(mf.UpPath, []byte(header), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", mf.UpPath, err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(header), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to write %s: %w", mf.DownPath, err)
	}
	return mf, nil
}

// sanitizeName lowercases name and collapses separators into single
// underscores, dropping every other character
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of the up migrations in dir,
// in apply order. A missing directory yields an empty list.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), upSuffix))
	}
	sort.Strings(names)
	return names, nil
}
