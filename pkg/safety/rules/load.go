package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack is a YAML pattern pack. Categories in a pack extend the store they are
// merged into; unknown categories are added as new tables.
//
//	version: "1"
//	categories:
//	  toxicity:
//	    patterns:
//	      insults: ["meanie"]
type Pack struct {
	Version    string           `yaml:"version"`
	Categories map[string]Table `yaml:"categories"`
}

// Tables returns the pack's tables with their names filled in, sorted by name.
func (p *Pack) Tables() []Table {
	names := make([]string, 0, len(p.Categories))
	for name := range p.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		t := p.Categories[name]
		t.Name = name
		tables = append(tables, t)
	}
	return tables
}

func (p *Pack) validate() error {
	if p.Version == "" {
		return fmt.Errorf("pattern pack version is required")
	}
	for name, t := range p.Categories {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("pattern pack has a category with an empty name")
		}
		if t.Increment < 0 || t.Increment > 1 {
			return fmt.Errorf("category %q: increment must be between 0 and 1, got %v", name, t.Increment)
		}
		if len(t.Patterns) == 0 {
			return fmt.Errorf("category %q: no patterns", name)
		}
	}
	return nil
}

// ParsePack decodes and validates a pattern pack.
func ParsePack(data []byte) (*Pack, error) {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pattern pack: %w", err)
	}
	if err := pack.validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}

// LoadFile reads one pattern pack from disk.
func LoadFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern pack %q: %w", path, err)
	}
	pack, err := ParsePack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pack, nil
}

// LoadDir merges every .yaml/.yml pack in dir, in file-name order, over base.
// Hidden files are skipped. base is not modified.
func LoadDir(base *Store, dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern directory %q: %w", dir, err)
	}

	store := base
	for _, entry := range entries {
		if entry.IsDir() || !isPackFile(entry.Name()) {
			continue
		}
		pack, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		store = store.Merge(pack.Tables()...)
	}
	return store, nil
}

// Load merges the pack or directory at path over base. An empty path returns
// base unchanged.
func Load(base *Store, path string) (*Store, error) {
	if path == "" {
		return base, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat pattern path %q: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(base, path)
	}
	pack, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return base.Merge(pack.Tables()...), nil
}

func isPackFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
