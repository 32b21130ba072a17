package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed *.yaml
var LevelsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Dir is the on-disk directory whose files override the embedded ones.
var Dir = "levels"

// Load reads a level by name, preferring a file under Dir over the embedded copy.
func Load(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean)))
	if err != nil {
		data, err = fs.ReadFile(LevelsFS, clean)
		if err != nil {
			return nil, fmt.Errorf("levels: load %s: %w", clean, err)
		}
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", clean, err)
	}
	return lvl, nil
}

// LoadFile reads a level from an explicit path.
func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", path, err)
	}
	return lvl, nil
}

// Resolve loads name as a path when it points to an existing file and as an
// embedded level name otherwise.
func Resolve(name string) (*Level, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return LoadFile(name)
	}
	return Load(name)
}

// Names lists the embedded level names without extension.
func Names() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isLevelFile(e.Name()) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(out)
	return out
}

// LoadScript reads a goal script, preferring Dir/scripts over the embedded copy.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	data, err := ScriptsFS.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("levels: load script %s: %w", name, err)
	}
	return data, nil
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	if !isLevelFile(s) {
		s += ".yaml"
	}
	return s
}

func cleanScriptPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".tengo"
	}
	return "scripts/" + s
}
