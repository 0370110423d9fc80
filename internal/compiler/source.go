package compiler

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source looks up spec text by handle.
type Source interface {
	Lookup(handle string) (Spec, bool)
	Handles() []string
}

// Dir is a Source backed by a directory laid out as <root>/<context>/<holon>.cue.
type Dir struct {
	root string
}

// NewDir creates a directory source. The directory need not exist yet.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory the source reads from.
func (d *Dir) Root() string { return d.root }

// Lookup reads the spec for handle, if its file exists.
func (d *Dir) Lookup(handle string) (Spec, bool) {
	ctx, holon, ok := strings.Cut(handle, ".")
	if !ok || d.root == "" {
		return Spec{}, false
	}
	file := filepath.Join(d.root, ctx, holon+".cue")
	data, err := os.ReadFile(file)
	if err != nil {
		return Spec{}, false
	}
	return Spec{Handle: handle, Source: string(data), Origin: file}, true
}

// Handles lists every handle with a spec file, sorted.
func (d *Dir) Handles() []string {
	files, err := FindCUEFiles(d.root)
	if err != nil {
		return nil
	}
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(d.root, f)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 2 {
			continue
		}
		out = append(out, parts[0]+"."+strings.TrimSuffix(parts[1], ".cue"))
	}
	sort.Strings(out)
	return out
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Map is an in-memory Source keyed by handle.
type Map map[string]string

// Lookup returns the spec text stored for handle.
func (m Map) Lookup(handle string) (Spec, bool) {
	src, ok := m[handle]
	if !ok {
		return Spec{}, false
	}
	return Spec{Handle: handle, Source: src}, true
}

// Handles lists the stored handles, sorted.
func (m Map) Handles() []string {
	out := make([]string, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
