package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extPriority ranks image extensions; lower wins when two files share a stem.
var extPriority = map[string]int{".tga": 0, ".png": 1, ".jpg": 2, ".jpeg": 2}

// Index maps lowercase file stems to filesystem paths.
// TGA takes priority over PNG, PNG over JPEG, for the same stem.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dirs (not recursively) for texture files.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{entries: make(map[string]string)}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			rank, ok := extPriority[ext]
			if !ok {
				continue
			}
			stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
			path := filepath.Join(dir, e.Name())

			existing, exists := idx.entries[stem]
			if !exists || rank < extPriority[strings.ToLower(filepath.Ext(existing))] {
				idx.entries[stem] = path
			}
		}
	}
	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Directory prefixes and extensions in texName are ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
