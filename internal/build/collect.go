package build

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the template file extension.
const Ext = ".tgx"

// CollectTemplates finds all templates from the given paths.
// Supports:
//   - Direct file paths: "page.tgx"
//   - Directory paths: "./views" (non-recursive)
//   - Recursive pattern: "./..." or "./views/..."
//
// Hidden directories, vendor and testdata are skipped by the recursive
// pattern. The result is sorted and free of duplicates.
func CollectTemplates(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, path := range paths {
		if root, ok := recursiveRoot(path); ok {
			err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if p != root && skipDir(d.Name()) {
						return filepath.SkipDir
					}
					return nil
				}
				if strings.HasSuffix(p, Ext) {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", root, err)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), Ext) {
					add(filepath.Join(path, entry.Name()))
				}
			}
		} else if strings.HasSuffix(path, Ext) {
			add(path)
		}
	}

	sort.Strings(files)
	return files, nil
}

// recursiveRoot reports whether path uses the "/..." suffix and returns the
// directory to walk.
func recursiveRoot(path string) (string, bool) {
	if path != "..." && !strings.HasSuffix(path, "/...") {
		return "", false
	}
	root := strings.TrimSuffix(strings.TrimSuffix(path, "..."), "/")
	if root == "" {
		root = "."
	}
	return root, true
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" || name == "node_modules"
}
