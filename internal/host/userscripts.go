package host

import (
	"fmt"
	"os"
	"sort"

	"github.com/boyter/gocodewalker"
)

// LoadUserScripts walks dir for .js files and returns their contents in path
// order, so injection order is deterministic. Ignore files (.gitignore and
// friends) inside the directory are honored.
func LoadUserScripts(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("user scripts directory: %w", err)
	}

	queue := make(chan *gocodewalker.File, 100)
	walker := gocodewalker.NewFileWalker(dir, queue)
	walker.AllowListExtensions = append(walker.AllowListExtensions, "js")
	walker.SetErrorHandler(func(err error) bool { return true })

	errCh := make(chan error, 1)
	go func() { errCh <- walker.Start() }()

	var paths []string
	for f := range queue {
		paths = append(paths, f.Location)
	}
	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("failed to walk user scripts: %w", err)
	}
	sort.Strings(paths)

	scripts := make([]string, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read user script %s: %w", p, err)
		}
		scripts = append(scripts, string(content))
	}
	return scripts, nil
}
