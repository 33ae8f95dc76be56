package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/grindlemire/go-tagx/internal/debug"
)

// DefaultDebounce is the quiet period Watch waits for before reporting.
const DefaultDebounce = 300 * time.Millisecond

// Watch watches the directories named by paths (same forms as
// CollectTemplates) and calls onChange with the templates written or
// created since the last call, after debounce of quiet. It returns when ctx
// is done. onChange is never called concurrently.
func Watch(ctx context.Context, paths []string, debounce time.Duration, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	recursive := map[string]bool{}
	for _, path := range paths {
		if root, ok := recursiveRoot(path); ok {
			if err := addTree(watcher, root); err != nil {
				return err
			}
			abs, _ := filepath.Abs(root)
			recursive[abs] = true
			continue
		}
		dir := path
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	var (
		mu       sync.Mutex
		pending  = map[string]struct{}{}
		timer    *time.Timer
		running  sync.Mutex
		inFlight sync.WaitGroup
	)
	flush := func() {
		mu.Lock()
		changed := make([]string, 0, len(pending))
		for f := range pending {
			changed = append(changed, f)
		}
		pending = map[string]struct{}{}
		mu.Unlock()
		if len(changed) == 0 {
			return
		}
		sort.Strings(changed)

		running.Lock()
		defer running.Unlock()
		debug.Build("watch: %d changed", len(changed))
		onChange(changed)
	}
	defer inFlight.Wait()

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil && timer.Stop() {
				inFlight.Done()
			}
			mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if event.Has(fsnotify.Create) && underRecursiveRoot(recursive, event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(watcher, event.Name)
					continue
				}
			}
			if !strings.HasSuffix(event.Name, Ext) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			mu.Lock()
			pending[event.Name] = struct{}{}
			if timer != nil && timer.Stop() {
				inFlight.Done()
			}
			inFlight.Add(1)
			timer = time.AfterFunc(debounce, func() {
				defer inFlight.Done()
				flush()
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			debug.Build("watch error: %v", err)
		}
	}
}

// addTree watches root and every directory below it that CollectTemplates
// would walk.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", p, err)
		}
		return nil
	})
}

func underRecursiveRoot(roots map[string]bool, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for root := range roots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
