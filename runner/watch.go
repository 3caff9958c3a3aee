package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnoverse/cstfix/fixer"
)

// Debounce is how long Watch waits after the last write before running.
var Debounce = 100 * time.Millisecond

// Watch re-executes the query on files under dirs as they are written or
// created, calling onResult for each run. A file whose content is still what
// the runner last wrote to it is not run again. It returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, dirs []string, onResult func(path string, res *fixer.Result, err error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := addTree(w, dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	r.logger.Info("watching", zap.Strings("dirs", dirs))

	pending := map[string]bool{}
	written := map[string]string{}
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := addTree(w, event.Name); err != nil {
					r.logger.Warn("cannot watch directory", zap.String("dir", event.Name), zap.Error(err))
				}
				continue
			}
			if !r.accept(event.Name) {
				continue
			}
			pending[event.Name] = true
			fire = time.After(Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			files := make([]string, 0, len(pending))
			for p := range pending {
				files = append(files, p)
			}
			clear(pending)
			slices.Sort(files)
			for _, p := range files {
				if own, ok := written[p]; ok {
					delete(written, p)
					if data, err := os.ReadFile(p); err == nil && string(data) == own {
						r.logger.Debug("skipping own write", zap.String("file", p))
						continue
					}
				}
				res, err := r.ProcessFile(ctx, p)
				if err == nil && r.write && res.Changed() {
					written[p] = res.Modified
				}
				onResult(p, res, err)
			}
		}
	}
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
