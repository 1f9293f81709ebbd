// Package watcher reports sosreports dropped into a spool directory.
package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sxnet/internal/loader"
)

// Watcher watches a directory for new report tarballs and report directories
type Watcher struct {
	dir      string
	onReport func(path string)
	debounce time.Duration
}

// New creates a watcher for dir. onReport runs once a report has stopped
// changing for the debounce period.
func New(dir string, onReport func(path string)) *Watcher {
	return &Watcher{
		dir:      dir,
		onReport: onReport,
		debounce: 2 * time.Second,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// IsReport reports whether path looks like a report: a directory or a
// supported tarball. Hidden and partial uploads are ignored.
func IsReport(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".part") {
		return false
	}
	if loader.IsArchiveName(name) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Watch blocks until the context is cancelled or the watch cannot be set up.
// ready, if not nil, is closed once the directory is being watched.
//
// Report directories are watched recursively. Every event below a top-level
// entry re-arms that entry's timer, so a report extracted in place is handed
// over only after its last file stopped changing.
func (w *Watcher) Watch(ctx context.Context, ready chan<- struct{}) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	log.Printf("Watching %s for reports", w.dir)
	if ready != nil {
		close(ready)
	}

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// Uploads are usually written under a temporary name and renamed,
			// which arrives as a create of the final name.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			top, ok := w.topLevel(event.Name)
			if !ok {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.addTree(fw, event.Name)
			}

			mu.Lock()
			if t, exists := timers[top]; exists {
				t.Stop()
			}
			timers[top] = time.AfterFunc(w.debounce, func() {
				mu.Lock()
				delete(timers, top)
				mu.Unlock()
				if !IsReport(top) {
					return
				}
				log.Printf("New report: %s", top)
				w.onReport(top)
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// topLevel maps a path below the spool directory to the spool entry holding it
func (w *Watcher) topLevel(path string) (string, bool) {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return filepath.Join(w.dir, first), true
}

// addTree watches path and every directory below it. Files created before the
// watch was added are still covered by the event that triggered it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(p); err != nil {
			log.Printf("Failed to watch %s: %v", p, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to walk %s: %v", path, err)
	}
}
