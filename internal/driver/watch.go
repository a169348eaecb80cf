package driver

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the event bursts editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch re-checks whenever a watched module changes and hands each result
// to onResult. It returns when ctx is cancelled or the watcher fails. The
// first check runs immediately.
func Watch(ctx context.Context, cfg Config, debounce time.Duration, onResult func(*Result)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch directories, not files: editors replace files on save, which
	// drops file-level watches.
	dirs := make(map[string]bool)
	for _, p := range cfg.Paths {
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}

	watched := make(map[string]bool, len(cfg.Paths))
	for _, p := range cfg.Paths {
		watched[filepath.Clean(p)] = true
	}

	runOnce := func() {
		res, err := Check(ctx, cfg)
		if err != nil {
			return
		}
		onResult(res)
	}
	runOnce()

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			runOnce()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			_ = err // transient watcher errors are not fatal
		}
	}
}
