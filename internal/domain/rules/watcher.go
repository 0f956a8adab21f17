package rules

import (
	"github.com/fsnotify/fsnotify"

	"github.com/praxis-legal/docketcalc/pkg/errors"
)

// Watch re-runs LoadDir whenever a file in dir is created, written,
// renamed, or removed, so rule edits take effect without a restart.
// onReload, if non-nil, receives the outcome of each reload attempt; a
// failed reload leaves the previously registered rules in place.  Rules
// whose files are deleted stay registered until the process restarts,
// since LoadDir only reads what is on disk.
//
// The returned stop function releases the underlying watcher.
func (r *Registry) Watch(dir string, onReload func(error)) (func() error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "creating rule watcher")
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, errors.Wrap(err, errors.CodeInternal, "watching rule dir "+dir)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				reloadErr := r.LoadDir(dir)
				if onReload != nil {
					onReload(reloadErr)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w.Close, nil
}
