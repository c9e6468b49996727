package controller

import (
	"imgview/internal/log"
	"imgview/internal/watch"
	"imgview/pkg/types"
)

// startWatcher follows the current directory. Listing changes refresh the
// sequence; rewritten files are decoded again.
func (c *Controller) startWatcher() {
	w, err := watch.New()
	if err != nil {
		log.LogWithError(err).Warn("Auto-refresh disabled")
		return
	}
	if base := c.seq.Base(); base != "" {
		if err := w.Retarget(base); err != nil {
			log.LogWithError(err).Warn("Auto-refresh disabled")
			w.Stop()
			return
		}
	}
	if err := w.Start(); err != nil {
		log.LogWithError(err).Warn("Auto-refresh disabled")
		w.Stop()
		return
	}
	c.watcher = w
	go c.consume(w.Changes())
}

func (c *Controller) consume(changes <-chan watch.Change) {
	for change := range changes {
		switch change.Kind {
		case watch.Listing:
			if err := c.Do(types.RefreshFiles, ""); err != nil {
				return
			}
		case watch.Content:
			c.engine.Invalidate(change.Path)
			c.signal.Request()
		}
	}
}

// retarget moves the watcher to dir. Must hold c.mu.
func (c *Controller) retarget(dir string) {
	if c.watcher == nil {
		return
	}
	if err := c.watcher.Retarget(dir); err != nil {
		log.LogWithError(err).Warn("Failed to watch directory")
	}
}
