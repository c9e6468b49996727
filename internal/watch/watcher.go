package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imgview/internal/log"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a change in the watched directory.
type ChangeKind int

const (
	// Listing means entries appeared, disappeared or were renamed.
	Listing ChangeKind = iota
	// Content means an existing file was rewritten.
	Content
)

func (k ChangeKind) String() string {
	if k == Content {
		return "content"
	}
	return "listing"
}

// Change represents an event detected in the watched directory
type Change struct {
	Path      string
	Kind      ChangeKind
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher follows a single directory, the one currently being viewed.
// Retarget moves it whenever the viewer changes directory.
type Watcher struct {
	// Directory being watched, empty when none
	dir string

	changes  chan Change
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	mutex    sync.Mutex
	running  bool
	stopOnce sync.Once
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		changes:   make(chan Change, 64),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// Retarget stops watching the previous directory and starts watching dir.
// Retargeting to the current directory is a no-op.
func (w *Watcher) Retarget(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.dir == dir {
		return nil
	}
	if w.dir != "" {
		// The old directory may already be gone; fsnotify drops it by itself then.
		_ = w.fsWatcher.Remove(w.dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		w.dir = ""
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	w.dir = dir
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Directory returns the directory being watched.
func (w *Watcher) Directory() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.dir
}

// Changes returns the channel that delivers changes. It is closed by Stop.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins the event loop.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			change, ok := w.classify(event)
			if !ok {
				continue
			}
			// Send non-blockingly so a slow consumer never stalls fsnotify.
			select {
			case w.changes <- change:
			default:
				log.LogWithFields(log.F("file", event.Name)).Warn("Change channel is full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// classify drops events outside the watched directory and chmod-only events.
func (w *Watcher) classify(event fsnotify.Event) (Change, bool) {
	if filepath.Dir(event.Name) != w.Directory() {
		return Change{}, false
	}
	change := Change{Path: event.Name, Op: event.Op, Timestamp: time.Now()}
	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		change.Kind = Listing
	case event.Op.Has(fsnotify.Write):
		change.Kind = Content
	default:
		return Change{}, false
	}
	return change, true
}

// Stop halts the watcher and closes the change channel. It is safe to call
// more than once and on a watcher that was never started.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mutex.Lock()
		wasRunning := w.running
		w.running = false
		w.mutex.Unlock()

		close(w.stopChan)
		if err := w.fsWatcher.Close(); err != nil {
			log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
		}
		if wasRunning {
			<-w.done
		}
		close(w.changes)
	})
}
