// Package controller turns user intents into moves over the directory tree
// and keeps the prefetch engine following the navigation position.
package controller

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"imgview/internal/config"
	"imgview/internal/display"
	"imgview/internal/errors"
	"imgview/internal/history"
	"imgview/internal/listing"
	"imgview/internal/log"
	"imgview/internal/notify"
	"imgview/internal/pathseq"
	"imgview/internal/prefetch"
	"imgview/internal/treewalk"
	"imgview/internal/watch"
	"imgview/pkg/types"
)

// Controller owns the navigation position. Do is safe to call from any
// goroutine; intents are applied one at a time.
type Controller struct {
	mu sync.Mutex

	root    string
	seq     *pathseq.Guarded
	lister  *listing.Lister
	walker  *treewalk.Walker
	engine  *prefetch.Engine
	signal  *notify.Signal
	history *history.Store
	watcher *watch.Watcher
	watch   bool

	info       types.InfoFormat
	pageSelect bool
	pageBuffer string

	cancel    context.CancelFunc
	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
	err       error
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory resumes directories at their remembered entry and records the
// position when leaving a directory. The controller closes the store.
func WithHistory(store *history.Store) Option {
	return func(c *Controller) { c.history = store }
}

// WithSignal shares an existing redraw signal.
func WithSignal(s *notify.Signal) Option {
	return func(c *Controller) { c.signal = s }
}

// WithoutWatcher disables auto-refresh regardless of the configuration.
func WithoutWatcher() Option {
	return func(c *Controller) { c.watch = false }
}

// Open resolves path the way the command line does and starts the workers.
// A file opens its directory positioned on that file. A directory opens on
// its first displayable entry, or on the remembered one. A directory with no
// displayables of its own opens the first viewable directory after it.
func Open(path string, cfg *config.Config, decoder display.Decoder, opts ...Option) (*Controller, error) {
	if cfg == nil {
		cfg = config.New()
	}
	lister, err := listing.New(cfg.Navigation.Ignore...)
	if err != nil {
		return nil, err
	}
	walker := treewalk.New(lister, treewalk.WithMaxDepth(cfg.Navigation.MaxDepth))

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewFileError("invalid path", path, errors.InvalidPath, err)
	}
	if !listing.Exists(abs) {
		return nil, errors.NewFileError("no such file or directory", abs, errors.FileNotFound, nil)
	}

	dir := abs
	if !listing.IsDirectory(abs) {
		dir = filepath.Dir(abs)
	}
	seq, err := pathseq.Open(lister, dir)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(dir)

	c := newController(seq, root, walker, decoder, cfg, opts...)

	switch {
	case abs != dir:
		if !seq.SetCursorByName(filepath.Base(abs)) {
			c.abandon()
			return nil, errors.NewFileError("no such file", abs, errors.FileNotFound, nil)
		}
	case seq.Empty():
		found, ok := walker.FindViewable(dir, true)
		if !ok {
			found, ok = walker.NextDirectory(dir, false, root)
		}
		if !ok {
			c.abandon()
			return nil, fmt.Errorf("%s: %w", dir, errors.ErrNoDisplayableEntries)
		}
		if seq, err = pathseq.Open(lister, found); err != nil {
			c.abandon()
			return nil, err
		}
		c.recall(seq)
		c.seq.Replace(seq)
	default:
		c.recall(seq)
	}

	c.start()
	log.LogWithFields(log.F("path", c.seq.Get().Current()), log.F("root", root),
		log.F("cache_range", c.engine.Range()), log.F("workers", c.engine.Workers())).Info("Viewer opened")
	return c, nil
}

func newController(seq *pathseq.Sequence, root string, walker *treewalk.Walker, decoder display.Decoder, cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		root:   filepath.Clean(root),
		seq:    pathseq.NewGuarded(seq),
		lister: walker.Lister(),
		walker: walker,
		watch:  cfg.Navigation.Watch,
		done:   make(chan struct{}),
	}
	if info, err := types.ParseInfoFormat(cfg.Display.Info); err == nil {
		c.info = info
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.signal == nil {
		c.signal = notify.New()
	}
	c.engine = prefetch.NewEngine(c.seq, decoder, c.signal,
		prefetch.WithRange(cfg.Cache.Range),
		prefetch.WithWorkers(cfg.Cache.Workers))
	return c
}

// abandon releases what Open was handed when startup fails.
func (c *Controller) abandon() {
	if c.history != nil {
		_ = c.history.Close()
	}
}

// recall moves seq to the entry remembered for its directory, if any.
func (c *Controller) recall(seq *pathseq.Sequence) {
	if c.history == nil {
		return
	}
	name, ok, err := c.history.Recall(seq.Base())
	if err != nil {
		log.LogWithError(err).Warn("Failed to read history")
		return
	}
	if ok && !seq.SetCursorByName(name) {
		log.LogWithFields(log.F("dir", seq.Base()), log.F("name", name)).Debug("Remembered entry is gone")
	}
}

// remember records the current entry of seq.
func (c *Controller) remember(seq *pathseq.Sequence) {
	if c.history == nil || seq.Empty() {
		return
	}
	if err := c.history.Remember(seq.Base(), seq.CurrentName()); err != nil {
		log.LogWithError(err).Warn("Failed to write history")
	}
}

func (c *Controller) start() {
	var ctx context.Context
	ctx, c.cancel = context.WithCancel(context.Background())
	c.engine.Start(ctx)

	if c.watch {
		c.startWatcher()
	}
	c.engine.NotifyPositionChanged()
	c.signal.Request()
}

// Root returns the directory navigation never leaves.
func (c *Controller) Root() string { return c.root }

// Engine exposes the prefetch cache.
func (c *Controller) Engine() *prefetch.Engine { return c.engine }

// Redraw delivers coalesced repaint requests.
func (c *Controller) Redraw() <-chan struct{} { return c.signal.C() }

// Done is closed when the session ends, either by QuitApp or because nothing
// viewable is left.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Err returns why the session ended. It is nil while running and after a
// normal quit, and ErrNavigationExhausted after a fatal recovery.
func (c *Controller) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Sequence returns a copy of the navigation position.
func (c *Controller) Sequence() *pathseq.Sequence { return c.seq.Get() }

// Frame returns what the front-end should draw now.
func (c *Controller) Frame() prefetch.Frame {
	return c.engine.Frame(c.seq.Get().Current())
}

// finish ends the session once and releases the workers.
func (c *Controller) finish(err error) {
	c.doneOnce.Do(func() {
		c.err = err
		close(c.done)
	})
	c.shutdown()
}

func (c *Controller) shutdown() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if err := c.engine.Stop(); err != nil {
			log.LogWithError(err).Warn("Prefetch workers stopped with error")
		}
		if c.watcher != nil {
			c.watcher.Stop()
		}
		c.remember(c.seq.Get())
		if c.history != nil {
			if err := c.history.Close(); err != nil {
				log.LogWithError(err).Warn("Failed to close history")
			}
		}
		c.signal.Request()
	})
}

// Close ends the session and waits for the workers.
func (c *Controller) Close() error {
	c.finish(nil)
	return nil
}

// Do applies one intent. key is the pressed key name and matters only for
// PageSelectNum.
func (c *Controller) Do(action types.Action, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return errors.ErrControllerUnavailable
	default:
	}

	log.LogWithFields(log.F("action", action.String())).Debug("Applying action")

	switch action {
	case types.None:
	case types.QuitApp:
		c.finish(nil)
	case types.NextPage, types.PrevPage:
		c.movePage(action == types.PrevPage)
	case types.NextWork, types.PrevWork:
		c.moveWork(action == types.PrevWork)
	case types.RefreshFiles:
		c.refresh()
	case types.PageSelectOn:
		c.pageSelect = true
		c.pageBuffer = ""
		c.signal.Request()
	case types.PageSelectOff:
		c.pageSelect = false
		c.signal.Request()
	case types.PageSelectNum:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			c.pageBuffer += key
		}
		c.signal.Request()
	case types.PageSelectNumDel:
		if n := len(c.pageBuffer); n > 0 {
			c.pageBuffer = c.pageBuffer[:n-1]
		}
		c.signal.Request()
	case types.PageSelectApply:
		return c.applyPage()
	case types.ToggleShowInfo:
		c.info = c.info.Next()
		c.signal.Request()
	case types.MoveDrawPos, types.ResetDrawPos, types.FitWidth, types.FitHeight:
		// Pan and zoom live in the front-end.
		c.signal.Request()
	default:
		return fmt.Errorf("unknown action %d", action)
	}

	if err := c.Err(); err != nil {
		return err
	}
	return nil
}

// positionChanged notifies the engine and asks for a redraw.
func (c *Controller) positionChanged() {
	c.engine.NotifyPositionChanged()
	c.signal.Request()
}

// replace swaps in seq. Moving to another directory resets the cache and
// moves the watcher.
func (c *Controller) replace(seq *pathseq.Sequence) {
	old := c.seq.Get()
	c.seq.Replace(seq)
	if old.Base() != seq.Base() {
		c.remember(old)
		c.engine.Reset()
		c.retarget(seq.Base())
	}
	c.positionChanged()
}

// checkExistence makes sure the current entry is still on disk. It reports
// true when it is. When it is not, the sequence is repaired (or the session
// ends) and false is returned.
func (c *Controller) checkExistence(reverse bool) bool {
	seq := c.seq.Get()
	result, repaired := c.walker.Recover(seq, reverse, c.root)
	switch result {
	case treewalk.Exists:
		return true
	case treewalk.Retrieved:
		log.LogWithFields(log.F("from", seq.Current()), log.F("to", repaired.Current())).Info("Current entry vanished, moved")
		c.replace(repaired)
	case treewalk.Fatal:
		log.LogWithFields(log.F("root", c.root)).Error("Nothing viewable left")
		c.finish(errors.ErrNavigationExhausted)
	}
	return false
}

func (c *Controller) movePage(reverse bool) {
	moved := false
	c.seq.With(func(s *pathseq.Sequence) {
		next := s.Cursor() + 1
		if reverse {
			next = s.Cursor() - 1
		}
		if s.InBounds(next) && listing.Exists(s.At(next)) {
			moved = s.SetCursor(next)
		}
	})
	if moved {
		c.positionChanged()
		return
	}

	if !c.checkExistence(reverse) {
		return
	}
	// The neighbour is gone or we are at an end; look at the directory again.
	if seq, ok := c.walker.NextFile(c.seq.Get().Current(), reverse); ok {
		c.replace(seq)
	}
}

func (c *Controller) moveWork(reverse bool) {
	if !c.checkExistence(reverse) {
		return
	}
	dir, ok := c.walker.NextDirectory(c.seq.Base(), reverse, c.root)
	if !ok {
		log.LogWithFields(log.F("from", c.seq.Base())).Debug("No further viewable directory")
		return
	}
	seq, err := pathseq.Open(c.lister, dir)
	if err != nil || seq.Empty() {
		log.LogWithFields(log.F("dir", dir)).Warn("Viewable directory could not be opened")
		return
	}
	c.recall(seq)
	c.replace(seq)
}

func (c *Controller) refresh() {
	if !c.checkExistence(false) {
		return
	}
	current := c.seq.Get()
	fresh, err := pathseq.Open(c.lister, current.Base())
	if err != nil || fresh.Empty() {
		return
	}
	fresh.SetCursorByName(current.CurrentName())
	c.replace(fresh)
}

func (c *Controller) applyPage() error {
	c.pageSelect = false
	defer c.signal.Request()

	if !c.checkExistence(false) {
		return c.Err()
	}
	fresh, err := pathseq.Open(c.lister, c.seq.Base())
	if err != nil {
		return err
	}
	page, err := strconv.Atoi(c.pageBuffer)
	if err != nil || page < 1 || page > fresh.Size() {
		return errors.NewInvalidInputError("invalid page number", err).
			WithContext("input", c.pageBuffer).
			WithContext("pages", fresh.Size())
	}
	fresh.SetCursor(page - 1)
	c.replace(fresh)
	return nil
}
