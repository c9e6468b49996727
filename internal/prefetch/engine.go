// Package prefetch decodes the entries around the navigation cursor in the
// background and keeps a bounded cache of the results.
package prefetch

import (
	"context"
	"fmt"
	"sync"

	"imgview/internal/display"
	"imgview/internal/errors"
	"imgview/internal/log"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultRange   = 3
	DefaultWorkers = 4
)

// SlotState is the decode state of a cached path.
type SlotState int

const (
	Pending SlotState = iota
	Decoded
	Failed
)

func (s SlotState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Decoded:
		return "decoded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Slot is one cache entry.
type Slot struct {
	State SlotState
	Item  *display.Displayable
	Err   error
}

// Displayable returns what should be drawn for the slot: the decoded item,
// a message for a failure, nil while pending.
func (s Slot) Displayable() *display.Displayable {
	switch s.State {
	case Decoded:
		return s.Item
	case Failed:
		return display.NewMessage(s.Err.Error())
	}
	return nil
}

// Source is the navigation position the engine follows. Window returns the
// base directory and the paths around the cursor, nearest first.
type Source interface {
	Window(radius int) (string, []string)
}

// Redrawer is asked to repaint after each commit. Request must not block.
type Redrawer interface {
	Request()
}

// Frame is what a front-end should show for the current path.
type Frame struct {
	Path string
	// Slot is the state of Path itself.
	Slot Slot
	// Shown is the current item, or the last shown item while Path is
	// still loading. It is nil only before anything was ever decoded.
	Shown   *display.Displayable
	Loading bool
}

type claim struct {
	stale bool
}

// Engine is the prefetch cache. Workers scan the window around the cursor in
// the order 0, +1, -1, +2, -2, ... and claim the first path that is neither
// cached nor being decoded.
type Engine struct {
	source  Source
	decoder display.Decoder
	redraw  Redrawer
	radius  int
	workers int

	mu       sync.Mutex
	cond     *sync.Cond
	slots    map[string]*Slot
	inflight map[string]*claim
	lastSlot Slot
	gen      uint64
	stopped  bool

	group      *errgroup.Group
	stopOnDone func() bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRange sets how many entries on each side of the cursor are kept.
func WithRange(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.radius = n
		}
	}
}

// WithWorkers sets the number of decode goroutines started by Start.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(source Source, decoder display.Decoder, redraw Redrawer, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		decoder:  decoder,
		redraw:   redraw,
		radius:   DefaultRange,
		workers:  DefaultWorkers,
		slots:    make(map[string]*Slot),
		inflight: make(map[string]*claim),
	}
	e.cond = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Range() int   { return e.radius }
func (e *Engine) Workers() int { return e.workers }

// Start launches the workers. Cancelling ctx has the same effect as Stop.
func (e *Engine) Start(ctx context.Context) {
	e.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < e.workers; i++ {
		e.group.Go(func() error {
			e.work()
			return nil
		})
	}
	e.stopOnDone = context.AfterFunc(ctx, e.halt)
	log.LogWithFields(log.F("workers", e.workers), log.F("range", e.radius)).Debug("Prefetch workers started")
}

func (e *Engine) work() {
	for {
		e.mu.Lock()
		seen, stopped := e.gen, e.stopped
		e.mu.Unlock()
		if stopped {
			return
		}
		if e.Step() {
			continue
		}
		e.mu.Lock()
		for e.gen == seen && !e.stopped {
			e.cond.Wait()
		}
		e.mu.Unlock()
	}
}

func (e *Engine) halt() {
	e.mu.Lock()
	e.stopped = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Stop asks the workers to exit and waits for them. A decode in progress is
// allowed to finish.
func (e *Engine) Stop() error {
	e.halt()
	if e.stopOnDone != nil {
		e.stopOnDone()
	}
	if e.group != nil {
		return e.group.Wait()
	}
	return nil
}

// NotifyPositionChanged wakes idle workers. It never blocks.
func (e *Engine) NotifyPositionChanged() {
	e.mu.Lock()
	e.gen++
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Step runs one scan, claim, decode and commit round. It reports false when
// there was nothing to claim.
func (e *Engine) Step() bool {
	base, window := e.source.Window(e.radius)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return false
	}
	target := ""
	for _, path := range window {
		if _, cached := e.slots[path]; cached {
			continue
		}
		if _, busy := e.inflight[path]; busy {
			continue
		}
		target = path
		break
	}
	if target == "" {
		e.rebuild(window)
		e.mu.Unlock()
		return false
	}
	e.slots[target] = &Slot{State: Pending}
	c := &claim{}
	e.inflight[target] = c
	e.mu.Unlock()

	slot := e.decode(target)

	nowBase, nowWindow := e.source.Window(e.radius)

	e.mu.Lock()
	delete(e.inflight, target)
	if nowBase == base && !c.stale {
		e.slots[target] = &slot
	} else if s, ok := e.slots[target]; ok && s.State == Pending {
		delete(e.slots, target)
	}
	e.rebuild(nowWindow)
	e.mu.Unlock()

	e.redraw.Request()
	return true
}

func (e *Engine) decode(path string) (slot Slot) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.NewDecodeError("decoder panicked", path, "", errors.DecodeFailed, fmt.Errorf("%v", r))
			log.LogWithError(err).Error("Recovered from decoder panic")
			slot = Slot{State: Failed, Err: err}
		}
	}()

	item, err := e.decoder.Decode(path)
	if err != nil {
		if !errors.IsDecodeError(err) {
			err = errors.NewDecodeError("cannot decode", path, "", errors.DecodeFailed, err)
		}
		log.LogWithError(err).Debug("Decode failed")
		return Slot{State: Failed, Err: err}
	}
	if item == nil {
		return Slot{State: Failed, Err: errors.NewDecodeError("decoder returned nothing", path, "", errors.DecodeFailed, nil)}
	}
	return Slot{State: Decoded, Item: item}
}

// rebuild drops every slot outside window. Must hold e.mu.
func (e *Engine) rebuild(window []string) {
	if len(e.slots) == 0 {
		return
	}
	keep := make(map[string]*Slot, len(window))
	for _, path := range window {
		if s, ok := e.slots[path]; ok {
			keep[path] = s
		}
	}
	e.slots = keep
}

// Lookup returns the slot for path.
func (e *Engine) Lookup(path string) (Slot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slots[path]
	if !ok {
		return Slot{}, false
	}
	return *s, true
}

// Snapshot returns the state of every cached path.
func (e *Engine) Snapshot() map[string]SlotState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]SlotState, len(e.slots))
	for path, s := range e.slots {
		out[path] = s.State
	}
	return out
}

// Frame returns what to draw for path and remembers a finished slot as the
// last shown one.
func (e *Engine) Frame(path string) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.slots[path]; ok && s.State != Pending {
		e.lastSlot = *s
		return Frame{Path: path, Slot: *s, Shown: s.Displayable()}
	}
	return Frame{Path: path, Slot: Slot{State: Pending}, Shown: e.lastSlot.Displayable(), Loading: true}
}

// Reset empties the cache after the directory changed. Decodes in flight are
// discarded when they finish. The last shown frame is kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.slots = make(map[string]*Slot)
	for _, c := range e.inflight {
		c.stale = true
	}
	e.gen++
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Invalidate forgets path so it is decoded again, e.g. after the file was
// rewritten.
func (e *Engine) Invalidate(path string) {
	e.mu.Lock()
	delete(e.slots, path)
	if c, ok := e.inflight[path]; ok {
		c.stale = true
	}
	e.gen++
	e.cond.Broadcast()
	e.mu.Unlock()
}
