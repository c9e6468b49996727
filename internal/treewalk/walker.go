// Package treewalk moves through a directory tree one viewable directory at
// a time and repairs the navigation position when entries disappear.
package treewalk

import (
	"path/filepath"
	"slices"

	"imgview/internal/errors"
	"imgview/internal/listing"
	"imgview/internal/log"
	"imgview/internal/natsort"
	"imgview/internal/pathseq"
)

// DefaultMaxDepth bounds directory recursion when no option is given.
const DefaultMaxDepth = 64

// Result is the outcome of Recover.
type Result int

const (
	// Exists means the current entry is still on disk.
	Exists Result = iota
	// Retrieved means the sequence was repaired.
	Retrieved
	// Fatal means nothing viewable is left under the root.
	Fatal
)

func (r Result) String() string {
	switch r {
	case Exists:
		return "exists"
	case Retrieved:
		return "retrieved"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Walker runs searches over the tree through a Lister.
type Walker struct {
	lister   *listing.Lister
	maxDepth int
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxDepth caps how deep FindViewable descends.
func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		if depth > 0 {
			w.maxDepth = depth
		}
	}
}

// New returns a Walker listing directories through l.
func New(l *listing.Lister, opts ...Option) *Walker {
	w := &Walker{lister: l, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Lister returns the lister the walker reads directories with.
func (w *Walker) Lister() *listing.Lister {
	return w.lister
}

// FindViewable returns the first directory, in depth-first sorted order
// starting at dir, that directly contains a displayable entry. With skipSelf
// the entries of dir itself are not considered, only its descendants.
func (w *Walker) FindViewable(dir string, skipSelf bool) (string, bool) {
	return w.findViewable(filepath.Clean(dir), skipSelf, 0, map[string]bool{})
}

func (w *Walker) findViewable(dir string, skipSelf bool, depth int, visited map[string]bool) (string, bool) {
	if depth > w.maxDepth {
		log.LogWithFields(log.F("dir", dir), log.F("depth", depth)).Debug("Directory search depth limit reached")
		return "", false
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if visited[real] {
			return "", false
		}
		visited[real] = true
	}

	names, err := w.lister.List(dir)
	if err != nil {
		// Unreadable directories count as empty.
		if errors.IsFileNotFound(err) {
			log.LogWithError(err).Debug("Directory vanished")
		} else {
			log.LogWithError(err).Warn("Skipping unreadable directory")
		}
		return "", false
	}

	if !skipSelf {
		for _, name := range names {
			if listing.IsDisplayable(filepath.Join(dir, name)) {
				return dir, true
			}
		}
	}
	for _, name := range names {
		full := filepath.Join(dir, name)
		if !listing.IsDirectory(full) {
			continue
		}
		if found, ok := w.findViewable(full, false, depth+1, visited); ok {
			return found, true
		}
	}
	return "", false
}

// NextFile returns a sequence of the displayables next to path, positioned on
// the entry after path (or before it when reverse). It reports false when path
// is not listed or is already at that end.
func (w *Walker) NextFile(path string, reverse bool) (*pathseq.Sequence, bool) {
	seq, err := pathseq.Open(w.lister, filepath.Dir(path))
	if err != nil {
		return nil, false
	}
	i, ok := adjacent(seq.Names(), filepath.Base(path), reverse)
	if !ok {
		return nil, false
	}
	seq.SetCursor(i)
	return seq, true
}

func adjacent(names []string, name string, reverse bool) (int, bool) {
	i := slices.Index(names, name)
	if i < 0 {
		return 0, false
	}
	if reverse {
		i--
	} else {
		i++
	}
	return i, i >= 0 && i < len(names)
}

// NextDirectory returns the next viewable directory after dir in tree order,
// or the previous one when reverse. The walk never leaves root.
func (w *Walker) NextDirectory(dir string, reverse bool, root string) (string, bool) {
	return w.nextDirectory(filepath.Clean(dir), reverse, false, clean(root))
}

func (w *Walker) nextDirectory(dir string, reverse, skipSelf bool, root string) (string, bool) {
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", false
	}

	// Sub-directories follow their parent in tree order.
	if !skipSelf && !reverse {
		if found, ok := w.FindViewable(dir, true); ok {
			return found, true
		}
	}
	if dir == root {
		return "", false
	}

	if siblings, err := w.lister.Directories(parent); err == nil {
		name := filepath.Base(dir)
		for {
			i, ok := adjacent(siblings, name, reverse)
			if !ok {
				break
			}
			name = siblings[i]
			if found, ok := w.FindViewable(filepath.Join(parent, name), false); ok {
				return found, true
			}
		}
	}

	if parent == root {
		return "", false
	}
	return w.nextDirectory(parent, reverse, true, root)
}

// Recover checks that the entry under seq's cursor still exists. When it does
// not, it rebuilds a sequence around the nearest surviving entry: first among
// the missing entry's siblings, then one directory level up at a time, until
// root is reached. seq is never modified.
func (w *Walker) Recover(seq *pathseq.Sequence, reverse bool, root string) (Result, *pathseq.Sequence) {
	root = clean(root)

	missing, ok := seq.CurrentOK()
	images := true
	if ok {
		if listing.Exists(missing) {
			return Exists, seq
		}
	} else {
		base := filepath.Clean(seq.Base())
		if listing.IsDirectory(base) {
			if dir, found := w.FindViewable(base, false); found {
				if repaired, err := pathseq.Open(w.lister, dir); err == nil && !repaired.Empty() {
					return Retrieved, repaired
				}
			}
		}
		missing = base
		images = false
	}

	path := filepath.Dir(missing)
	for {
		if repaired, ok := w.recoverLevel(path, filepath.Base(missing), images, reverse); ok {
			log.LogWithFields(log.F("missing", missing), log.F("base", repaired.Base())).Debug("Recovered navigation position")
			return Retrieved, repaired
		}
		if path == root || filepath.Dir(path) == path {
			return Fatal, seq
		}
		images = false
		missing = path
		path = filepath.Dir(path)
	}
}

// recoverLevel lists path, places the missing name where it would sort among
// the survivors and picks the survivor next to it.
func (w *Walker) recoverLevel(path, missingName string, images, reverse bool) (*pathseq.Sequence, bool) {
	if !listing.IsDirectory(path) {
		return nil, false
	}
	var names []string
	var err error
	if images {
		names, err = w.lister.Displayables(path)
	} else {
		names, err = w.lister.Directories(path)
	}
	if err != nil {
		return nil, false
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == missingName })
	if len(names) == 0 {
		return nil, false
	}

	merged, idx := natsort.Insert(names, missingName)
	survivors := slices.Delete(merged, idx, idx+1)

	if images {
		return pathseq.New(path, survivors, pick(idx, len(survivors), reverse)), true
	}

	for _, i := range candidates(idx, len(survivors), reverse) {
		dir, ok := w.FindViewable(filepath.Join(path, survivors[i]), false)
		if !ok {
			continue
		}
		seq, err := pathseq.Open(w.lister, dir)
		if err != nil || seq.Empty() {
			continue
		}
		return seq, true
	}
	return nil, false
}

// pick chooses the survivor on the preferred side of the gap at idx,
// falling back to the other side. size is never zero.
func pick(idx, size int, reverse bool) int {
	if reverse {
		if idx > 0 {
			return idx - 1
		}
		return idx
	}
	if idx < size {
		return idx
	}
	return idx - 1
}

// candidates orders the survivors for a directory level: the pick first, then
// onwards in the preferred direction, then back the other way.
func candidates(idx, size int, reverse bool) []int {
	out := make([]int, 0, size)
	first := pick(idx, size, reverse)
	out = append(out, first)
	if reverse {
		for i := first - 1; i >= 0; i-- {
			out = append(out, i)
		}
		for i := first + 1; i < size; i++ {
			out = append(out, i)
		}
	} else {
		for i := first + 1; i < size; i++ {
			out = append(out, i)
		}
		for i := first - 1; i >= 0; i-- {
			out = append(out, i)
		}
	}
	return out
}

func clean(root string) string {
	if root == "" {
		return ""
	}
	return filepath.Clean(root)
}
