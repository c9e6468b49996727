// Package pathseq holds the navigation position: a directory, the sorted
// names inside it and a cursor.
package pathseq

import (
	"path/filepath"
	"slices"
	"sync"

	"imgview/internal/listing"
	"imgview/internal/natsort"
)

// Sequence is an ordered list of entry names within one base directory.
// The cursor is always a valid index unless the sequence is empty.
type Sequence struct {
	base   string
	names  []string
	cursor int
}

// New returns a sequence over names in base with the cursor clamped into range.
func New(base string, names []string, cursor int) *Sequence {
	s := &Sequence{base: base, names: names, cursor: cursor}
	s.clamp()
	return s
}

// Open lists the displayable entries of dir as a sequence.
func Open(l *listing.Lister, dir string) (*Sequence, error) {
	names, err := l.Displayables(dir)
	if err != nil {
		return nil, err
	}
	return New(dir, names, 0), nil
}

// OpenDirectories lists the sub-directories of dir as a sequence.
func OpenDirectories(l *listing.Lister, dir string) (*Sequence, error) {
	names, err := l.Directories(dir)
	if err != nil {
		return nil, err
	}
	return New(dir, names, 0), nil
}

func (s *Sequence) clamp() {
	switch {
	case len(s.names) == 0:
		s.cursor = 0
	case s.cursor >= len(s.names):
		s.cursor = len(s.names) - 1
	case s.cursor < 0:
		s.cursor = 0
	}
}

func (s *Sequence) Base() string    { return s.base }
func (s *Sequence) Size() int       { return len(s.names) }
func (s *Sequence) Empty() bool     { return len(s.names) == 0 }
func (s *Sequence) Cursor() int     { return s.cursor }
func (s *Sequence) Names() []string { return slices.Clone(s.names) }

// SetCursor moves the cursor to i. It reports false, leaving the cursor
// alone, when i is out of range.
func (s *Sequence) SetCursor(i int) bool {
	if i < 0 || i >= len(s.names) {
		return false
	}
	s.cursor = i
	return true
}

// SetCursorByName moves the cursor to the entry called name.
func (s *Sequence) SetCursorByName(name string) bool {
	i := slices.Index(s.names, name)
	if i < 0 {
		return false
	}
	s.cursor = i
	return true
}

// At returns the absolute path of entry i.
func (s *Sequence) At(i int) string {
	return filepath.Join(s.base, s.names[i])
}

// InBounds reports whether i is a valid index.
func (s *Sequence) InBounds(i int) bool {
	return i >= 0 && i < len(s.names)
}

// Current returns the absolute path under the cursor, or "" when empty.
func (s *Sequence) Current() string {
	p, _ := s.CurrentOK()
	return p
}

// CurrentOK returns the path under the cursor and whether there is one.
func (s *Sequence) CurrentOK() (string, bool) {
	if len(s.names) == 0 {
		return "", false
	}
	return s.At(s.cursor), true
}

// CurrentName returns the entry name under the cursor.
func (s *Sequence) CurrentName() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[s.cursor]
}

// Sort reorders the names, keeping the cursor on the same entry.
func (s *Sequence) Sort() {
	current := s.CurrentName()
	natsort.Sort(s.names)
	if current != "" {
		s.SetCursorByName(current)
	}
}

// Filter removes every entry whose absolute path fails keep.
func (s *Sequence) Filter(keep func(path string) bool) {
	s.names = slices.DeleteFunc(s.names, func(name string) bool {
		return !keep(filepath.Join(s.base, name))
	})
	s.clamp()
}

// Append adds name at the end.
func (s *Sequence) Append(name string) {
	s.names = append(s.names, name)
}

// Clone returns an independent copy.
func (s *Sequence) Clone() *Sequence {
	return &Sequence{base: s.base, names: slices.Clone(s.names), cursor: s.cursor}
}

// Window returns the absolute paths at offsets 0, +1, -1, +2, -2, ... up to
// radius around the cursor, skipping offsets outside the sequence.
func (s *Sequence) Window(radius int) []string {
	if len(s.names) == 0 {
		return nil
	}
	paths := []string{s.At(s.cursor)}
	for d := 1; d <= radius; d++ {
		if i := s.cursor + d; s.InBounds(i) {
			paths = append(paths, s.At(i))
		}
		if i := s.cursor - d; s.InBounds(i) {
			paths = append(paths, s.At(i))
		}
	}
	return paths
}

// Guarded is a Sequence shared between goroutines.
type Guarded struct {
	mu  sync.Mutex
	seq *Sequence
}

// NewGuarded takes ownership of seq.
func NewGuarded(seq *Sequence) *Guarded {
	if seq == nil {
		seq = New("", nil, 0)
	}
	return &Guarded{seq: seq}
}

// Get returns a copy of the current sequence.
func (g *Guarded) Get() *Sequence {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.Clone()
}

// Replace swaps in a whole new sequence.
func (g *Guarded) Replace(seq *Sequence) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = seq
}

// With runs fn with the lock held. fn must not block.
func (g *Guarded) With(fn func(*Sequence)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.seq)
}

// Window returns the base directory and the window paths around the cursor.
func (g *Guarded) Window(radius int) (string, []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.base, g.seq.Window(radius)
}

// Base returns the current base directory.
func (g *Guarded) Base() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq.base
}
