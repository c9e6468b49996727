package controller

import (
	"fmt"
	"path/filepath"

	"imgview/pkg/types"
)

// Status describes the navigation position for overlays and status bars.
type Status struct {
	Index      int // 1-based, 0 when the sequence is empty
	Size       int
	Path       string
	Info       types.InfoFormat
	InfoLine   string // empty when Info is InfoNone
	PageSelect bool
	PageBuffer string
}

// PageLine is the prompt shown while a page number is typed.
func (s Status) PageLine() string {
	return "Page: " + s.PageBuffer
}

// Status returns the current position.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.seq.Get()
	st := Status{
		Size:       seq.Size(),
		Path:       seq.Current(),
		Info:       c.info,
		PageSelect: c.pageSelect,
		PageBuffer: c.pageBuffer,
	}
	if !seq.Empty() {
		st.Index = seq.Cursor() + 1
	}
	st.InfoLine = c.infoLine(st)
	return st
}

func (c *Controller) infoLine(st Status) string {
	var name string
	switch st.Info {
	case types.InfoShort:
		name = filepath.Join(filepath.Base(filepath.Dir(st.Path)), filepath.Base(st.Path))
	case types.InfoLong:
		rel, err := filepath.Rel(c.root, st.Path)
		if err != nil {
			rel = st.Path
		}
		name = rel
	default:
		return ""
	}
	if st.Path == "" {
		name = ""
	}
	return fmt.Sprintf("[%d/%d]%s", st.Index, st.Size, name)
}
