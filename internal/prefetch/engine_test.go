package prefetch

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"imgview/internal/display"
	"imgview/internal/errors"
	"imgview/internal/notify"
	"imgview/internal/pathseq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%02d.png", i)
	}
	return out
}

func textDecoder() display.Decoder {
	return display.DecoderFunc(func(path string) (*display.Displayable, error) {
		return display.NewText(path), nil
	})
}

func drain(e *Engine) int {
	steps := 0
	for e.Step() {
		steps++
	}
	return steps
}

func keys(m map[string]SlotState) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sorted(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}

func TestStepOrder(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(10), 5))
	var order []string
	dec := display.DecoderFunc(func(path string) (*display.Displayable, error) {
		order = append(order, path)
		return display.NewText(path), nil
	})
	e := NewEngine(seq, dec, notify.New(), WithRange(2))

	assert.Equal(t, 5, drain(e))
	assert.Equal(t, []string{"/d/05.png", "/d/06.png", "/d/04.png", "/d/07.png", "/d/03.png"}, order)
}

func TestWindowInvariant(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(20), 0))
	e := NewEngine(seq, textDecoder(), notify.New(), WithRange(3))
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 50; round++ {
		cursor := rng.Intn(20)
		seq.With(func(s *pathseq.Sequence) { s.SetCursor(cursor) })
		e.NotifyPositionChanged()
		drain(e)

		_, window := seq.Window(3)
		snapshot := e.Snapshot()
		require.Equal(t, sorted(window), keys(snapshot), "cursor %d", cursor)
		for path, state := range snapshot {
			assert.Equal(t, Decoded, state, path)
		}
	}
}

func TestShortSequenceClamps(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(2), 1))
	e := NewEngine(seq, textDecoder(), notify.New(), WithRange(3))

	assert.Equal(t, 2, drain(e))
	assert.Equal(t, []string{"/d/00.png", "/d/01.png"}, keys(e.Snapshot()))
}

func TestEmptySequence(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", nil, 0))
	e := NewEngine(seq, textDecoder(), notify.New())
	assert.False(t, e.Step())
	assert.Empty(t, e.Snapshot())
}

func TestShrinkingSequenceEvicts(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(5), 2))
	e := NewEngine(seq, textDecoder(), notify.New(), WithRange(3))
	drain(e)
	require.Len(t, e.Snapshot(), 5)

	seq.With(func(s *pathseq.Sequence) {
		s.Filter(func(path string) bool { return path != "/d/04.png" && path != "/d/00.png" })
	})
	drain(e)
	assert.Equal(t, []string{"/d/01.png", "/d/02.png", "/d/03.png"}, keys(e.Snapshot()))
}

func TestFailureBecomesFailedSlot(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", []string{"bad.png", "panic.png", "nil.png", "plain.png"}, 0))
	dec := display.DecoderFunc(func(path string) (*display.Displayable, error) {
		switch path {
		case "/d/bad.png":
			return nil, errors.NewDecodeError("cannot decode image", path, "png", errors.DecodeFailed, nil)
		case "/d/panic.png":
			panic("corrupt huffman table")
		case "/d/plain.png":
			return nil, fmt.Errorf("read /d/plain.png: input/output error")
		}
		return nil, nil
	})
	e := NewEngine(seq, dec, notify.New(), WithRange(2))
	drain(e)

	for _, path := range []string{"/d/bad.png", "/d/panic.png", "/d/nil.png", "/d/plain.png"} {
		slot, ok := e.Lookup(path)
		require.True(t, ok, path)
		assert.Equal(t, Failed, slot.State, path)
		assert.True(t, errors.IsDecodeError(slot.Err), path)
	}

	frame := e.Frame("/d/bad.png")
	assert.False(t, frame.Loading)
	require.NotNil(t, frame.Shown)
	assert.Equal(t, display.KindMessage, frame.Shown.Kind)
	assert.Contains(t, frame.Shown.Text, "cannot decode image")

	slot, _ := e.Lookup("/d/panic.png")
	assert.Contains(t, slot.Err.Error(), "corrupt huffman table")

	slot, _ = e.Lookup("/d/plain.png")
	assert.Equal(t, errors.DecodeFailed, errors.KindOf(slot.Err))
	assert.Contains(t, slot.Err.Error(), "input/output error")
}

func TestStaleCommitDiscarded(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/old", []string{"a.png"}, 0))
	entered := make(chan struct{})
	release := make(chan struct{})
	dec := display.DecoderFunc(func(path string) (*display.Displayable, error) {
		if path == "/old/a.png" {
			close(entered)
			<-release
		}
		return display.NewText(path), nil
	})
	e := NewEngine(seq, dec, notify.New(), WithRange(1))

	done := make(chan bool)
	go func() { done <- e.Step() }()
	<-entered

	seq.Replace(pathseq.New("/new", []string{"b.png"}, 0))
	e.Reset()
	close(release)
	assert.True(t, <-done)

	_, ok := e.Lookup("/old/a.png")
	assert.False(t, ok)

	drain(e)
	assert.Equal(t, []string{"/new/b.png"}, keys(e.Snapshot()))
}

func TestInvalidateDuringDecode(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", []string{"a.png"}, 0))
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	dec := display.DecoderFunc(func(path string) (*display.Displayable, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			entered <- struct{}{}
			<-release
		}
		return display.NewText(fmt.Sprintf("version %d", n)), nil
	})
	e := NewEngine(seq, dec, notify.New(), WithRange(0))

	done := make(chan bool)
	go func() { done <- e.Step() }()
	<-entered

	// Still claimed: a second worker must not decode it concurrently.
	assert.False(t, e.Step())

	e.Invalidate("/d/a.png")
	close(release)
	<-done

	_, ok := e.Lookup("/d/a.png")
	assert.False(t, ok)

	drain(e)
	slot, ok := e.Lookup("/d/a.png")
	require.True(t, ok)
	assert.Equal(t, "version 2", slot.Item.Text)
}

func TestFrameKeepsPreviousWhileLoading(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(20), 0))
	e := NewEngine(seq, textDecoder(), notify.New(), WithRange(1))
	drain(e)

	first := e.Frame("/d/00.png")
	require.False(t, first.Loading)
	assert.Equal(t, "/d/00.png", first.Shown.Text)

	seq.With(func(s *pathseq.Sequence) { s.SetCursor(10) })
	e.Reset()

	frame := e.Frame("/d/10.png")
	assert.True(t, frame.Loading)
	require.NotNil(t, frame.Shown)
	assert.Equal(t, "/d/00.png", frame.Shown.Text)

	drain(e)
	frame = e.Frame("/d/10.png")
	assert.False(t, frame.Loading)
	assert.Equal(t, "/d/10.png", frame.Shown.Text)
}

func TestFrameBeforeAnything(t *testing.T) {
	e := NewEngine(pathseq.NewGuarded(nil), textDecoder(), notify.New())
	frame := e.Frame("/x.png")
	assert.True(t, frame.Loading)
	assert.Nil(t, frame.Shown)
}

func TestNoConcurrentDuplicateDecode(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(40), 0))
	var mu sync.Mutex
	active := map[string]bool{}
	duplicates := 0
	dec := display.DecoderFunc(func(path string) (*display.Displayable, error) {
		mu.Lock()
		if active[path] {
			duplicates++
		}
		active[path] = true
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		delete(active, path)
		mu.Unlock()
		return display.NewText(path), nil
	})
	redraw := notify.New()
	e := NewEngine(seq, dec, redraw, WithRange(3), WithWorkers(4))
	e.Start(context.Background())

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		cursor := rng.Intn(40)
		seq.With(func(s *pathseq.Sequence) { s.SetCursor(cursor) })
		e.NotifyPositionChanged()
		if i%25 == 0 {
			e.Invalidate(fmt.Sprintf("/d/%02d.png", cursor))
		}
		time.Sleep(100 * time.Microsecond)
	}

	require.NoError(t, e.Stop())
	assert.Zero(t, duplicates)

	// Quiescent state matches the window once the remaining work is drained.
	e2 := NewEngine(seq, dec, redraw, WithRange(3))
	drain(e2)
	_, window := seq.Window(3)
	assert.Equal(t, sorted(window), keys(e2.Snapshot()))
}

func TestWorkersReachQuiescence(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(12), 6))
	redraw := notify.New()
	e := NewEngine(seq, textDecoder(), redraw, WithRange(2), WithWorkers(3))
	e.Start(context.Background())
	defer e.Stop()

	select {
	case <-redraw.C():
	case <-time.After(2 * time.Second):
		t.Fatal("no redraw requested")
	}

	_, window := seq.Window(2)
	require.Eventually(t, func() bool {
		snapshot := e.Snapshot()
		if len(snapshot) != len(window) {
			return false
		}
		for _, p := range window {
			if snapshot[p] != Decoded {
				return false
			}
		}
		return true
	}, 2*time.Second, 5*time.Millisecond)

	seq.With(func(s *pathseq.Sequence) { s.SetCursor(0) })
	e.NotifyPositionChanged()
	_, window = seq.Window(2)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(sorted(window), keys(e.Snapshot()))
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStopOnContextCancel(t *testing.T) {
	seq := pathseq.NewGuarded(pathseq.New("/d", names(3), 0))
	e := NewEngine(seq, textDecoder(), notify.New(), WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)
	cancel()

	done := make(chan error)
	go func() { done <- e.Stop() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
	assert.False(t, e.Step())
}

func TestOptionsAndStrings(t *testing.T) {
	e := NewEngine(pathseq.NewGuarded(nil), textDecoder(), notify.New(), WithRange(-1), WithWorkers(0))
	assert.Equal(t, DefaultRange, e.Range())
	assert.Equal(t, DefaultWorkers, e.Workers())

	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "decoded", Decoded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", SlotState(7).String())
	assert.NoError(t, e.Stop())
}
