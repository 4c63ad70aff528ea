// Package history provides debounced undo/redo over an opaque document value.
//
// Edits apply to the visible value immediately and are committed to the
// history lazily: a commit happens once no further edit arrives within the
// debounce delay. Undo flushes a pending commit first so the latest edit is
// never lost, and a new commit after an undo discards the redo branch.
package history

import (
	"sync"
	"time"
)

const (
	// DefaultDelay is the debounce window for coalescing edits.
	DefaultDelay = 500 * time.Millisecond
	// DefaultMaxLength caps the number of retained entries.
	DefaultMaxLength = 100
)

// origin tags where a value change came from. Travel changes (undo/redo)
// never schedule a commit.
type origin int

const (
	originEdit origin = iota
	originTravel
)

// Option configures a Manager
type Option func(*options)

type options struct {
	delay     time.Duration
	maxLength int
	scheduler Scheduler
	onChange  []func()
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithMaxLength caps the history length. Values below 1 are raised to 1.
func WithMaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = max(n, 1)
	}
}

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithOnChange registers a callback invoked after the visible value or the
// undo/redo availability changes. Callbacks run without the lock held.
func WithOnChange(fn func()) Option {
	return func(o *options) {
		if fn != nil {
			o.onChange = append(o.onChange, fn)
		}
	}
}

// Manager holds the visible value and its committed history.
type Manager[T any] struct {
	mu sync.Mutex

	entries []T
	cursor  int
	value   T

	pending    Timer
	generation uint64

	opts options
}

// New starts a single-entry history at initial.
func New[T any](initial T, opts ...Option) *Manager[T] {
	o := options{
		delay:     DefaultDelay,
		maxLength: DefaultMaxLength,
		scheduler: RealScheduler{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{
		entries: []T{initial},
		value:   initial,
		opts:    o,
	}
}

// Value returns the visible value, which may be ahead of the last commit.
func (m *Manager[T]) Value() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Set replaces the visible value and (re)starts the debounce timer.
func (m *Manager[T]) Set(v T) {
	m.mu.Lock()
	m.apply(v, originEdit)
	m.mu.Unlock()
	m.notify()
}

// Update applies fn to the visible value as an edit.
func (m *Manager[T]) Update(fn func(T) T) {
	m.Set(fn(m.Value()))
}

// Undo steps back one entry. It is a no-op when already at the first entry
// with nothing pending.
func (m *Manager[T]) Undo() {
	m.mu.Lock()
	if m.cursor == 0 && m.pending == nil {
		m.mu.Unlock()
		return
	}
	if m.pending != nil {
		m.flushLocked()
	}
	if m.cursor > 0 {
		m.cursor--
		m.apply(m.entries[m.cursor], originTravel)
	}
	m.mu.Unlock()
	m.notify()
}

// Redo steps forward one entry. It is a no-op at the last entry.
// A pending edit is committed first, which discards the redo branch.
func (m *Manager[T]) Redo() {
	m.mu.Lock()
	if m.pending != nil {
		m.flushLocked()
		m.mu.Unlock()
		m.notify()
		return
	}
	if m.cursor >= len(m.entries)-1 {
		m.mu.Unlock()
		return
	}
	m.cursor++
	m.apply(m.entries[m.cursor], originTravel)
	m.mu.Unlock()
	m.notify()
}

// Reset discards all history and any pending commit, starting over at v.
func (m *Manager[T]) Reset(v T) {
	m.mu.Lock()
	m.cancelLocked()
	m.entries = []T{v}
	m.cursor = 0
	m.value = v
	m.mu.Unlock()
	m.notify()
}

// Flush commits a pending edit immediately. It reports whether anything was committed.
func (m *Manager[T]) Flush() bool {
	m.mu.Lock()
	if m.pending == nil {
		m.mu.Unlock()
		return false
	}
	m.flushLocked()
	m.mu.Unlock()
	m.notify()
	return true
}

// CanUndo reports whether Undo would change the visible value or commit a pending edit.
func (m *Manager[T]) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor > 0 || m.pending != nil
}

// CanRedo reports whether a forward entry exists. It is false while an edit
// is pending, since committing that edit truncates the forward entries.
func (m *Manager[T]) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending == nil && m.cursor < len(m.entries)-1
}

// Cursor returns the index of the current entry.
func (m *Manager[T]) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Entries returns a copy of the committed entries.
func (m *Manager[T]) Entries() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.entries))
	copy(out, m.entries)
	return out
}

// Pending reports whether an edit is waiting for its debounce commit.
func (m *Manager[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

func (m *Manager[T]) apply(v T, from origin) {
	m.value = v
	if from == originTravel {
		return
	}
	m.cancelLocked()
	gen := m.generation
	m.pending = m.opts.scheduler.AfterFunc(m.opts.delay, func() {
		m.fire(gen)
	})
}

// fire is the debounce callback. Callbacks from timers that were stopped or
// replaced after they started running are ignored.
func (m *Manager[T]) fire(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.pending == nil {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.generation++
	m.commitLocked(m.value)
	m.mu.Unlock()
	m.notify()
}

func (m *Manager[T]) flushLocked() {
	m.cancelLocked()
	m.commitLocked(m.value)
}

func (m *Manager[T]) cancelLocked() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.generation++
}

// commitLocked truncates the redo branch, appends v and evicts the oldest
// entries beyond the cap.
func (m *Manager[T]) commitLocked(v T) {
	m.entries = append(m.entries[:m.cursor+1], v)
	if over := len(m.entries) - m.opts.maxLength; over > 0 {
		m.entries = append([]T(nil), m.entries[over:]...)
	}
	m.cursor = len(m.entries) - 1
}

func (m *Manager[T]) notify() {
	for _, fn := range m.opts.onChange {
		fn()
	}
}
