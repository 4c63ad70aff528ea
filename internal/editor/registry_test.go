package editor

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OpenGetClose(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	s := r.Open(id, legacyRaw())
	assert.Equal(t, id, s.ID())

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Close(id))
	assert.False(t, r.Close(id))
	_, ok = r.Get(id)
	assert.False(t, ok)
}

func TestRegistry_OpenReplacesExisting(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	first := r.Open(id, legacyRaw())
	second := r.Open(id, nil)

	got, _ := r.Get(id)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
	assert.Equal(t, UnreadableNotice, got.Notice())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_IDsSorted(t *testing.T) {
	r := NewRegistry()
	a := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	r.Open(a, nil)
	r.Open(b, nil)

	assert.Equal(t, []uuid.UUID{b, a}, r.IDs())
}

func TestRegistry_DefaultOptionsApplied(t *testing.T) {
	var calls int
	r := NewRegistry(func(*Session) { calls++ })
	r.Open(uuid.New(), nil)
	assert.Equal(t, 1, calls)
}

func TestRegistry_GetOrOpen(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	s, opened, err := r.GetOrOpen(id, func() (any, error) { return legacyRaw(), nil })
	require.NoError(t, err)
	assert.True(t, opened)
	assert.Equal(t, "Jane Doe", s.Document().Basics.Name)

	loads := 0
	again, opened, err := r.GetOrOpen(id, func() (any, error) {
		loads++
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Same(t, s, again)
	assert.Zero(t, loads)
}

func TestRegistry_GetOrOpenLoadError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("store unavailable")

	_, _, err := r.GetOrOpen(uuid.New(), func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, r.Len())
}

func TestRegistry_GetOrOpenConcurrent(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	const callers = 32
	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		sessions = make([]*Session, callers)
		opened   = make([]bool, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			s, ok, err := r.GetOrOpen(id, func() (any, error) { return legacyRaw(), nil })
			assert.NoError(t, err)
			sessions[i], opened[i] = s, ok
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i := range sessions {
		assert.Same(t, sessions[0], sessions[i])
		if opened[i] {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Same(t, sessions[0], got)
}
