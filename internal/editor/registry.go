package editor

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registry holds the open sessions keyed by document id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	defaults []Option
}

// NewRegistry creates an empty registry. defaults are applied to every
// session it opens, before per-call options.
func NewRegistry(defaults ...Option) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		defaults: defaults,
	}
}

// Open starts a session for id from raw, replacing any session already open
// for that id.
func (r *Registry) Open(id uuid.UUID, raw any, opts ...Option) *Session {
	s := r.open(id, raw, opts)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s
}

// GetOrOpen returns the session open for id, or opens one from the value load
// returns. load runs without the lock held; when another caller opens id
// first, its session is kept and the loaded value is dropped. The boolean
// reports whether this call opened the session.
func (r *Registry) GetOrOpen(id uuid.UUID, load func() (any, error), opts ...Option) (*Session, bool, error) {
	if s, ok := r.Get(id); ok {
		return s, false, nil
	}
	raw, err := load()
	if err != nil {
		return nil, false, err
	}
	fresh := r.open(id, raw, opts)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, false, nil
	}
	r.sessions[id] = fresh
	return fresh, true, nil
}

func (r *Registry) open(id uuid.UUID, raw any, opts []Option) *Session {
	all := make([]Option, 0, len(r.defaults)+len(opts)+1)
	all = append(all, r.defaults...)
	all = append(all, opts...)
	all = append(all, WithID(id))
	return Open(raw, all...)
}

// Get returns the open session for id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close forgets the session for id. It reports whether one was open.
func (r *Registry) Close(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// IDs returns the ids of all open sessions in a stable order.
func (r *Registry) IDs() []uuid.UUID {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
