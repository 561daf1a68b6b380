// Package preview manages the renderable references created for uploaded
// creatives. A Handle is acquired when a creative is ingested and is owned by
// exactly one creative; the owner releases it once when the creative is
// removed or its working set is discarded.
package preview

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrReleased is returned when a handle is released a second time.
var ErrReleased = errors.New("preview already released")

// Registry tracks live handles so leaks are observable.
type Registry struct {
	mu   sync.Mutex
	live map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[string]struct{})}
}

// Acquire materializes a data URI for data and registers a new handle.
func (r *Registry) Acquire(mimeType string, data []byte) *Handle {
	h := &Handle{
		id:  uuid.NewString(),
		uri: DataURI(mimeType, data),
		reg: r,
	}
	r.mu.Lock()
	r.live[h.id] = struct{}{}
	r.mu.Unlock()
	return h
}

// Live returns the number of acquired handles not yet released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *Registry) release(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[id]; !ok {
		return false
	}
	delete(r.live, id)
	return true
}

// Handle is an exclusively owned preview reference.
type Handle struct {
	id  string
	uri string
	reg *Registry
}

// URI returns the renderable reference. It stays valid as a string after
// Release, since saved tests keep a copy of it by value.
func (h *Handle) URI() string {
	return h.uri
}

// Release returns the handle to its registry. Only the first call succeeds.
func (h *Handle) Release() error {
	if !h.reg.release(h.id) {
		return ErrReleased
	}
	return nil
}

// ReleaseAll releases every handle, ignoring ones already released.
func ReleaseAll(handles []*Handle) {
	for _, h := range handles {
		if h != nil {
			_ = h.Release()
		}
	}
}
