package widget

import (
	"fmt"
	"sort"
	"sync"
)

// Registry tracks live background instances by name so that surfaces and
// control input can find them and coordinate panel visibility.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*Background
}

func NewRegistry() *Registry { return &Registry{m: map[string]*Background{}} }

func (r *Registry) Register(b *Background) error {
	if b == nil || b.Name() == "" {
		return fmt.Errorf("register: unnamed background")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.m[b.Name()]; dup {
		return fmt.Errorf("register: %q already registered", b.Name())
	}
	r.m[b.Name()] = b
	return nil
}

// Unregister removes and returns the instance; the caller owns its teardown.
func (r *Registry) Unregister(name string) (*Background, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.m[name]
	delete(r.m, name)
	return b, ok
}

func (r *Registry) Get(name string) (*Background, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.m[name]
	return b, ok
}

// List returns names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// HideOthers shows the panel of except and hides every other panel.
func (r *Registry) HideOthers(except string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, b := range r.m {
		b.SetPanelVisible(name == except)
	}
}

// TeardownAll tears down and forgets every instance.
func (r *Registry) TeardownAll() {
	r.mu.Lock()
	all := r.m
	r.m = map[string]*Background{}
	r.mu.Unlock()
	for _, b := range all {
		b.Teardown()
	}
}
