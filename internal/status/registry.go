package status

import "sync"

// Registry maps checkbox symbols to statuses. The first status registered for
// a symbol wins; it is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	statuses []Status
}

// NewRegistry returns a registry holding the built-in todo, in-progress, done
// and cancelled statuses.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, s := range []Status{Todo(), InProgress(), Done(), Cancelled()} {
		r.Add(s)
	}
	return r
}

// Add registers s and reports whether it was added. Adding a symbol that is
// already registered is a no-op.
func (r *Registry) Add(s Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.find(s.Symbol); ok {
		return false
	}
	r.statuses = append(r.statuses, s)
	return true
}

func (r *Registry) BySymbol(symbol string) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.find(symbol); ok {
		return s
	}
	return Empty
}

func (r *Registry) BySymbolOrCreate(symbol string) Status {
	if s := r.BySymbol(symbol); !s.IsEmpty() {
		return s
	}
	return Unknown(symbol)
}

// Next returns the status s toggles to, or Empty when its successor symbol is
// blank or unregistered.
func (r *Registry) Next(s Status) Status {
	if s.NextSymbol == "" {
		return Empty
	}
	return r.BySymbol(s.NextSymbol)
}

func (r *Registry) NextOrCreate(s Status) Status {
	if next := r.Next(s); !next.IsEmpty() {
		return next
	}
	return Unknown(s.NextSymbol)
}

// All returns the registered statuses in registration order.
func (r *Registry) All() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Status, len(r.statuses))
	copy(out, r.statuses)
	return out
}

func (r *Registry) find(symbol string) (Status, bool) {
	for _, s := range r.statuses {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return Status{}, false
}
