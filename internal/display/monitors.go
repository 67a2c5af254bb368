package display

// Registry tracks the set of known monitors and the single monitor the
// presentation loop targets. It is mutated only by Observe and Adopt, on the
// loop goroutine.
type Registry struct {
	known     map[MonitorID]MonitorInfo
	active    MonitorID
	hasActive bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{known: make(map[MonitorID]MonitorInfo)}
}

// Active returns the monitor the loop should target, if any.
func (r *Registry) Active() (MonitorID, bool) {
	return r.active, r.hasActive
}

// Known reports how many monitors are currently live.
func (r *Registry) Known() int {
	return len(r.known)
}

// Adopt marks a monitor discovered outside the event stream (the session's
// initial monitor table) as known, and targets it if nothing is targeted yet.
func (r *Registry) Adopt(id MonitorID) {
	if _, ok := r.known[id]; !ok {
		r.known[id] = MonitorInfo{ID: id}
	}
	if !r.hasActive {
		r.active = id
		r.hasActive = true
	}
}

// Observe applies one event to the registry. The first monitor to attach
// stays active until it is removed; later attachments are recorded but do
// not replace it. Removing the active monitor clears the target with no
// fallback, so the loop re-enters its waiting phase.
func (r *Registry) Observe(ev Event) {
	switch ev := ev.(type) {
	case *MonitorAddedEvent:
		r.known[ev.Info.ID] = ev.Info
		if !r.hasActive {
			r.active = ev.Info.ID
			r.hasActive = true
		}
	case *MonitorRemovedEvent:
		delete(r.known, ev.ID)
		if r.hasActive && r.active == ev.ID {
			r.active = ""
			r.hasActive = false
		}
	case *BufferReleasedEvent, *SessionStateEvent, *UnknownEvent:
		// No registry effect.
	}
}
