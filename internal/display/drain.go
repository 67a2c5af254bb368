package display

// Drain empties the session's pending event queue as it stands right now,
// applying each event to the registry in arrival order. It never blocks
// waiting for more events. Returns the number of events processed.
func Drain(s Session, r *Registry) int {
	n := 0
	for {
		ev, ok := s.NextEvent()
		if !ok {
			return n
		}
		n++
		dispatch(ev, r)
	}
}

// dispatch applies one event and releases it on every path, including when
// the registry has nothing to do with the kind.
func dispatch(ev Event, r *Registry) {
	defer ev.Release()
	r.Observe(ev)
}
