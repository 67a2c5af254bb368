package display

import "sync"

// MonitorID names a displayable surface. Ids are owned by the server; the
// client never mints or reuses them.
type MonitorID string

// MonitorInfo describes a monitor and its current mode.
type MonitorInfo struct {
	ID          MonitorID
	Width       int
	Height      int
	RefreshRate int
	Name        string
}

// Event is one entry of the session's pending event queue. The set of
// variants is closed; dispatch sites switch exhaustively over the concrete
// types below.
//
// Event values are pooled. Whoever pops an event owns it and must call
// Release exactly once when done, whether or not the kind was recognized.
type Event interface {
	isEvent()
	Release()
}

// MonitorAddedEvent announces a newly attachable monitor.
type MonitorAddedEvent struct {
	Info MonitorInfo
}

// MonitorRemovedEvent announces that a monitor is gone.
type MonitorRemovedEvent struct {
	ID MonitorID
}

// BufferReleasedEvent returns a presented framebuffer to the swapchain.
type BufferReleasedEvent struct {
	Monitor MonitorID
	Buffer  int
}

// SessionStateEvent reports a session lifecycle change. The presentation
// core observes but does not act on these.
type SessionStateEvent struct {
	State string
}

// UnknownEvent carries a message kind this client does not understand.
type UnknownEvent struct {
	Kind string
}

func (*MonitorAddedEvent) isEvent() {}

func (*MonitorRemovedEvent) isEvent() {}

func (*BufferReleasedEvent) isEvent() {}

func (*SessionStateEvent) isEvent() {}

func (*UnknownEvent) isEvent() {}

var (
	addedPool    = sync.Pool{New: func() any { return new(MonitorAddedEvent) }}
	removedPool  = sync.Pool{New: func() any { return new(MonitorRemovedEvent) }}
	releasedPool = sync.Pool{New: func() any { return new(BufferReleasedEvent) }}
	statePool    = sync.Pool{New: func() any { return new(SessionStateEvent) }}
	unknownPool  = sync.Pool{New: func() any { return new(UnknownEvent) }}
)

// NewMonitorAdded returns a pooled MonitorAddedEvent.
func NewMonitorAdded(info MonitorInfo) *MonitorAddedEvent {
	e := addedPool.Get().(*MonitorAddedEvent)
	e.Info = info
	return e
}

// NewMonitorRemoved returns a pooled MonitorRemovedEvent.
func NewMonitorRemoved(id MonitorID) *MonitorRemovedEvent {
	e := removedPool.Get().(*MonitorRemovedEvent)
	e.ID = id
	return e
}

// NewBufferReleased returns a pooled BufferReleasedEvent.
func NewBufferReleased(monitor MonitorID, buffer int) *BufferReleasedEvent {
	e := releasedPool.Get().(*BufferReleasedEvent)
	e.Monitor = monitor
	e.Buffer = buffer
	return e
}

// NewSessionState returns a pooled SessionStateEvent.
func NewSessionState(state string) *SessionStateEvent {
	e := statePool.Get().(*SessionStateEvent)
	e.State = state
	return e
}

// NewUnknown returns a pooled UnknownEvent.
func NewUnknown(kind string) *UnknownEvent {
	e := unknownPool.Get().(*UnknownEvent)
	e.Kind = kind
	return e
}

func (e *MonitorAddedEvent) Release() {
	*e = MonitorAddedEvent{}
	addedPool.Put(e)
}

func (e *MonitorRemovedEvent) Release() {
	*e = MonitorRemovedEvent{}
	removedPool.Put(e)
}

func (e *BufferReleasedEvent) Release() {
	*e = BufferReleasedEvent{}
	releasedPool.Put(e)
}

func (e *SessionStateEvent) Release() {
	*e = SessionStateEvent{}
	statePool.Put(e)
}

func (e *UnknownEvent) Release() {
	*e = UnknownEvent{}
	unknownPool.Put(e)
}
