package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/shiftwm/tab-client-go/internal/display"
	"github.com/shiftwm/tab-client-go/internal/protocol"
)

const (
	helloTimeout   = 10 * time.Second
	defaultDepth   = 3
	defaultQuality = 80
	inboxCapacity  = 64
	keepaliveEvery = 25 * time.Second
	fallbackModeW  = 640
	fallbackModeH  = 480
)

// Options tune a session. Zero values select defaults.
type Options struct {
	// SwapchainDepth is the number of framebuffers leased per monitor.
	SwapchainDepth int
	// JPEGQuality is the frame submission encoding quality (1-100).
	JPEGQuality int
	// ClientID identifies this client in the hello; auto-generated if empty.
	ClientID string
}

type monitorEntry struct {
	info  display.MonitorInfo
	chain *swapchain
}

// Session is a live connection to a tab display server. A background read
// goroutine feeds raw messages into a buffered inbox; everything else —
// the pending event queue, the monitor table, the swapchains — is touched
// only from the caller's goroutine via Pump and friends.
type Session struct {
	conn     *websocket.Conn
	clientID string
	depth    int
	quality  int

	serverName   string
	protocolName string

	inbox chan protocol.Message
	done  chan struct{}
	once  sync.Once

	writeMu sync.Mutex

	pending  []display.Event
	monitors map[display.MonitorID]*monitorEntry
	order    []display.MonitorID
}

// Connect dials the server, performs the hello handshake with the session
// token, and seeds the monitor table from the acknowledgement. A rejected
// token or unreachable server fails the call; there is no retry.
func Connect(url, token string, opts Options) (*Session, error) {
	if opts.SwapchainDepth <= 0 {
		opts.SwapchainDepth = defaultDepth
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = defaultQuality
	}
	if opts.ClientID == "" {
		opts.ClientID = "client-" + uuid.NewString()
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("session dial: %w", err)
	}

	s := &Session{
		conn:     conn,
		clientID: opts.ClientID,
		depth:    opts.SwapchainDepth,
		quality:  opts.JPEGQuality,
		inbox:    make(chan protocol.Message, inboxCapacity),
		done:     make(chan struct{}),
		monitors: make(map[display.MonitorID]*monitorEntry),
	}

	if err := s.handshake(token); err != nil {
		conn.Close()
		return nil, err
	}

	go s.readLoop()
	go s.keepalive()
	return s, nil
}

func (s *Session) handshake(token string) error {
	err := s.send(protocol.Message{
		Type:     protocol.TypeHello,
		Token:    token,
		ClientID: s.clientID,
	})
	if err != nil {
		return fmt.Errorf("session hello: %w", err)
	}

	s.conn.SetReadDeadline(time.Now().Add(helloTimeout))
	defer s.conn.SetReadDeadline(time.Time{})

	var ack protocol.Message
	if err := s.conn.ReadJSON(&ack); err != nil {
		return fmt.Errorf("session hello ack: %w", err)
	}
	switch ack.Type {
	case protocol.TypeHelloAck:
	case protocol.TypeError:
		return fmt.Errorf("session rejected: %s", ack.Msg)
	default:
		return fmt.Errorf("session hello ack: unexpected message %q", ack.Type)
	}

	s.serverName = ack.Server
	s.protocolName = ack.Protocol
	for _, info := range ack.Monitors {
		s.addMonitor(monitorInfo(info))
	}
	return nil
}

// Close tears the connection down. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// ServerName reports the server identity from the handshake.
func (s *Session) ServerName() string { return s.serverName }

// ProtocolName reports the protocol identity from the handshake.
func (s *Session) ProtocolName() string { return s.protocolName }

// Pump drains the inbox of messages that have already arrived, translating
// each into a pending event and applying side effects (monitor table,
// buffer leases). It never blocks.
func (s *Session) Pump() {
	for {
		select {
		case msg := <-s.inbox:
			s.handle(msg)
		default:
			return
		}
	}
}

// NextEvent pops the oldest pending event. The caller owns it and must
// release it.
func (s *Session) NextEvent() (display.Event, bool) {
	if len(s.pending) == 0 {
		return nil, false
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, true
}

// MonitorCount reports the number of monitors in the session table.
func (s *Session) MonitorCount() int { return len(s.order) }

// MonitorID returns the id at the given position in attach order.
func (s *Session) MonitorID(i int) display.MonitorID {
	if i < 0 || i >= len(s.order) {
		return ""
	}
	return s.order[i]
}

// SendReady signals readiness to present.
func (s *Session) SendReady() error {
	if err := s.send(protocol.Message{Type: protocol.TypeReady}); err != nil {
		return fmt.Errorf("send ready: %w", err)
	}
	return nil
}

// AcquireFrame leases a framebuffer for the monitor from its swapchain. All
// buffers inflight is the expected no-buffers condition; an unknown monitor
// is an error.
func (s *Session) AcquireFrame(id display.MonitorID) (display.AcquireResult, *display.FrameTarget, error) {
	entry, ok := s.monitors[id]
	if !ok {
		return display.AcquireError, nil, fmt.Errorf("unknown monitor %q", id)
	}
	target, ok := entry.chain.acquire()
	if !ok {
		return display.AcquireNoBuffers, nil, nil
	}
	return display.AcquireOK, target, nil
}

// Present encodes the leased framebuffer and submits it: a present envelope
// followed by the binary frame. The buffer stays unavailable until the
// server releases it.
func (s *Session) Present(id display.MonitorID) error {
	entry, ok := s.monitors[id]
	if !ok {
		return fmt.Errorf("present: unknown monitor %q", id)
	}
	target, ok := entry.chain.leasedTarget()
	if !ok {
		return fmt.Errorf("present: no acquired frame for %q", id)
	}

	data, err := encodeFrame(target.Img, s.quality)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	err = s.send(protocol.Message{
		Type:    protocol.TypePresent,
		Monitor: string(id),
		Buffer:  target.Buffer,
	})
	if err != nil {
		return fmt.Errorf("present %s: %w", id, err)
	}
	if err := s.sendBinary(data); err != nil {
		return fmt.Errorf("present %s frame: %w", id, err)
	}
	entry.chain.submit()
	return nil
}

func (s *Session) handle(msg protocol.Message) {
	switch msg.Type {
	case protocol.TypeMonitorAdded:
		if msg.Info == nil {
			return
		}
		info := monitorInfo(*msg.Info)
		s.addMonitor(info)
		s.pending = append(s.pending, display.NewMonitorAdded(info))
	case protocol.TypeMonitorRemoved:
		id := display.MonitorID(msg.Monitor)
		s.removeMonitor(id)
		s.pending = append(s.pending, display.NewMonitorRemoved(id))
	case protocol.TypeBufferReleased:
		id := display.MonitorID(msg.Monitor)
		if entry, ok := s.monitors[id]; ok {
			entry.chain.release(msg.Buffer)
		}
		s.pending = append(s.pending, display.NewBufferReleased(id, msg.Buffer))
	case protocol.TypeSessionState:
		s.pending = append(s.pending, display.NewSessionState(msg.State))
	case protocol.TypePing:
		_ = s.send(protocol.Message{Type: protocol.TypePong})
	case protocol.TypePong:
		// Keepalive response, nothing to do.
	case protocol.TypeError:
		log.Printf("session server error: %s", msg.Msg)
	default:
		s.pending = append(s.pending, display.NewUnknown(msg.Type))
	}
}

func (s *Session) addMonitor(info display.MonitorInfo) {
	if _, ok := s.monitors[info.ID]; ok {
		return
	}
	w, h := info.Width, info.Height
	if w <= 0 || h <= 0 {
		w, h = fallbackModeW, fallbackModeH
	}
	s.monitors[info.ID] = &monitorEntry{
		info:  info,
		chain: newSwapchain(w, h, s.depth),
	}
	s.order = append(s.order, info.ID)
}

func (s *Session) removeMonitor(id display.MonitorID) {
	delete(s.monitors, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Session) send(msg protocol.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *Session) sendBinary(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s *Session) readLoop() {
	defer s.Close()
	for {
		var msg protocol.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
			default:
				log.Printf("session read error: %v", err)
			}
			return
		}
		select {
		case s.inbox <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *Session) keepalive() {
	ticker := time.NewTicker(keepaliveEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_ = s.send(protocol.Message{Type: protocol.TypePing})
		}
	}
}

func monitorInfo(info protocol.MonitorInfo) display.MonitorInfo {
	return display.MonitorInfo{
		ID:          display.MonitorID(info.ID),
		Width:       info.Width,
		Height:      info.Height,
		RefreshRate: info.RefreshRate,
		Name:        info.Name,
	}
}
