package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwm/tab-client-go/internal/display"
	"github.com/shiftwm/tab-client-go/internal/protocol"
)

// testServer is an in-process display server speaking the tab protocol over
// one websocket connection.
type testServer struct {
	srv   *httptest.Server
	conns chan *serverConn
}

type serverConn struct {
	conn   *websocket.Conn
	msgs   chan protocol.Message
	frames chan []byte
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{conns: make(chan *serverConn, 1)}
	upgrader := websocket.Upgrader{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sc := &serverConn{
			conn:   conn,
			msgs:   make(chan protocol.Message, 16),
			frames: make(chan []byte, 16),
		}
		ts.conns <- sc
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				close(sc.msgs)
				return
			}
			if mt == websocket.BinaryMessage {
				sc.frames <- data
				continue
			}
			var msg protocol.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			sc.msgs <- msg
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) accept(t *testing.T) *serverConn {
	t.Helper()
	select {
	case sc := <-ts.conns:
		return sc
	case <-time.After(5 * time.Second):
		t.Fatal("no client connected")
		return nil
	}
}

func (sc *serverConn) expect(t *testing.T, msgType string) protocol.Message {
	t.Helper()
	for {
		select {
		case msg, ok := <-sc.msgs:
			if !ok {
				t.Fatalf("connection closed while waiting for %q", msgType)
			}
			if msg.Type == protocol.TypePing {
				continue
			}
			require.Equal(t, msgType, msg.Type)
			return msg
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", msgType)
		}
	}
}

func (sc *serverConn) send(t *testing.T, msg protocol.Message) {
	t.Helper()
	require.NoError(t, sc.conn.WriteJSON(msg))
}

var testMonitor = protocol.MonitorInfo{
	ID:          "mon-1",
	Width:       64,
	Height:      48,
	RefreshRate: 60,
	Name:        "test panel",
}

// connect runs the client handshake against the test server, with the
// server side greeting via hello-ack carrying the given monitors.
func connect(t *testing.T, ts *testServer, monitors ...protocol.MonitorInfo) (*Session, *serverConn) {
	t.Helper()

	type result struct {
		s   *Session
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := Connect(ts.url(), "tok-1", Options{SwapchainDepth: 2})
		done <- result{s, err}
	}()

	sc := ts.accept(t)
	hello := sc.expect(t, protocol.TypeHello)
	assert.Equal(t, "tok-1", hello.Token)
	assert.NotEmpty(t, hello.ClientID)
	sc.send(t, protocol.Message{
		Type:     protocol.TypeHelloAck,
		Server:   "shift",
		Protocol: "tab/1",
		Monitors: monitors,
	})

	res := <-done
	require.NoError(t, res.err)
	t.Cleanup(res.s.Close)
	return res.s, sc
}

// waitEvent pumps until an event surfaces or the deadline passes.
func waitEvent(t *testing.T, s *Session) display.Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.Pump()
		if ev, ok := s.NextEvent(); ok {
			return ev
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for an event")
	return nil
}

func TestConnectHandshake(t *testing.T) {
	ts := newTestServer(t)
	s, _ := connect(t, ts, testMonitor)

	assert.Equal(t, "shift", s.ServerName())
	assert.Equal(t, "tab/1", s.ProtocolName())
	require.Equal(t, 1, s.MonitorCount())
	assert.Equal(t, display.MonitorID("mon-1"), s.MonitorID(0))
}

func TestConnectRejectedToken(t *testing.T) {
	ts := newTestServer(t)

	type result struct {
		s   *Session
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := Connect(ts.url(), "bad-token", Options{})
		done <- result{s, err}
	}()

	sc := ts.accept(t)
	sc.expect(t, protocol.TypeHello)
	sc.send(t, protocol.Message{Type: protocol.TypeError, Msg: "invalid token"})

	res := <-done
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid token")
	assert.Nil(t, res.s)
}

func TestMonitorEventsReachThePendingQueue(t *testing.T) {
	ts := newTestServer(t)
	s, sc := connect(t, ts)
	require.Zero(t, s.MonitorCount())

	sc.send(t, protocol.Message{Type: protocol.TypeMonitorAdded, Info: &testMonitor})

	ev := waitEvent(t, s)
	addedEv, ok := ev.(*display.MonitorAddedEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, display.MonitorID("mon-1"), addedEv.Info.ID)
	assert.Equal(t, 64, addedEv.Info.Width)
	addedEv.Release()

	require.Equal(t, 1, s.MonitorCount())

	sc.send(t, protocol.Message{Type: protocol.TypeMonitorRemoved, Monitor: "mon-1"})

	ev = waitEvent(t, s)
	removedEv, ok := ev.(*display.MonitorRemovedEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, display.MonitorID("mon-1"), removedEv.ID)
	removedEv.Release()

	assert.Zero(t, s.MonitorCount())
}

func TestUnknownMessagesSurfaceAsUnknownEvents(t *testing.T) {
	ts := newTestServer(t)
	s, sc := connect(t, ts)

	sc.send(t, protocol.Message{Type: "cursor-shape"})

	ev := waitEvent(t, s)
	unknown, ok := ev.(*display.UnknownEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "cursor-shape", unknown.Kind)
	unknown.Release()
}

func TestAcquirePresentAndBufferRelease(t *testing.T) {
	ts := newTestServer(t)
	s, sc := connect(t, ts, testMonitor)
	id := display.MonitorID("mon-1")

	// Depth 2: two acquire+present cycles succeed, the third has no buffers.
	for i := 0; i < 2; i++ {
		res, target, err := s.AcquireFrame(id)
		require.NoError(t, err)
		require.Equal(t, display.AcquireOK, res)
		require.NotNil(t, target)
		assert.Equal(t, 64, target.Width)
		assert.Equal(t, 48, target.Height)

		require.NoError(t, s.Present(id))

		msg := sc.expect(t, protocol.TypePresent)
		assert.Equal(t, "mon-1", msg.Monitor)
		assert.Equal(t, i, msg.Buffer)

		select {
		case frame := <-sc.frames:
			require.True(t, len(frame) > 2, "empty frame")
			assert.Equal(t, []byte{0xff, 0xd8}, frame[:2], "frame is not a JPEG")
		case <-time.After(5 * time.Second):
			t.Fatal("no frame data received")
		}
	}

	res, target, err := s.AcquireFrame(id)
	require.NoError(t, err)
	assert.Equal(t, display.AcquireNoBuffers, res)
	assert.Nil(t, target)

	// Server releases buffer 0; the lease becomes available again.
	sc.send(t, protocol.Message{Type: protocol.TypeBufferReleased, Monitor: "mon-1", Buffer: 0})
	ev := waitEvent(t, s)
	released, ok := ev.(*display.BufferReleasedEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, 0, released.Buffer)
	released.Release()

	res, target, err = s.AcquireFrame(id)
	require.NoError(t, err)
	require.Equal(t, display.AcquireOK, res)
	assert.Equal(t, 0, target.Buffer)
}

func TestAcquireUnknownMonitorIsAnError(t *testing.T) {
	ts := newTestServer(t)
	s, _ := connect(t, ts, testMonitor)

	res, target, err := s.AcquireFrame("mon-9")
	assert.Equal(t, display.AcquireError, res)
	assert.Nil(t, target)
	require.Error(t, err)
}

func TestPresentWithoutAcquireIsAnError(t *testing.T) {
	ts := newTestServer(t)
	s, _ := connect(t, ts, testMonitor)

	require.Error(t, s.Present("mon-1"))
}

func TestSendReady(t *testing.T) {
	ts := newTestServer(t)
	s, sc := connect(t, ts, testMonitor)

	require.NoError(t, s.SendReady())
	sc.expect(t, protocol.TypeReady)
}

func TestServerPingGetsPong(t *testing.T) {
	ts := newTestServer(t)
	s, sc := connect(t, ts)

	sc.send(t, protocol.Message{Type: protocol.TypePing})

	// The pong is sent during Pump; keep pumping until it lands server-side.
	deadline := time.Now().Add(5 * time.Second)
	for {
		s.Pump()
		select {
		case msg := <-sc.msgs:
			if msg.Type == protocol.TypePong {
				return
			}
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("no pong received")
		}
		time.Sleep(time.Millisecond)
	}
}
