package protocol

import "encoding/json"

// Message types for the tab session protocol.
const (
	TypeHello          = "hello"
	TypeHelloAck       = "hello-ack"
	TypeReady          = "ready"
	TypePresent        = "present"
	TypeBufferReleased = "buffer-released"
	TypeMonitorAdded   = "monitor-added"
	TypeMonitorRemoved = "monitor-removed"
	TypeSessionState   = "session-state"
	TypeInput          = "input"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeError          = "error"
)

// Message is the envelope for all control messages. Encoded frame pixel data
// travels separately as a binary websocket message immediately after a
// "present" envelope.
type Message struct {
	Type     string          `json:"type"`
	Token    string          `json:"token,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Server   string          `json:"server,omitempty"`
	Protocol string          `json:"protocol,omitempty"`
	Monitor  string          `json:"monitor,omitempty"`
	Buffer   int             `json:"buffer,omitempty"`
	Info     *MonitorInfo    `json:"info,omitempty"`
	Monitors []MonitorInfo   `json:"monitors,omitempty"`
	State    string          `json:"state,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Msg      string          `json:"message,omitempty"`
}

// MonitorInfo describes an attachable monitor and its current mode.
type MonitorInfo struct {
	ID          string `json:"id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	RefreshRate int    `json:"refreshRate"`
	Name        string `json:"name"`
}
