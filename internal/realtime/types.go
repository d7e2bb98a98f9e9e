package realtime

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// ChangeType identifies a row-change event on the watched table.
type ChangeType string

const (
	Insert ChangeType = "INSERT"
	Update ChangeType = "UPDATE"
	Delete ChangeType = "DELETE"
)

// AllChanges is the default event mask.
var AllChanges = []ChangeType{Insert, Update, Delete}

// ChangeEvent is a row-change notification. The payload is intentionally not
// carried further: the coordinator always re-pulls the full snapshot, so the
// event only says that something changed.
type ChangeEvent struct {
	Type       ChangeType
	Table      string
	ReceivedAt time.Time
}

// phxMessage is the Phoenix channel protocol frame used by the realtime
// service in both directions.
type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Ref     string          `json:"ref"`
	Payload json.RawMessage `json:"payload"`
}

// Config configures a realtime subscription client.
type Config struct {
	URL               string        // Project base URL (http/https); rewritten to ws(s)
	APIKey            string        // Public API key, sent as the apikey query parameter
	Table             string        // Watched table name
	Events            []ChangeType  // Event mask (default: AllChanges)
	HeartbeatInterval time.Duration // Phoenix heartbeat period
	WriteTimeout      time.Duration // Write deadline for sends
	BufferSize        int           // Event channel buffer size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Events:            AllChanges,
		HeartbeatInterval: 25 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        64,
	}
}
