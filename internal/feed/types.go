package feed

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("connection closed")
)

// State is the supervisor's position in the connection lifecycle. Owned
// exclusively by the Supervisor; exposed read-only for stats and tests.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateSubscribed   State = "subscribed"
	StateReceiving    State = "receiving"
	StateClosing      State = "closing"
)

// Frame wraps one raw feed payload with its local receive timestamp. The
// payload is opaque to the core and forwarded verbatim.
type Frame struct {
	Data       []byte
	ReceivedAt time.Time
}

// Conn is one live connection to the feed.
type Conn interface {
	// Send writes one text frame.
	Send(data []byte) error

	// Frames returns the channel of received frames. It is closed when the
	// connection dies.
	Frames() <-chan Frame

	// Errors returns the channel reporting the transport failure that ended
	// the connection (close frame from the peer included).
	Errors() <-chan error

	// Close tears the connection down.
	Close() error
}

// Dialer establishes feed connections. The production implementation is
// WSDialer; tests substitute scripted dialers.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// subscribeCmd is the one fixed subscription message sent after each
// successful handshake, naming the instrument keys to stream.
type subscribeCmd struct {
	Cmd  string   `json:"cmd"`
	Keys []string `json:"keys"`
}

// Config configures a Supervisor.
type Config struct {
	URL              string        // feed endpoint (wss://...)
	Instruments      []string      // instrument keys for the subscription message
	ReconnectDelay   time.Duration // fixed delay between attempts, no growth, no cap on count
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Instruments:      []string{"xau", "ms", "gh", "zs"},
		ReconnectDelay:   5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Stats reports supervisor counters.
type Stats struct {
	State           State
	Attempts        int64 // connection attempts, successful or not
	Reconnects      int64 // completed backoff delays
	FramesForwarded int64
}
