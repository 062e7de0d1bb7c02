package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"

	"github.com/Ubastic/JDfund/internal/broadcast"
)

// Supervisor owns the lifetime of the one logical feed subscription.
// A single instance runs on its own goroutine from process start until
// context cancellation.
type Supervisor struct {
	cfg    Config
	dialer Dialer
	broker *broadcast.Broker
	logger *slog.Logger

	mu    sync.RWMutex
	state State

	attempts        atomic.Int64
	reconnects      atomic.Int64
	framesForwarded atomic.Int64
}

// NewSupervisor creates a Supervisor. Run must be called to start it.
func NewSupervisor(cfg Config, dialer Dialer, broker *broadcast.Broker, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = def.Instruments
	}

	return &Supervisor{
		cfg:    cfg,
		dialer: dialer,
		broker: broker,
		logger: logger,
		state:  StateDisconnected,
	}
}

// State returns the supervisor's current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stats returns current counters.
func (s *Supervisor) Stats() Stats {
	return Stats{
		State:           s.State(),
		Attempts:        s.attempts.Load(),
		Reconnects:      s.reconnects.Load(),
		FramesForwarded: s.framesForwarded.Load(),
	}
}

// Run drives the connect/subscribe/receive/backoff cycle until ctx is
// cancelled. It never returns an error: every failure is logged and
// retried after the fixed delay, with no cap on the attempt count.
func (s *Supervisor) Run(ctx context.Context) error {
	// Factor 1 and no jitter make every delay exactly ReconnectDelay.
	delay := &backoff.Backoff{
		Min:    s.cfg.ReconnectDelay,
		Max:    s.cfg.ReconnectDelay,
		Factor: 1,
		Jitter: false,
	}

	for {
		if ctx.Err() != nil {
			s.setState(StateClosing)
			return nil
		}

		s.attempts.Add(1)
		if err := s.runOnce(ctx); err != nil {
			s.logger.Warn("feed connection ended", "error", err)
		}

		s.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			s.setState(StateClosing)
			return nil
		case <-time.After(delay.Duration()):
			s.reconnects.Add(1)
		}
	}
}

// runOnce performs one full connect-subscribe-receive cycle. Any returned
// error sends the supervisor through the backoff path.
func (s *Supervisor) runOnce(ctx context.Context) error {
	s.setState(StateConnecting)

	conn, err := s.dialer.Dial(ctx, s.cfg.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := s.subscribe(conn); err != nil {
		return err
	}
	s.setState(StateSubscribed)
	s.logger.Info("feed subscribed", "url", s.cfg.URL, "instruments", s.cfg.Instruments)

	return s.receive(ctx, conn)
}

// subscribe sends the one fixed subscription message.
func (s *Supervisor) subscribe(conn Conn) error {
	cmd := subscribeCmd{
		Cmd:  "subscribe",
		Keys: s.cfg.Instruments,
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return conn.Send(data)
}

// receive forwards frames to the broadcaster until the connection dies or
// ctx is cancelled. Each frame is published immediately, at most once;
// there is no buffering beyond the single in-flight frame.
func (s *Supervisor) receive(ctx context.Context, conn Conn) error {
	s.setState(StateReceiving)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-conn.Errors():
			return err

		case frame, ok := <-conn.Frames():
			if !ok {
				// Read loop ended; report the transport error if one was
				// recorded, otherwise treat it as a peer close.
				select {
				case err := <-conn.Errors():
					return err
				default:
					return ErrClosed
				}
			}
			s.broker.Publish(broadcast.TopicPriceUpdate, frame.Data)
			s.framesForwarded.Add(1)
		}
	}
}

func (s *Supervisor) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev != next {
		s.logger.Debug("feed state", "from", string(prev), "to", string(next))
	}
}
