package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Ubastic/JDfund/internal/broadcast"
	"github.com/Ubastic/JDfund/internal/storage"
)

// StorageKey is the single record under which settings are persisted.
const StorageKey = "settings"

// Errors returned by Store mutators.
var (
	// ErrPersistence wraps durable-write failures. The in-memory value is
	// left untouched when it is returned.
	ErrPersistence = errors.New("settings persistence failed")

	// ErrUnknownField is returned by Toggle for an unrecognized source id.
	ErrUnknownField = errors.New("unknown settings field")
)

// Store holds the canonical in-memory settings value and mirrors every
// accepted mutation to durable storage.
//
// One mutex serializes all reads and read-modify-writes, so two concurrent
// toggles can never interleave and lose an update. The durable write
// happens inside the critical section with a snapshot of the candidate
// value; the swap is only performed after the write succeeds.
type Store struct {
	storage storage.Store
	broker  *broadcast.Broker
	logger  *slog.Logger

	mu      sync.Mutex
	current Settings
	loaded  bool
}

// NewStore loads the persisted settings record (defaults on miss, open
// failure, or corrupt data) and returns a ready Store. Load problems are
// logged and absorbed, never returned.
func NewStore(ctx context.Context, st storage.Store, broker *broadcast.Broker, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		storage: st,
		broker:  broker,
		logger:  logger,
		current: Default(),
		loaded:  true,
	}

	if st == nil {
		logger.Warn("no settings storage attached, using defaults")
		return s
	}

	data, found, err := st.Get(ctx, StorageKey)
	switch {
	case err != nil:
		logger.Error("read persisted settings", "error", err)
	case !found:
		logger.Info("no persisted settings, using defaults")
	default:
		var loaded Settings
		if err := json.Unmarshal(data, &loaded); err != nil {
			logger.Error("decode persisted settings, using defaults", "error", err)
		} else {
			s.current = loaded
		}
	}

	return s
}

// Get returns the current settings value. Never fails; a Store that has
// not finished loading reports the compiled-in defaults.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return Default()
	}
	return s.current
}

// Replace durably persists next, swaps it in as the current value, and
// notifies subscribers. On any failure the previous value stays in force
// and no notification is sent.
func (s *Store) Replace(ctx context.Context, next Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(ctx, next)
}

// Toggle flips exactly one named source flag and persists the result.
// Valid ids are xau, ms, gh, and zs.
func (s *Store) Toggle(ctx context.Context, field string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	switch field {
	case "xau":
		next.ShowXAU = !next.ShowXAU
	case "ms":
		next.ShowMS = !next.ShowMS
	case "gh":
		next.ShowGH = !next.ShowGH
	case "zs":
		next.ShowZS = !next.ShowZS
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return s.replaceLocked(ctx, next)
}

// SetBGColor replaces the background color and persists the result. The
// color string is stored opaquely, no syntax validation.
func (s *Store) SetBGColor(ctx context.Context, color string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.BGColor = color
	return s.replaceLocked(ctx, next)
}

// replaceLocked persists next and swaps it in. Caller holds s.mu.
func (s *Store) replaceLocked(ctx context.Context, next Settings) (Settings, error) {
	if err := s.persist(ctx, next); err != nil {
		s.logger.Error("persist settings", "error", err)
		return Settings{}, err
	}

	s.current = next
	s.notify(next)
	return next, nil
}

// persist writes next to durable storage. A panic inside the storage layer
// is converted into an error so a wedged backend cannot corrupt later
// calls through this Store.
func (s *Store) persist(ctx context.Context, next Settings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrPersistence, r)
		}
	}()

	if s.storage == nil {
		return fmt.Errorf("%w: no storage attached", ErrPersistence)
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}

	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// notify publishes the accepted value on the settings-updated topic.
// Best-effort: a failure to encode or a panicking broker is logged, the
// mutation has already been applied.
func (s *Store) notify(applied Settings) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("settings notification panicked", "panic", r)
		}
	}()

	if s.broker == nil {
		return
	}

	data, err := json.Marshal(applied)
	if err != nil {
		s.logger.Error("encode settings notification", "error", err)
		return
	}
	s.broker.Publish(broadcast.TopicSettingsUpdated, data)
}
