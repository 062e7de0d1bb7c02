package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Ubastic/JDfund/internal/broadcast"
)

// fakeStorage is an in-memory storage.Store with failure injection.
type fakeStorage struct {
	mu      sync.Mutex
	records map[string][]byte
	failSet error
	panics  bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{records: make(map[string][]byte)}
}

func (f *fakeStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.records[key]
	return v, ok, nil
}

func (f *fakeStorage) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("storage wedged")
	}
	if f.failSet != nil {
		return f.failSet
	}
	f.records[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStorage) Close() error { return nil }

func TestDefault(t *testing.T) {
	def := Default()

	if !def.ShowXAU || !def.ShowMS || !def.ShowGH || !def.ShowZS {
		t.Errorf("Default() = %+v, want all sources visible", def)
	}
	if def.BGColor != "#2c3e50" {
		t.Errorf("BGColor = %q, want %q", def.BGColor, "#2c3e50")
	}
}

func TestNewStore_MissingRecordUsesDefaults(t *testing.T) {
	store := NewStore(context.Background(), newFakeStorage(), nil, nil)

	if got := store.Get(); got != Default() {
		t.Errorf("Get() = %+v, want defaults %+v", got, Default())
	}
}

func TestNewStore_CorruptRecordUsesDefaults(t *testing.T) {
	st := newFakeStorage()
	st.records[StorageKey] = []byte("{not json")

	store := NewStore(context.Background(), st, nil, nil)

	if got := store.Get(); got != Default() {
		t.Errorf("Get() = %+v, want defaults %+v", got, Default())
	}
}

func TestNewStore_LoadsPersistedValue(t *testing.T) {
	want := Settings{ShowXAU: false, ShowMS: true, ShowGH: false, ShowZS: true, BGColor: "#000000"}
	data, _ := json.Marshal(want)

	st := newFakeStorage()
	st.records[StorageKey] = data

	store := NewStore(context.Background(), st, nil, nil)

	if got := store.Get(); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestReplace_RoundTrip(t *testing.T) {
	st := newFakeStorage()
	store := NewStore(context.Background(), st, nil, nil)

	want := Settings{ShowXAU: false, ShowMS: false, ShowGH: true, ShowZS: false, BGColor: "#1e3a5f"}
	applied, err := store.Replace(context.Background(), want)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if applied != want {
		t.Errorf("Replace returned %+v, want %+v", applied, want)
	}
	if got := store.Get(); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	// The durable copy matches the in-memory value.
	data, ok, _ := st.Get(context.Background(), StorageKey)
	if !ok {
		t.Fatal("expected a persisted record")
	}
	var persisted Settings
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode persisted record: %v", err)
	}
	if persisted != want {
		t.Errorf("persisted = %+v, want %+v", persisted, want)
	}
}

func TestToggle_Idempotence(t *testing.T) {
	store := NewStore(context.Background(), newFakeStorage(), nil, nil)
	before := store.Get()

	if _, err := store.Toggle(context.Background(), "xau"); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if got := store.Get().ShowXAU; got == before.ShowXAU {
		t.Error("first toggle did not flip show_xau")
	}

	if _, err := store.Toggle(context.Background(), "xau"); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if got := store.Get(); got != before {
		t.Errorf("double toggle = %+v, want original %+v", got, before)
	}
}

func TestToggle_UnknownField(t *testing.T) {
	store := NewStore(context.Background(), newFakeStorage(), nil, nil)
	before := store.Get()

	_, err := store.Toggle(context.Background(), "unknown")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
	if got := store.Get(); got != before {
		t.Errorf("settings changed on rejected toggle: %+v", got)
	}
}

func TestToggle_ConcurrentNoLostUpdate(t *testing.T) {
	store := NewStore(context.Background(), newFakeStorage(), nil, nil)
	before := store.Get()

	var wg sync.WaitGroup
	for _, field := range []string{"xau", "ms"} {
		wg.Add(1)
		go func(field string) {
			defer wg.Done()
			if _, err := store.Toggle(context.Background(), field); err != nil {
				t.Errorf("toggle %s failed: %v", field, err)
			}
		}(field)
	}
	wg.Wait()

	after := store.Get()
	if after.ShowXAU == before.ShowXAU {
		t.Error("xau toggle lost")
	}
	if after.ShowMS == before.ShowMS {
		t.Error("ms toggle lost")
	}
}

func TestReplace_PersistFailureLeavesValue(t *testing.T) {
	st := newFakeStorage()
	broker := broadcast.New(nil)
	store := NewStore(context.Background(), st, broker, nil)
	before := store.Get()

	updates, cancel := broker.Subscribe(broadcast.TopicSettingsUpdated, 4)
	defer cancel()

	st.failSet = errors.New("disk full")
	next := before
	next.BGColor = "#ffffff"

	_, err := store.Replace(context.Background(), next)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	if got := store.Get(); got != before {
		t.Errorf("Get() = %+v, want unchanged %+v", got, before)
	}

	select {
	case msg := <-updates:
		t.Errorf("unexpected notification after failed persist: %s", msg.Payload)
	default:
	}
}

func TestReplace_PersistPanicReportedAsError(t *testing.T) {
	st := newFakeStorage()
	st.panics = true
	store := NewStore(context.Background(), st, nil, nil)
	before := store.Get()

	_, err := store.Replace(context.Background(), Settings{BGColor: "#123456"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}

	// The store keeps working after the panic.
	st.panics = false
	if _, err := store.Toggle(context.Background(), "gh"); err != nil {
		t.Fatalf("toggle after panic failed: %v", err)
	}
	if got := store.Get().ShowGH; got == before.ShowGH {
		t.Error("toggle after panic did not apply")
	}
}

func TestSetBGColor_NotifiesSubscribers(t *testing.T) {
	broker := broadcast.New(nil)
	store := NewStore(context.Background(), newFakeStorage(), broker, nil)

	updates, cancel := broker.Subscribe(broadcast.TopicSettingsUpdated, 4)
	defer cancel()

	applied, err := store.SetBGColor(context.Background(), "#000000")
	if err != nil {
		t.Fatalf("SetBGColor failed: %v", err)
	}
	if applied.BGColor != "#000000" {
		t.Errorf("BGColor = %q, want %q", applied.BGColor, "#000000")
	}

	select {
	case msg := <-updates:
		var got Settings
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("decode notification: %v", err)
		}
		if got != applied {
			t.Errorf("notification = %+v, want %+v", got, applied)
		}
	default:
		t.Fatal("expected a settings-updated notification")
	}
}
