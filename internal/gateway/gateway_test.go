package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/Ubastic/JDfund/internal/fetch"
	"github.com/Ubastic/JDfund/internal/settings"
	"github.com/Ubastic/JDfund/internal/storage"
)

func newTestGateway(t *testing.T, terminate func()) *Gateway {
	t.Helper()

	st, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	store := settings.NewStore(context.Background(), st, nil, nil)
	if terminate == nil {
		terminate = func() {}
	}
	return New(store, fetch.NewInsecureClient(), terminate, nil)
}

func TestGateway_MutatorsReturnResultingSettings(t *testing.T) {
	gw := newTestGateway(t, nil)
	ctx := context.Background()

	toggled, err := gw.TogglePlatform(ctx, "zs")
	if err != nil {
		t.Fatalf("TogglePlatform failed: %v", err)
	}
	if toggled.ShowZS {
		t.Error("TogglePlatform result still shows zs")
	}
	if got := gw.GetSettings(); got != toggled {
		t.Errorf("GetSettings() = %+v, want %+v", got, toggled)
	}

	colored, err := gw.SetBGColor(ctx, "#1e3a5f")
	if err != nil {
		t.Fatalf("SetBGColor failed: %v", err)
	}
	if colored.BGColor != "#1e3a5f" {
		t.Errorf("BGColor = %q, want %q", colored.BGColor, "#1e3a5f")
	}
	// The toggle above survives the color change.
	if colored.ShowZS {
		t.Error("SetBGColor lost the earlier toggle")
	}

	replaced, err := gw.SaveSettings(ctx, settings.Default())
	if err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if replaced != settings.Default() {
		t.Errorf("SaveSettings = %+v, want defaults", replaced)
	}
}

func TestGateway_ToggleUnknownPlatform(t *testing.T) {
	gw := newTestGateway(t, nil)

	_, err := gw.TogglePlatform(context.Background(), "btc")
	if !errors.Is(err, settings.ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestGateway_QuitInvokesTerminate(t *testing.T) {
	called := make(chan struct{})
	gw := newTestGateway(t, func() { close(called) })

	gw.Quit()

	select {
	case <-called:
	default:
		t.Fatal("Quit did not invoke terminate")
	}
}

func TestGateway_FetchRejectsUnsupportedMethod(t *testing.T) {
	gw := newTestGateway(t, nil)

	_, err := gw.Fetch(context.Background(), "PUT", "https://price.example.com", nil)
	if !errors.Is(err, fetch.ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}
}
