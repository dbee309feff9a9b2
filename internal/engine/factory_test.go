package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewUsesStubWhenForced(t *testing.T) {
	cfg := config.Config{UseStubEngine: true}
	backend, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, ok := backend.(*StubBackend); !ok {
		t.Fatalf("expected stub backend, got %T", backend)
	}
}

func TestNewSelectsNativeWhenAvailable(t *testing.T) {
	backend, err := New(config.Config{}, discardLogger())
	if backend == nil {
		t.Fatal("expected a usable backend")
	}
	if NativeAvailable() {
		if err != nil {
			t.Fatalf("expected native backend, got %v", err)
		}
		if backend.Name() != "whisper.cpp" {
			t.Fatalf("unexpected backend %q", backend.Name())
		}
		return
	}
	if !errors.Is(err, ErrNativeEngineUnavailable) {
		t.Fatalf("expected ErrNativeEngineUnavailable, got %v", err)
	}
	if _, ok := backend.(*StubBackend); !ok {
		t.Fatalf("expected stub fallback, got %T", backend)
	}
}
