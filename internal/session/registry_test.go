package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
)

func TestRegistryLifecycle(t *testing.T) {
	backend := newFakeBackend("a", "b")
	reg := NewRegistry(backend, engine.DefaultParams(), quietLogger())

	h, err := reg.Create("model.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h == NullHandle {
		t.Fatal("expected non-null handle")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", reg.Len())
	}

	text, err := reg.Transcribe(h, audio(100))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "ab" {
		t.Fatalf("unexpected text %q", text)
	}

	if !reg.Free(h) {
		t.Fatal("expected first Free to release the session")
	}
	if reg.Free(h) {
		t.Fatal("second Free must be a no-op")
	}
	if reg.Free(NullHandle) {
		t.Fatal("Free of the null handle must be a no-op")
	}
	if backend.contexts[0].frees != 1 {
		t.Fatalf("engine context freed %d times, want 1", backend.contexts[0].frees)
	}

	if _, err := reg.Transcribe(h, audio(1)); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle after free, got %v", err)
	}
}

func TestRegistryCreateFailureIssuesNoHandle(t *testing.T) {
	reg := NewRegistry(newFakeBackend(), engine.DefaultParams(), quietLogger())
	h, err := reg.Create("/does/not/exist.bin")
	if !errors.Is(err, ErrEngineInit) {
		t.Fatalf("expected ErrEngineInit, got %v", err)
	}
	if h != NullHandle {
		t.Fatalf("expected null handle, got %d", h)
	}
	if _, err := reg.Transcribe(h, audio(1)); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestRegistryNeverReusesHandles(t *testing.T) {
	reg := NewRegistry(newFakeBackend(), engine.DefaultParams(), quietLogger())
	first, err := reg.Create("model.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reg.Free(first)

	second, err := reg.Create("model.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second == first {
		t.Fatalf("handle %d reused after free", first)
	}
	if _, err := reg.Lookup(first); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("stale handle must stay invalid, got %v", err)
	}
	if _, err := reg.Lookup(Handle(9999)); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("unknown handle must be invalid, got %v", err)
	}
}

func TestRegistrySessionsAreIndependent(t *testing.T) {
	backend := newFakeBackend("x")
	reg := NewRegistry(backend, engine.DefaultParams(), quietLogger())

	var wg sync.WaitGroup
	handles := make([]Handle, 8)
	for i := range handles {
		h, err := reg.Create("model.bin")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		handles[i] = h
	}
	for _, h := range handles {
		wg.Add(1)
		go func(h Handle) {
			defer wg.Done()
			if _, err := reg.Transcribe(h, audio(16)); err != nil {
				t.Errorf("Transcribe(%d): %v", h, err)
			}
			reg.Free(h)
		}(h)
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Fatalf("expected all sessions freed, got %d", reg.Len())
	}
}

func TestRegistryCloseFreesAll(t *testing.T) {
	backend := newFakeBackend()
	reg := NewRegistry(backend, engine.DefaultParams(), quietLogger())
	created := map[Handle]bool{}
	for range 3 {
		h, err := reg.Create("model.bin")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		created[h] = true
	}
	reg.Free(reg.next)
	delete(created, reg.next)

	released := reg.Close()
	if len(released) != len(created) {
		t.Fatalf("Close released %v, want %d handles", released, len(created))
	}
	for _, h := range released {
		if !created[h] {
			t.Fatalf("Close released unexpected handle %d", h)
		}
	}
	if again := reg.Close(); len(again) != 0 {
		t.Fatalf("second Close released %v", again)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Len())
	}
	for i, ctx := range backend.contexts {
		if ctx.frees != 1 {
			t.Fatalf("context %d freed %d times", i, ctx.frees)
		}
	}
}
