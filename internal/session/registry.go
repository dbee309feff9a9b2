package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/wav"
)

// Handle is an opaque reference to a live session. The zero value is the
// null handle.
type Handle int64

// NullHandle is never issued.
const NullHandle Handle = 0

// Registry is the arena that maps handles to sessions. Handles come from a
// monotonically increasing counter and are never reused, so a freed handle
// can only ever resolve to ErrInvalidHandle.
type Registry struct {
	backend engine.Backend
	params  engine.Params
	log     *slog.Logger

	mu       sync.Mutex
	next     Handle
	sessions map[Handle]*Session
}

// NewRegistry returns an empty Registry that opens sessions through backend
// with the given decoding profile.
func NewRegistry(backend engine.Backend, params engine.Params, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		backend:  backend,
		params:   params,
		log:      logger.With("component", "session.Registry"),
		sessions: make(map[Handle]*Session),
	}
}

// Params returns the profile used for new sessions.
func (r *Registry) Params() engine.Params {
	return r.params
}

// Create opens a session for modelPath and returns its handle.
func (r *Registry) Create(modelPath string) (Handle, error) {
	s, err := Open(r.backend, modelPath, r.params, r.log)
	if err != nil {
		return NullHandle, err
	}

	r.mu.Lock()
	r.next++
	h := r.next
	s.log = r.log.With("handle", int64(h))
	r.sessions[h] = s
	r.mu.Unlock()

	r.log.Info("whisper context initialized", "handle", int64(h), "model_path", modelPath)
	return h, nil
}

// Lookup resolves h to its live session.
func (r *Registry) Lookup(h Handle) (*Session, error) {
	if h == NullHandle {
		return nil, fmt.Errorf("%w: null handle", ErrInvalidHandle)
	}
	r.mu.Lock()
	s, ok := r.sessions[h]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, int64(h))
	}
	return s, nil
}

// Transcribe runs audio through the session behind h.
func (r *Registry) Transcribe(h Handle, audio wav.AudioBuffer) (string, error) {
	s, err := r.Lookup(h)
	if err != nil {
		return "", err
	}
	return s.Transcribe(audio)
}

// Free releases the session behind h. Null, unknown and already freed
// handles are ignored; the return value reports whether anything was freed.
func (r *Registry) Free(h Handle) bool {
	if h == NullHandle {
		return false
	}
	r.mu.Lock()
	s, ok := r.sessions[h]
	delete(r.sessions, h)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Free()
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close frees every live session and returns the handles it released.
func (r *Registry) Close() []Handle {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[Handle]*Session)
	r.mu.Unlock()

	released := make([]Handle, 0, len(sessions))
	for h, s := range sessions {
		s.Free()
		released = append(released, h)
		r.log.Debug("session released on close", "handle", int64(h))
	}
	return released
}
