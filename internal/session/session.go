// Package session owns whisper engine contexts through an
// init → transcribe* → free lifecycle and hands them out to callers as
// opaque integer handles.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/wav"
)

var (
	// ErrEngineInit reports that the engine could not build a context from the model.
	ErrEngineInit = errors.New("session: engine init failed")
	// ErrInference reports a non-zero status from the engine's inference call.
	ErrInference = errors.New("session: inference failed")
	// ErrInvalidHandle reports use of a handle that was never issued or was freed.
	ErrInvalidHandle = errors.New("session: invalid handle")
)

// State is the lifecycle position of a Session.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateFreed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFreed:
		return "freed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session wraps one engine context. Transcribe and Free are serialised so a
// context is never released while inference is running on it.
type Session struct {
	mu     sync.Mutex
	state  State
	ctx    engine.Context
	params engine.Params
	log    *slog.Logger
}

// Open loads modelPath through backend and returns a Ready session.
func Open(backend engine.Backend, modelPath string, params engine.Params, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrEngineInit)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	logger.Info("loading model", "model_path", modelPath, "backend", backend.Name())
	ctx, err := backend.Init(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInit, err)
	}
	if ctx == nil {
		return nil, fmt.Errorf("%w: backend returned no context for %s", ErrEngineInit, modelPath)
	}
	return &Session{
		state:  StateReady,
		ctx:    ctx,
		params: params,
		log:    logger,
	}, nil
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	if s == nil {
		return StateUninitialized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcribe runs inference over audio and returns every segment's text
// concatenated in order with no separator.
func (s *Session) Transcribe(audio wav.AudioBuffer) (string, error) {
	segments, err := s.TranscribeSegments(audio)
	if err != nil {
		return "", err
	}
	return strings.Join(segments, ""), nil
}

// TranscribeSegments runs inference over audio and returns the segment texts
// in engine order.
func (s *Session) TranscribeSegments(audio wav.AudioBuffer) ([]string, error) {
	if s == nil {
		return nil, ErrInvalidHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidHandle, s.state)
	}

	if len(audio.Samples) == 0 {
		return nil, fmt.Errorf("%w: no audio samples", ErrInference)
	}

	if audio.SampleRate != 0 && audio.SampleRate != engine.SampleRate {
		s.log.Warn("audio sample rate differs from engine rate; passing through unchanged",
			"sample_rate", audio.SampleRate,
			"engine_rate", engine.SampleRate,
		)
	}

	if err := s.ctx.Full(s.params, audio.Samples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	n := s.ctx.NumSegments()
	segments := make([]string, 0, n)
	for i := 0; i < n; i++ {
		segments = append(segments, s.ctx.SegmentText(i))
	}
	return segments, nil
}

// Free releases the engine context. Calling it again is a no-op.
func (s *Session) Free() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFreed {
		return
	}
	if s.ctx != nil {
		s.ctx.Free()
		s.ctx = nil
	}
	s.state = StateFreed
	s.log.Info("whisper context freed")
}
