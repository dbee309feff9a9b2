// Package binding is the host-facing surface of the adapter. Every entry point
// returns a sentinel on failure (0 for handles, "" for text) and never lets an
// error or panic escape to the caller.
package binding

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/adapterinfo"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/session"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/telemetry"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/wav"
)

var errPanic = errors.New("binding: recovered panic")

// Option customises a Boundary.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	recorder *telemetry.Recorder
	threads  *int
	audioCtx *int
}

// WithLogger sets the logger used for failure reports.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRecorder attaches a telemetry recorder. Without one the Boundary builds
// its own so every call outcome is still logged.
func WithRecorder(rec *telemetry.Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithThreads overrides the decoding thread count. Nil keeps the default.
func WithThreads(n *int) Option {
	return func(o *options) { o.threads = n }
}

// WithAudioCtx overrides the encoder context size. Nil keeps the default.
func WithAudioCtx(n *int) Option {
	return func(o *options) { o.audioCtx = n }
}

// Boundary owns the session registry and translates between handles, file
// paths and transcripts.
type Boundary struct {
	registry *session.Registry
	decoder  wav.Decoder
	recorder *telemetry.Recorder
	log      *slog.Logger
}

// New returns a Boundary whose sessions are built by backend.
func New(backend engine.Backend, opts ...Option) *Boundary {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.recorder == nil {
		o.recorder = telemetry.NewRecorder(o.logger)
	}

	params := engine.DefaultParams()
	if o.threads != nil {
		params = params.WithThreads(*o.threads)
	}
	if o.audioCtx != nil {
		params = params.WithAudioCtx(*o.audioCtx)
	}

	log := o.logger.With("component", "binding")
	return &Boundary{
		registry: session.NewRegistry(backend, params, o.logger),
		decoder:  wav.Decoder{Logger: log},
		recorder: o.recorder,
		log:      log,
	}
}

// CreateSession loads the model at modelPath and returns a handle for it, or
// 0 when the engine could not be initialised.
func (b *Boundary) CreateSession(modelPath string) (handle int64) {
	defer b.recoverAs("create_session", func() { handle = int64(session.NullHandle) })

	h, err := b.registry.Create(modelPath)
	if err != nil {
		b.log.Error("failed to initialize whisper context", "model_path", modelPath, "error", err)
		b.recorder.SessionInitFailed(modelPath, err)
		return int64(session.NullHandle)
	}
	b.recorder.SessionCreated(int64(h), modelPath)
	return int64(h)
}

// Transcribe decodes the WAV file at audioPath and runs it through the session
// behind handle. Any failure yields "".
func (b *Boundary) Transcribe(handle int64, audioPath string) (text string) {
	call := b.recorder.StartTranscription(handle, audioPath)
	defer b.recoverAs("transcribe", func() {
		text = ""
		call.Finish(errPanic)
	})

	text, err := b.transcribe(call, session.Handle(handle), audioPath)
	call.Finish(err)
	if err != nil {
		return ""
	}
	return text
}

func (b *Boundary) transcribe(call *telemetry.CallMetrics, h session.Handle, audioPath string) (string, error) {
	s, err := b.registry.Lookup(h)
	if err != nil {
		return "", err
	}

	audio, err := b.decoder.Decode(audioPath)
	if err != nil {
		return "", err
	}
	call.RecordDecode(len(audio.Samples), audio.SampleRate, audio.Channels)

	segments, err := s.TranscribeSegments(audio)
	if err != nil {
		return "", err
	}

	text := strings.Join(segments, "")
	call.RecordTranscript(len(segments), text)
	return text, nil
}

// FreeSession releases the session behind handle. Null, unknown and already
// freed handles are ignored.
func (b *Boundary) FreeSession(handle int64) {
	defer b.recoverAs("free_session", nil)

	if b.registry.Free(session.Handle(handle)) {
		b.recorder.SessionFreed(handle)
	}
}

// Version reports the engine identifier.
func (b *Boundary) Version() string {
	return adapterinfo.EngineVersion()
}

// Sessions reports the number of live sessions.
func (b *Boundary) Sessions() int {
	return b.registry.Len()
}

// Close frees every live session.
func (b *Boundary) Close() {
	defer b.recoverAs("close", nil)
	for _, h := range b.registry.Close() {
		b.recorder.SessionFreed(int64(h))
	}
}

// recoverAs converts a panic in the named entry point into a logged failure
// and runs fallback to set the sentinel result.
func (b *Boundary) recoverAs(op string, fallback func()) {
	if r := recover(); r != nil {
		b.log.Error("recovered panic at binding boundary", "op", op, "panic", r)
		if fallback != nil {
			fallback()
		}
	}
}
