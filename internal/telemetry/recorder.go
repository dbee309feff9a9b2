package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all adapter metrics.
const meterName = "github.com/nupi-ai/plugin-stt-whisper-wav"

// Recorder tracks session lifecycle and transcription telemetry. Totals are
// kept in atomics for Snapshot and mirrored to OpenTelemetry instruments.
type Recorder struct {
	log *slog.Logger
	ins instruments

	sessionsCreated      atomic.Uint64
	sessionInitFailures  atomic.Uint64
	sessionsFreed        atomic.Uint64
	activeSessions       atomic.Int64
	totalTranscriptions  atomic.Uint64
	failedTranscriptions atomic.Uint64
	totalSamples         atomic.Uint64
	totalSegments        atomic.Uint64
}

// Snapshot captures cumulative metrics recorded so far.
type Snapshot struct {
	SessionsCreated      uint64
	SessionInitFailures  uint64
	SessionsFreed        uint64
	ActiveSessions       int64
	TotalTranscriptions  uint64
	FailedTranscriptions uint64
	TotalSamples         uint64
	TotalSegments        uint64
}

type instruments struct {
	sessions       metric.Int64Counter
	activeSessions metric.Int64UpDownCounter
	transcriptions metric.Int64Counter
	samples        metric.Int64Counter
	duration       metric.Float64Histogram
}

// Option configures a Recorder.
type Option func(*recorderOptions)

type recorderOptions struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records metrics through mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *recorderOptions) { o.meterProvider = mp }
}

// NewRecorder constructs a Recorder using the provided logger.
func NewRecorder(logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	var o recorderOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	r := &Recorder{
		log: logger.With("component", "telemetry.Recorder"),
	}
	r.ins = newInstruments(o.meterProvider.Meter(meterName), r.log)
	return r
}

func newInstruments(m metric.Meter, log *slog.Logger) instruments {
	var ins instruments
	var err error
	must := func(name string) {
		if err != nil {
			log.Warn("metric instrument unavailable", "instrument", name, "error", err)
		}
	}

	ins.sessions, err = m.Int64Counter("whisper.sessions",
		metric.WithDescription("Session lifecycle events by outcome."))
	must("whisper.sessions")
	ins.activeSessions, err = m.Int64UpDownCounter("whisper.sessions.active",
		metric.WithDescription("Engine handles currently allocated."))
	must("whisper.sessions.active")
	ins.transcriptions, err = m.Int64Counter("whisper.transcriptions",
		metric.WithDescription("Transcription calls by outcome."))
	must("whisper.transcriptions")
	ins.samples, err = m.Int64Counter("whisper.audio.samples",
		metric.WithDescription("Mono samples decoded from WAV input."))
	must("whisper.audio.samples")
	ins.duration, err = m.Float64Histogram("whisper.transcription.duration",
		metric.WithDescription("Wall time of a transcribe call including decoding."),
		metric.WithUnit("s"))
	must("whisper.transcription.duration")
	return ins
}

// Snapshot returns an immutable view of the recorder totals.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		SessionsCreated:      r.sessionsCreated.Load(),
		SessionInitFailures:  r.sessionInitFailures.Load(),
		SessionsFreed:        r.sessionsFreed.Load(),
		ActiveSessions:       r.activeSessions.Load(),
		TotalTranscriptions:  r.totalTranscriptions.Load(),
		FailedTranscriptions: r.failedTranscriptions.Load(),
		TotalSamples:         r.totalSamples.Load(),
		TotalSegments:        r.totalSegments.Load(),
	}
}

// SessionCreated records a successful engine init.
func (r *Recorder) SessionCreated(handle int64, modelPath string) {
	if r == nil {
		return
	}
	r.sessionsCreated.Add(1)
	r.activeSessions.Add(1)
	ctx := context.Background()
	if r.ins.sessions != nil {
		r.ins.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "created")))
	}
	if r.ins.activeSessions != nil {
		r.ins.activeSessions.Add(ctx, 1)
	}
	r.log.Debug("session created", "handle", handle, "model_path", modelPath)
}

// SessionInitFailed records an engine init that produced no handle.
func (r *Recorder) SessionInitFailed(modelPath string, err error) {
	if r == nil {
		return
	}
	r.sessionInitFailures.Add(1)
	if r.ins.sessions != nil {
		r.ins.sessions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("event", "init_failed")))
	}
	r.log.Debug("session init failed", "model_path", modelPath, "error", err)
}

// SessionFreed records the release of a live handle.
func (r *Recorder) SessionFreed(handle int64) {
	if r == nil {
		return
	}
	r.sessionsFreed.Add(1)
	r.activeSessions.Add(-1)
	ctx := context.Background()
	if r.ins.sessions != nil {
		r.ins.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("event", "freed")))
	}
	if r.ins.activeSessions != nil {
		r.ins.activeSessions.Add(ctx, -1)
	}
	r.log.Debug("session freed", "handle", handle)
}

// CallMetrics accumulates statistics for a single transcribe call.
type CallMetrics struct {
	recorder *Recorder
	log      *slog.Logger

	started    time.Time
	samples    int
	sampleRate uint32
	channels   uint16
	segments   int
	chars      int
	runes      int
	closed     atomic.Bool
}

// StartTranscription initialises a CallMetrics instance bound to the recorder.
func (r *Recorder) StartTranscription(handle int64, audioPath string) *CallMetrics {
	if r == nil {
		return nil
	}
	r.totalTranscriptions.Add(1)
	return &CallMetrics{
		recorder: r,
		log: r.log.With(
			"handle", handle,
			"audio_path", audioPath,
		),
		started: time.Now(),
	}
}

// RecordDecode stores the shape of the decoded audio.
func (c *CallMetrics) RecordDecode(samples int, sampleRate uint32, channels uint16) {
	if c == nil {
		return
	}
	c.samples = samples
	c.sampleRate = sampleRate
	c.channels = channels
	c.recorder.totalSamples.Add(uint64(samples))
	if c.recorder.ins.samples != nil {
		c.recorder.ins.samples.Add(context.Background(), int64(samples))
	}
	c.log.Debug("audio decoded",
		"samples", samples,
		"sample_rate", sampleRate,
		"channels", channels,
	)
}

// RecordTranscript stores statistics for the concatenated transcript.
func (c *CallMetrics) RecordTranscript(segments int, text string) {
	if c == nil {
		return
	}
	c.segments = segments
	c.chars = len(text)
	c.runes = utf8.RuneCountInString(text)
	c.recorder.totalSegments.Add(uint64(segments))
}

// Finish logs a summary of the call. Only the first call has any effect.
func (c *CallMetrics) Finish(err error) {
	if c == nil {
		return
	}
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	duration := time.Since(c.started)
	status := "ok"
	if err != nil {
		status = "error"
		c.recorder.failedTranscriptions.Add(1)
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("status", status))
	if c.recorder.ins.transcriptions != nil {
		c.recorder.ins.transcriptions.Add(ctx, 1, attrs)
	}
	if c.recorder.ins.duration != nil {
		c.recorder.ins.duration.Record(ctx, duration.Seconds(), attrs)
	}

	args := []any{
		"duration_ms", duration.Milliseconds(),
		"samples", c.samples,
		"sample_rate", c.sampleRate,
		"channels", c.channels,
		"segments", c.segments,
		"chars", c.chars,
		"runes", c.runes,
	}
	if err != nil {
		c.log.Error("transcription failed", append(args, "error", err)...)
		return
	}
	c.log.Info("transcription completed", args...)
}
