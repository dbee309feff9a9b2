package engine

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/adapterinfo"
)

// stubSilenceRMS is the RMS level below which the stub reports no speech.
const stubSilenceRMS = 0.01

// StubBackend produces deterministic transcripts without invoking Whisper.
// Init still requires the model file to exist so lifecycle failures behave
// like the native backend.
type StubBackend struct {
	log *slog.Logger
}

// NewStubBackend returns a Backend that generates placeholder transcripts.
func NewStubBackend(logger *slog.Logger) *StubBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubBackend{
		log: logger.With(
			"component", "engine.stub",
			"adapter", adapterinfo.Info.Slug,
		),
	}
}

// Name implements the Backend interface.
func (b *StubBackend) Name() string { return "stub" }

// Init implements the Backend interface.
func (b *StubBackend) Init(modelPath string) (Context, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("stub: model path required")
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, fmt.Errorf("stub: load model: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stub: model path %s is a directory", modelPath)
	}
	b.log.Debug("stub context created", "model_path", modelPath)
	return &stubContext{log: b.log, model: info.Name()}, nil
}

type stubContext struct {
	log      *slog.Logger
	model    string
	segments []string
	freed    bool
}

func (c *stubContext) Full(p Params, samples []float32) error {
	if c.freed {
		return fmt.Errorf("stub: context released")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	c.segments = c.segments[:0]
	rms := computeRMS(samples)
	c.log.Debug("stub inference", "samples", len(samples), "rms", rms, "threads", p.Threads)
	if rms < stubSilenceRMS {
		return nil
	}
	c.segments = append(c.segments,
		fmt.Sprintf("[stub:%s]", c.model),
		fmt.Sprintf(" %d samples (%s)", len(samples), p.ResolvedLanguage()),
	)
	return nil
}

func (c *stubContext) NumSegments() int { return len(c.segments) }

func (c *stubContext) SegmentText(i int) string {
	if i < 0 || i >= len(c.segments) {
		return ""
	}
	return c.segments[i]
}

func (c *stubContext) Free() {
	c.freed = true
	c.segments = nil
}

func computeRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
