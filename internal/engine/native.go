//go:build whispercpp

// This file contains the native backend built on the whisper.cpp CGO
// bindings. libwhisper and whisper.h must be reachable through
// LIBRARY_PATH and C_INCLUDE_PATH at build time.

package engine

import (
	"errors"
	"fmt"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go"
)

// NativeAvailable reports whether the native whisper backend is compiled in.
func NativeAvailable() bool { return true }

type nativeBackend struct{}

// NewNativeBackend returns the whisper.cpp backend.
func NewNativeBackend() (Backend, error) {
	return nativeBackend{}, nil
}

func (nativeBackend) Name() string { return "whisper.cpp" }

func (nativeBackend) Init(modelPath string) (Context, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: model path required")
	}
	// Whisper_init uses whisper_context_default_params.
	ctx := whisper.Whisper_init(modelPath)
	if ctx == nil {
		return nil, fmt.Errorf("whisper: failed to initialise context for %s", modelPath)
	}
	return &nativeContext{ctx: ctx}, nil
}

type nativeContext struct {
	ctx *whisper.Context
}

func (c *nativeContext) Full(p Params, samples []float32) error {
	if c.ctx == nil {
		return errors.New("whisper: context released")
	}
	// Whisper_full indexes samples[0].
	if len(samples) == 0 {
		return errors.New("whisper: no audio samples")
	}
	// The bindings expose no setters for suppress_blank/suppress_nst; the
	// library defaults (true/false) are the only supported combination.
	if !p.SuppressBlank || p.SuppressNonSpeech {
		return fmt.Errorf("whisper: suppress_blank=%v suppress_non_speech=%v not supported", p.SuppressBlank, p.SuppressNonSpeech)
	}

	strategy := whisper.SAMPLING_GREEDY
	if p.Strategy == SamplingBeamSearch {
		strategy = whisper.SAMPLING_BEAM_SEARCH
	}
	params := c.ctx.Whisper_full_default_params(strategy)
	params.SetPrintRealtime(p.PrintRealtime)
	params.SetPrintProgress(p.PrintProgress)
	params.SetPrintTimestamps(p.PrintTimestamps)
	params.SetPrintSpecial(p.PrintSpecial)
	params.SetTranslate(p.Translate)
	params.SetThreads(p.Threads)
	params.SetOffset(p.OffsetMs)
	params.SetNoContext(p.NoContext)
	params.SetSingleSegment(p.SingleSegment)
	params.SetAudioCtx(p.AudioCtx)

	lang := p.ResolvedLanguage()
	if isAutoLanguage(lang) {
		if err := params.SetLanguage(-1); err != nil {
			return fmt.Errorf("whisper: set language auto: %w", err)
		}
	} else {
		id := c.ctx.Whisper_lang_id(lang)
		if id < 0 {
			return fmt.Errorf("whisper: unsupported language %q", lang)
		}
		if err := params.SetLanguage(id); err != nil {
			return fmt.Errorf("whisper: set language %q: %w", lang, err)
		}
	}

	if err := c.ctx.Whisper_full(params, samples, nil, nil, nil); err != nil {
		return fmt.Errorf("whisper: inference failed: %w", err)
	}
	return nil
}

func (c *nativeContext) NumSegments() int {
	if c.ctx == nil {
		return 0
	}
	return c.ctx.Whisper_full_n_segments()
}

func (c *nativeContext) SegmentText(i int) string {
	if c.ctx == nil {
		return ""
	}
	return c.ctx.Whisper_full_get_segment_text(i)
}

func (c *nativeContext) Free() {
	if c.ctx != nil {
		c.ctx.Whisper_free()
		c.ctx = nil
	}
}
