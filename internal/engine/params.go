package engine

import "fmt"

// SamplingStrategy selects the decoder search.
type SamplingStrategy int

const (
	SamplingGreedy SamplingStrategy = iota
	SamplingBeamSearch
)

func (s SamplingStrategy) String() string {
	switch s {
	case SamplingGreedy:
		return "greedy"
	case SamplingBeamSearch:
		return "beam_search"
	default:
		return fmt.Sprintf("sampling(%d)", int(s))
	}
}

// LanguageAuto asks the engine to detect the spoken language.
const LanguageAuto = "auto"

// Params is the decoding profile handed to Context.Full. It is a plain value:
// callers copy it, never share it.
type Params struct {
	Strategy SamplingStrategy
	Threads  int
	// AudioCtx limits the encoder context window; 0 keeps the model default (1500).
	AudioCtx  int
	Language  string
	Translate bool
	OffsetMs  int

	NoContext         bool
	SingleSegment     bool
	SuppressBlank     bool
	SuppressNonSpeech bool

	PrintRealtime   bool
	PrintProgress   bool
	PrintTimestamps bool
	PrintSpecial    bool
}

// DefaultParams returns the fixed latency-oriented profile: greedy search on
// eight threads, a 512-frame audio context, language auto-detection and no
// carried-over text context between calls.
func DefaultParams() Params {
	return Params{
		Strategy:          SamplingGreedy,
		Threads:           8,
		AudioCtx:          512,
		Language:          LanguageAuto,
		Translate:         false,
		OffsetMs:          0,
		NoContext:         true,
		SingleSegment:     false,
		SuppressBlank:     true,
		SuppressNonSpeech: false,
	}
}

// WithThreads returns a copy of p using n threads. Non-positive n keeps p.
func (p Params) WithThreads(n int) Params {
	if n > 0 {
		p.Threads = n
	}
	return p
}

// WithAudioCtx returns a copy of p with the given encoder window. Non-positive
// n keeps p.
func (p Params) WithAudioCtx(n int) Params {
	if n > 0 {
		p.AudioCtx = n
	}
	return p
}

// Validate rejects profiles the engine cannot run.
func (p Params) Validate() error {
	if p.Threads < 1 {
		return fmt.Errorf("engine: threads must be >= 1, got %d", p.Threads)
	}
	if p.AudioCtx < 0 {
		return fmt.Errorf("engine: audio_ctx must be >= 0, got %d", p.AudioCtx)
	}
	if p.OffsetMs < 0 {
		return fmt.Errorf("engine: offset_ms must be >= 0, got %d", p.OffsetMs)
	}
	return nil
}

// ResolvedLanguage returns the language code to pass to the engine.
func (p Params) ResolvedLanguage() string {
	return normaliseLanguage(p.Language, LanguageAuto)
}
