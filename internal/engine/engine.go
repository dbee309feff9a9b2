package engine

// SampleRate is the input rate whisper.cpp models are trained on. Audio at
// other rates is passed through unchanged.
const SampleRate = 16000

// Backend constructs engine contexts from model files.
type Backend interface {
	// Init loads model weights from modelPath. It fails when the file is
	// missing, unreadable or not a compatible model.
	Init(modelPath string) (Context, error)
	// Name identifies the backend in logs.
	Name() string
}

// Context is an engine-owned inference state. It must not be used after Free.
type Context interface {
	// Full runs inference over mono float samples with the given profile.
	Full(params Params, samples []float32) error
	// NumSegments reports how many segments the last Full call produced.
	NumSegments() int
	// SegmentText returns the text of segment i from the last Full call.
	SegmentText(i int) string
	// Free releases engine resources.
	Free()
}
