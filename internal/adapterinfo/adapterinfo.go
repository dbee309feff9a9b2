package adapterinfo

// Metadata captures static identifiers for the adapter. Centralising the values
// makes it easy to clone this repository for new adapters.
type Metadata struct {
	Name        string
	BinaryName  string
	Slug        string
	Description string
	Engine      string
	Version     string
}

// Info describes the current adapter.
var Info = Metadata{
	Name:        "Nupi Whisper WAV Binding",
	BinaryName:  "plugin-stt-whisper-wav",
	Slug:        "stt-whisper-wav",
	Description: "Transcribes 16-bit PCM WAV files with a local whisper.cpp model.",
	Engine:      "whisper.cpp",
	Version:     "0.3.0",
}

// EngineVersion is the identifier reported to hosts asking for the
// underlying engine.
func EngineVersion() string {
	return Info.Engine
}

// Version returns the adapter release.
func Version() string {
	return Info.Version
}
