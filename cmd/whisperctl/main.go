// Command whisperctl drives the WAV binding from a terminal.
//
// Usage:
//
//	whisperctl transcribe --model ggml-base.bin clip.wav [more.wav...]
//	whisperctl decode clip.wav
//	whisperctl version
//
// Defaults for the model path, engine selection and decoding overrides are
// read from the same environment as the adapter (NUPI_MODEL_PATH,
// NUPI_ADAPTER_USE_STUB_ENGINE, WHISPERCPP_THREADS, WHISPERCPP_AUDIO_CTX).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
