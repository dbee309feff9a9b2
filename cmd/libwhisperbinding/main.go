// Command libwhisperbinding builds the binding as a C shared library for
// hosts that load it in-process:
//
//	go build -tags whispercpp -buildmode=c-shared -o libwhisperbinding.so ./cmd/libwhisperbinding
//
// Handles are int64 values issued by the library; 0 is the null handle.
// Strings returned by the library are allocated with malloc and must be
// released with whisper_binding_free_string.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"unsafe"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/binding"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/config"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/telemetry"
)

var (
	boundaryOnce sync.Once
	boundary     *binding.Boundary
)

// shared lazily builds the process-wide Boundary from the adapter
// environment. Configuration errors fall back to defaults so the host still
// gets a working library.
func shared() *binding.Boundary {
	boundaryOnce.Do(func() {
		cfg, err := config.Loader{}.Load()
		logger := newLogger(cfg.LogLevel)
		if err != nil {
			logger.Warn("invalid configuration, using defaults", "error", err)
			cfg = config.Config{ListenAddr: config.DefaultListenAddr}
		}

		backend, engineErr := engine.New(cfg, logger)
		if engineErr != nil {
			logger.Warn("engine initialised with warnings", "error", engineErr)
		}
		boundary = binding.New(backend,
			binding.WithLogger(logger),
			binding.WithRecorder(telemetry.NewRecorder(logger)),
			binding.WithThreads(cfg.Threads),
			binding.WithAudioCtx(cfg.AudioCtx),
		)
	})
	return boundary
}

//export whisper_binding_create_session
func whisper_binding_create_session(modelPath *C.char) C.int64_t {
	if modelPath == nil {
		return 0
	}
	return C.int64_t(shared().CreateSession(C.GoString(modelPath)))
}

//export whisper_binding_transcribe
func whisper_binding_transcribe(handle C.int64_t, audioPath *C.char) *C.char {
	var text string
	if audioPath != nil {
		text = shared().Transcribe(int64(handle), C.GoString(audioPath))
	}
	return C.CString(text)
}

//export whisper_binding_free_string
func whisper_binding_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

//export whisper_binding_free_session
func whisper_binding_free_session(handle C.int64_t) {
	shared().FreeSession(int64(handle))
}

//export whisper_binding_version
func whisper_binding_version() *C.char {
	return C.CString(shared().Version())
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {}
