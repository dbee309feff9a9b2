package engine

import (
	"errors"
	"log/slog"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/config"
)

// ErrNativeEngineUnavailable indicates that the binary was built without the
// whispercpp tag.
var ErrNativeEngineUnavailable = errors.New("engine: native backend unavailable")

// New returns the backend selected by cfg. When the native backend is not
// compiled in it falls back to the stub and reports ErrNativeEngineUnavailable
// alongside a usable backend.
func New(cfg config.Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.UseStubEngine {
		logger.Warn("stub engine forced by configuration")
		return NewStubBackend(logger), nil
	}

	if !NativeAvailable() {
		logger.Warn("native backend disabled at build time; using stub engine")
		return NewStubBackend(logger), ErrNativeEngineUnavailable
	}

	native, err := NewNativeBackend()
	if err != nil {
		logger.Error("native backend initialisation failed; using stub", "error", err)
		return NewStubBackend(logger), err
	}
	logger.Info("native backend ready", "backend", native.Name())
	return native, nil
}
