package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/adapterinfo"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/config"
)

type globalFlags struct {
	logLevel string
	jsonOut  bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "whisperctl",
		Short:         "Transcribe 16-bit PCM WAV files with whisper.cpp",
		Version:       adapterinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to NUPI_LOG_LEVEL")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		newTranscribeCmd(flags),
		newDecodeCmd(flags),
		newVersionCmd(flags),
	)
	return root
}

// loadConfig reads the adapter environment. The listen address is irrelevant
// here but still validated, so the default is kept.
func loadConfig() (config.Config, error) {
	cfg, err := config.Loader{}.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func (f *globalFlags) logger(cfg config.Config) *slog.Logger {
	level := f.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
