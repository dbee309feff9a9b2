package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/binding"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
)

type transcription struct {
	Audio string `json:"audio"`
	Text  string `json:"text"`
}

func newTranscribeCmd(flags *globalFlags) *cobra.Command {
	var (
		modelPath string
		audioPath string
		useStub   bool
	)
	cmd := &cobra.Command{
		Use:   "transcribe [audio.wav...]",
		Short: "Transcribe one or more WAV files with a single model session",
		Long: `Load a whisper.cpp model once and transcribe every given WAV file with it.

Files must be 16-bit PCM; multi-channel input is averaged to mono. A file that
cannot be decoded or transcribed prints an empty transcript, exactly as the
binding reports it to hosts.

Examples:
  whisperctl transcribe --model ggml-base.bin --audio clip.wav
  whisperctl transcribe --model ggml-base.bin a.wav b.wav --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := flags.logger(cfg)

			if modelPath == "" {
				modelPath = cfg.ModelPath
			}
			if modelPath == "" {
				return errors.New("model path is required, use --model or NUPI_MODEL_PATH")
			}
			inputs := args
			if audioPath != "" {
				inputs = append([]string{audioPath}, inputs...)
			}
			if len(inputs) == 0 {
				return errors.New("at least one audio file is required, use --audio or pass paths")
			}

			cfg.UseStubEngine = cfg.UseStubEngine || useStub
			backend, engineErr := engine.New(cfg, logger)
			if engineErr != nil {
				logger.Warn("engine initialised with warnings", "error", engineErr)
			}

			b := binding.New(backend,
				binding.WithLogger(logger),
				binding.WithThreads(cfg.Threads),
				binding.WithAudioCtx(cfg.AudioCtx),
			)
			defer b.Close()

			handle := b.CreateSession(modelPath)
			if handle == 0 {
				return fmt.Errorf("failed to load model %s", modelPath)
			}
			defer b.FreeSession(handle)

			results := make([]transcription, 0, len(inputs))
			for _, path := range inputs {
				results = append(results, transcription{Audio: path, Text: b.Transcribe(handle, path)})
			}

			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return printJSON(out, results)
			}
			for _, r := range results {
				if len(results) > 1 {
					fmt.Fprintf(out, "%s:", r.Audio)
				}
				fmt.Fprintln(out, r.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "path to a ggml whisper model")
	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "path to a 16-bit PCM WAV file")
	cmd.Flags().BoolVar(&useStub, "stub", false, "use the deterministic stub engine")
	return cmd
}
