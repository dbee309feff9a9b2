package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/wav"
)

type decodeReport struct {
	Path          string  `json:"path"`
	Channels      uint16  `json:"channels"`
	SampleRate    uint32  `json:"sample_rate"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	DataSize      uint32  `json:"data_size"`
	Samples       int     `json:"samples"`
	Seconds       float64 `json:"seconds"`
	Peak          float64 `json:"peak"`
	RMS           float64 `json:"rms"`
}

func newDecodeCmd(flags *globalFlags) *cobra.Command {
	var audioPath string
	cmd := &cobra.Command{
		Use:   "decode [audio.wav]",
		Short: "Print the header and sample statistics of a WAV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if audioPath == "" && len(args) == 1 {
				audioPath = args[0]
			}
			if audioPath == "" {
				return errors.New("audio file is required, use --audio or pass a path")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			header, err := readHeader(audioPath)
			if err != nil {
				return err
			}
			buf, err := wav.Decoder{Logger: flags.logger(cfg)}.Decode(audioPath)
			if err != nil {
				return err
			}

			report := decodeReport{
				Path:          audioPath,
				Channels:      header.Channels,
				SampleRate:    header.SampleRate,
				BitsPerSample: header.BitsPerSample,
				DataSize:      header.DataSize,
				Samples:       len(buf.Samples),
				Seconds:       buf.Duration(),
			}
			report.Peak, report.RMS = levels(buf.Samples)

			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return printJSON(out, report)
			}
			fmt.Fprintf(out, "path:            %s\n", report.Path)
			fmt.Fprintf(out, "channels:        %d\n", report.Channels)
			fmt.Fprintf(out, "sample rate:     %d Hz\n", report.SampleRate)
			fmt.Fprintf(out, "bits per sample: %d\n", report.BitsPerSample)
			fmt.Fprintf(out, "data size:       %d bytes\n", report.DataSize)
			fmt.Fprintf(out, "mono samples:    %d (%.2fs)\n", report.Samples, report.Seconds)
			fmt.Fprintf(out, "peak / rms:      %.4f / %.4f\n", report.Peak, report.RMS)
			return nil
		},
	}
	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "path to a WAV file")
	return cmd
}

func readHeader(path string) (wav.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return wav.Header{}, fmt.Errorf("%w: %s: %v", wav.ErrOpen, path, err)
	}
	defer f.Close()
	return wav.ReadHeader(f)
}

func levels(samples []float32) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		peak = math.Max(peak, math.Abs(v))
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}
