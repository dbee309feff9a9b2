package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type clipOptions struct {
	sampleRate int
	channels   int
	seconds    float64
	frequency  float64
	amplitude  float64
}

func main() {
	var (
		output    = flag.String("out", "testdata/clip.wav", "destination WAV file")
		rate      = flag.Int("rate", 16000, "sample rate in Hz")
		channels  = flag.Int("channels", 1, "number of interleaved channels")
		seconds   = flag.Float64("seconds", 1, "clip length in seconds")
		frequency = flag.Float64("freq", 0, "sine frequency in Hz; 0 writes silence")
		amplitude = flag.Float64("amplitude", 0.5, "peak amplitude in (0, 1]")
	)
	flag.Parse()

	if strings.TrimSpace(*output) == "" {
		fmt.Fprintln(os.Stderr, "genwav: --out must not be empty")
		os.Exit(2)
	}
	clip := clipOptions{
		sampleRate: *rate,
		channels:   *channels,
		seconds:    *seconds,
		frequency:  *frequency,
		amplitude:  *amplitude,
	}
	if err := clip.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "genwav: %v\n", err)
		os.Exit(2)
	}

	path := filepath.Clean(*output)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "genwav: create directory: %v\n", err)
			os.Exit(1)
		}
	}
	if err := writeClip(path, clip); err != nil {
		fmt.Fprintf(os.Stderr, "genwav: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d Hz, %d ch, %.2fs)\n", path, clip.sampleRate, clip.channels, clip.seconds)
}

func (s clipOptions) validate() error {
	switch {
	case s.sampleRate <= 0:
		return fmt.Errorf("--rate must be positive")
	case s.channels <= 0:
		return fmt.Errorf("--channels must be positive")
	case s.seconds <= 0:
		return fmt.Errorf("--seconds must be positive")
	case s.frequency < 0:
		return fmt.Errorf("--freq must not be negative")
	case s.amplitude <= 0 || s.amplitude > 1:
		return fmt.Errorf("--amplitude must be in (0, 1]")
	}
	return nil
}

// samples returns interleaved 16-bit values with the same signal on every
// channel.
func (s clipOptions) samples() []int {
	frames := int(math.Round(s.seconds * float64(s.sampleRate)))
	data := make([]int, 0, frames*s.channels)
	for i := 0; i < frames; i++ {
		v := 0
		if s.frequency > 0 {
			phase := 2 * math.Pi * s.frequency * float64(i) / float64(s.sampleRate)
			v = int(math.Round(s.amplitude * math.MaxInt16 * math.Sin(phase)))
		}
		for c := 0; c < s.channels; c++ {
			data = append(data, v)
		}
	}
	return data
}

func writeClip(path string, clip clipOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: clip.channels, SampleRate: clip.sampleRate},
		Data:           clip.samples(),
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(file, clip.sampleRate, 16, clip.channels, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}
