// Package wav decodes the fixed-layout subset of RIFF/WAVE files accepted by
// the transcription pipeline: a 44-byte canonical header followed by
// interleaved 16-bit signed little-endian PCM.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// HeaderSize is the fixed header length assumed before the PCM payload.
// Chunk sizes are not walked; extra chunks before "data" are read as audio.
const HeaderSize = 44

const supportedBitsPerSample = 16

var (
	// ErrOpen reports that the source file could not be opened for reading.
	ErrOpen = errors.New("wav: open failed")
	// ErrTruncatedHeader reports a source shorter than HeaderSize bytes.
	ErrTruncatedHeader = errors.New("wav: truncated header")
	// ErrInvalidFormat reports missing RIFF/WAVE tags or an unusable layout.
	ErrInvalidFormat = errors.New("wav: invalid format")
	// ErrUnsupportedFormat reports a sample depth other than 16 bits.
	ErrUnsupportedFormat = errors.New("wav: unsupported format")
)

// Header holds the fields read from the canonical 44-byte header.
type Header struct {
	RIFFTag       string
	WAVETag       string
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	// DataSize is the declared size of the data sub-chunk. It is reported
	// for diagnostics only; the payload length is derived from the file size.
	DataSize uint32
}

// AudioBuffer is a mono float stream normalised to [-1, 1].
type AudioBuffer struct {
	Samples    []float32
	SampleRate uint32

	// Source layout, kept for diagnostics.
	Channels      uint16
	BitsPerSample uint16
}

// Duration returns the playback length in seconds.
func (b AudioBuffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Decoder reads WAV files. The zero value is ready to use and logs through
// slog.Default().
type Decoder struct {
	Logger *slog.Logger
}

// Decode reads the file at path using a zero Decoder.
func Decode(path string) (AudioBuffer, error) {
	return Decoder{}.Decode(path)
}

// DecodeBytes decodes an in-memory WAV image using a zero Decoder.
func DecodeBytes(data []byte) (AudioBuffer, error) {
	return Decoder{}.DecodeReader(bytes.NewReader(data), int64(len(data)))
}

// Decode opens path, decodes it and closes the file on every exit path.
func (d Decoder) Decode(path string) (AudioBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return AudioBuffer{}, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return AudioBuffer{}, fmt.Errorf("%w: stat %s: %v", ErrOpen, path, err)
	}

	buf, err := d.DecodeReader(file, info.Size())
	if err != nil {
		return AudioBuffer{}, fmt.Errorf("%w (%s)", err, path)
	}
	return buf, nil
}

// DecodeReader decodes size bytes of WAV data starting at offset 0 of r.
func (d Decoder) DecodeReader(r io.ReaderAt, size int64) (AudioBuffer, error) {
	logger := d.logger()

	header, err := ReadHeader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return AudioBuffer{}, err
	}

	logger.Debug("wav header",
		"sample_rate", header.SampleRate,
		"channels", header.Channels,
		"bits_per_sample", header.BitsPerSample,
	)

	if header.BitsPerSample != supportedBitsPerSample {
		return AudioBuffer{}, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, header.BitsPerSample)
	}
	if header.Channels == 0 {
		return AudioBuffer{}, fmt.Errorf("%w: zero channels", ErrInvalidFormat)
	}

	payloadSize := size - HeaderSize
	if int64(header.DataSize) != payloadSize {
		logger.Debug("wav data chunk size differs from payload size",
			"declared", header.DataSize,
			"payload", payloadSize,
		)
	}

	payload := make([]byte, payloadSize)
	n, err := r.ReadAt(payload, HeaderSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return AudioBuffer{}, fmt.Errorf("wav: read payload: %w", err)
	}
	payload = payload[:n]

	samples := pcm16ToMono(payload, int(header.Channels))
	logger.Debug("wav decoded", "samples", len(samples))

	return AudioBuffer{
		Samples:       samples,
		SampleRate:    header.SampleRate,
		Channels:      header.Channels,
		BitsPerSample: header.BitsPerSample,
	}, nil
}

// ReadHeader reads and validates the fixed 44-byte header from r. The RIFF
// and WAVE tags are verified before any field is interpreted.
func ReadHeader(r io.Reader) (Header, error) {
	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrTruncatedHeader
		}
		return Header{}, fmt.Errorf("wav: read header: %w", err)
	}

	h := Header{
		RIFFTag: string(raw[0:4]),
		WAVETag: string(raw[8:12]),
	}
	if h.RIFFTag != "RIFF" || h.WAVETag != "WAVE" {
		return Header{}, fmt.Errorf("%w: tags %q/%q", ErrInvalidFormat, h.RIFFTag, h.WAVETag)
	}

	h.Channels = binary.LittleEndian.Uint16(raw[22:24])
	h.SampleRate = binary.LittleEndian.Uint32(raw[24:28])
	h.BitsPerSample = binary.LittleEndian.Uint16(raw[34:36])
	h.DataSize = binary.LittleEndian.Uint32(raw[40:44])
	return h, nil
}

func (d Decoder) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
