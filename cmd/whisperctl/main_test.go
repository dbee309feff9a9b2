package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestWAV(t *testing.T, frames int, value int16) string {
	t.Helper()
	data := make([]byte, 44+frames*2)
	copy(data[0:4], "RIFF")
	copy(data[8:12], "WAVE")
	binary.LittleEndian.PutUint16(data[22:24], 1)
	binary.LittleEndian.PutUint32(data[24:28], 16000)
	binary.LittleEndian.PutUint16(data[34:36], 16)
	binary.LittleEndian.PutUint32(data[40:44], uint32(frames*2))
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(data[44+i*2:], uint16(value))
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NUPI_LOG_LEVEL", "error")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "whisper.cpp" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDecodeCommandJSON(t *testing.T) {
	path := writeTestWAV(t, 8000, 16384)
	out, err := run(t, "decode", "--json", path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var report decodeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if report.Samples != 8000 || report.Channels != 1 || report.SampleRate != 16000 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Peak != 0.5 {
		t.Fatalf("expected peak 0.5, got %v", report.Peak)
	}
}

func TestDecodeCommandRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, make([]byte, 64), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "decode", "--audio", path); err == nil {
		t.Fatal("expected error for a non-RIFF file")
	}
}

func TestTranscribeCommandWithStub(t *testing.T) {
	model := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	if err := os.WriteFile(model, []byte("ggml"), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	silence := writeTestWAV(t, 1600, 0)
	tone := writeTestWAV(t, 1600, 8000)

	out, err := run(t, "transcribe", "--stub", "--json", "--model", model, silence, tone)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	var results []transcription
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %+v", results)
	}
	if results[0].Text != "" {
		t.Fatalf("expected empty transcript for silence, got %q", results[0].Text)
	}
	if want := "[stub:ggml-tiny.bin] 1600 samples (auto)"; results[1].Text != want {
		t.Fatalf("unexpected transcript %q, want %q", results[1].Text, want)
	}
}

func TestTranscribeCommandRequiresModel(t *testing.T) {
	t.Setenv("NUPI_MODEL_PATH", "")
	if _, err := run(t, "transcribe", "--stub", "a.wav"); err == nil {
		t.Fatal("expected missing model error")
	}
}
