package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return NewRecorder(slog.New(slog.NewTextHandler(io.Discard, nil)), WithMeterProvider(mp)), reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s has unexpected type %T", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				key := ""
				for _, kv := range dp.Attributes.ToSlice() {
					key = kv.Value.Emit()
				}
				out[key] += dp.Value
			}
		}
	}
	return out
}

func TestRecorderSnapshot(t *testing.T) {
	recorder, _ := newTestRecorder(t)
	if snapshot := recorder.Snapshot(); snapshot.SessionsCreated != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}

	recorder.SessionCreated(1, "/models/a.bin")
	recorder.SessionInitFailed("/models/missing.bin", errors.New("boom"))

	call := recorder.StartTranscription(1, "/audio/a.wav")
	if call == nil {
		t.Fatalf("expected call metrics")
	}
	call.RecordDecode(16000, 16000, 1)
	call.RecordTranscript(2, "hello world")
	call.Finish(nil)
	call.Finish(errors.New("ignored"))

	failed := recorder.StartTranscription(1, "/audio/broken.wav")
	failed.Finish(io.ErrUnexpectedEOF)

	recorder.SessionFreed(1)

	snapshot := recorder.Snapshot()
	want := Snapshot{
		SessionsCreated:      1,
		SessionInitFailures:  1,
		SessionsFreed:        1,
		ActiveSessions:       0,
		TotalTranscriptions:  2,
		FailedTranscriptions: 1,
		TotalSamples:         16000,
		TotalSegments:        2,
	}
	if snapshot != want {
		t.Fatalf("unexpected snapshot:\n got %+v\nwant %+v", snapshot, want)
	}
}

func TestRecorderExportsMetrics(t *testing.T) {
	recorder, reader := newTestRecorder(t)

	recorder.SessionCreated(7, "m")
	recorder.SessionCreated(8, "m")
	recorder.SessionFreed(7)
	ok := recorder.StartTranscription(8, "a.wav")
	ok.RecordDecode(320, 16000, 2)
	ok.Finish(nil)
	recorder.StartTranscription(8, "b.wav").Finish(errors.New("decode"))

	sessions := collectSum(t, reader, "whisper.sessions")
	if sessions["created"] != 2 || sessions["freed"] != 1 {
		t.Fatalf("unexpected session counters: %v", sessions)
	}
	active := collectSum(t, reader, "whisper.sessions.active")
	if active[""] != 1 {
		t.Fatalf("unexpected active sessions: %v", active)
	}
	calls := collectSum(t, reader, "whisper.transcriptions")
	if calls["ok"] != 1 || calls["error"] != 1 {
		t.Fatalf("unexpected transcription counters: %v", calls)
	}
	samples := collectSum(t, reader, "whisper.audio.samples")
	if samples[""] != 320 {
		t.Fatalf("unexpected sample counter: %v", samples)
	}
}

func TestNilRecorderIsInert(t *testing.T) {
	var recorder *Recorder
	recorder.SessionCreated(1, "m")
	recorder.SessionFreed(1)
	call := recorder.StartTranscription(1, "a.wav")
	call.RecordDecode(1, 1, 1)
	call.RecordTranscript(1, "x")
	call.Finish(nil)
	if recorder.Snapshot() != (Snapshot{}) {
		t.Fatal("nil recorder must report an empty snapshot")
	}
}
