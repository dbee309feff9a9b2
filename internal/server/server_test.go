package server_test

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/binding"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/server"
)

const bufSize = 1024 * 1024

func startChannel(t *testing.T) (*server.Client, *binding.Boundary) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	lis := bufconn.Listen(bufSize)
	t.Cleanup(func() { lis.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	boundary := binding.New(engine.NewStubBackend(logger), binding.WithLogger(logger))
	t.Cleanup(boundary.Close)

	grpcServer := grpc.NewServer()
	t.Cleanup(grpcServer.Stop)
	server.RegisterWhisperChannelServer(grpcServer, server.New(boundary, logger))

	go func() {
		if err := grpcServer.Serve(lis); err != nil &&
			!errors.Is(err, grpc.ErrServerStopped) &&
			!errors.Is(err, net.ErrClosed) &&
			err.Error() != "closed" {
			t.Errorf("Serve() error: %v", err)
		}
	}()

	conn, err := grpc.DialContext(ctx, "bufconn",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return server.NewClient(conn), boundary
}

func ptr[T any](v T) *T { return &v }

func writeSilence(t *testing.T) string {
	t.Helper()
	const frames = 1600
	data := make([]byte, 44+frames*2)
	copy(data[0:4], "RIFF")
	copy(data[8:12], "WAVE")
	binary.LittleEndian.PutUint16(data[22:24], 1)
	binary.LittleEndian.PutUint32(data[24:28], engine.SampleRate)
	binary.LittleEndian.PutUint16(data[34:36], 16)
	path := filepath.Join(t.TempDir(), "silence.wav")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

func TestChannelLifecycle(t *testing.T) {
	client, boundary := startChannel(t)
	ctx := context.Background()

	model := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	if err := os.WriteFile(model, []byte("ggml"), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}

	initResp, err := client.InitContext(ctx, &server.InitContextRequest{ModelPath: ptr(model)})
	if err != nil {
		t.Fatalf("InitContext error: %v", err)
	}
	if initResp.ContextPtr == 0 {
		t.Fatal("expected non-zero context pointer")
	}

	trResp, err := client.Transcribe(ctx, &server.TranscribeRequest{
		ContextPtr: ptr(initResp.ContextPtr),
		AudioPath:  ptr(writeSilence(t)),
	})
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if trResp.Text != "" {
		t.Fatalf("expected empty transcript for silence, got %q", trResp.Text)
	}

	if _, err := client.FreeContext(ctx, &server.FreeContextRequest{ContextPtr: ptr(initResp.ContextPtr)}); err != nil {
		t.Fatalf("FreeContext error: %v", err)
	}
	if boundary.Sessions() != 0 {
		t.Fatalf("expected no live sessions after free, got %d", boundary.Sessions())
	}

	version, err := client.GetVersion(ctx, &server.GetVersionRequest{})
	if err != nil {
		t.Fatalf("GetVersion error: %v", err)
	}
	if version.Version != "whisper.cpp" {
		t.Fatalf("unexpected version %q", version.Version)
	}
}

func TestChannelFailuresAreSentinels(t *testing.T) {
	client, _ := startChannel(t)
	ctx := context.Background()

	initResp, err := client.InitContext(ctx, &server.InitContextRequest{ModelPath: ptr("/does/not/exist.bin")})
	if err != nil {
		t.Fatalf("InitContext error: %v", err)
	}
	if initResp.ContextPtr != 0 {
		t.Fatalf("expected null context, got %d", initResp.ContextPtr)
	}

	trResp, err := client.Transcribe(ctx, &server.TranscribeRequest{
		ContextPtr: ptr(int64(0)),
		AudioPath:  ptr("/does/not/exist.wav"),
	})
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if trResp.Text != "" {
		t.Fatalf("expected empty transcript, got %q", trResp.Text)
	}

	if _, err := client.FreeContext(ctx, &server.FreeContextRequest{ContextPtr: ptr(int64(0))}); err != nil {
		t.Fatalf("FreeContext of null context error: %v", err)
	}
}

func TestChannelMissingArguments(t *testing.T) {
	client, _ := startChannel(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"InitContext": func() error {
			_, err := client.InitContext(ctx, &server.InitContextRequest{})
			return err
		},
		"Transcribe without audio": func() error {
			_, err := client.Transcribe(ctx, &server.TranscribeRequest{ContextPtr: ptr(int64(1))})
			return err
		},
		"Transcribe without context": func() error {
			_, err := client.Transcribe(ctx, &server.TranscribeRequest{AudioPath: ptr("a.wav")})
			return err
		},
		"FreeContext": func() error {
			_, err := client.FreeContext(ctx, &server.FreeContextRequest{})
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			if got := status.Code(err); got != codes.InvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v (%v)", got, err)
			}
		})
	}
}
