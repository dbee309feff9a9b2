package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/adapterinfo"
)

// Binding is the handle-based surface the channel forwards to.
type Binding interface {
	CreateSession(modelPath string) int64
	Transcribe(handle int64, audioPath string) string
	FreeSession(handle int64)
	Version() string
}

// Server implements WhisperChannelServer on top of a Binding. Only missing
// arguments are reported as errors; engine failures travel as sentinel
// values in the response.
type Server struct {
	binding Binding
	log     *slog.Logger
}

// New returns a new Server instance.
func New(binding Binding, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if binding == nil {
		panic("server: binding must not be nil")
	}
	return &Server{
		binding: binding,
		log: logger.With(
			"component", "server",
			"adapter", adapterinfo.Info.Slug,
		),
	}
}

var _ WhisperChannelServer = (*Server)(nil)

// InitContext opens a session for the requested model.
func (s *Server) InitContext(_ context.Context, req *InitContextRequest) (*InitContextResponse, error) {
	if req.ModelPath == nil {
		return nil, invalidArgument("modelPath")
	}
	handle := s.binding.CreateSession(*req.ModelPath)
	s.log.Debug("init context", "model_path", *req.ModelPath, "handle", handle)
	return &InitContextResponse{ContextPtr: handle}, nil
}

// Transcribe runs the requested WAV file through a session.
func (s *Server) Transcribe(_ context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	if req.ContextPtr == nil || req.AudioPath == nil {
		return nil, invalidArgument("contextPtr or audioPath")
	}
	text := s.binding.Transcribe(*req.ContextPtr, *req.AudioPath)
	s.log.Debug("transcribe", "handle", *req.ContextPtr, "audio_path", *req.AudioPath, "chars", len(text))
	return &TranscribeResponse{Text: text}, nil
}

// FreeContext releases a session. Unknown handles are ignored.
func (s *Server) FreeContext(_ context.Context, req *FreeContextRequest) (*FreeContextResponse, error) {
	if req.ContextPtr == nil {
		return nil, invalidArgument("contextPtr")
	}
	s.binding.FreeSession(*req.ContextPtr)
	s.log.Debug("free context", "handle", *req.ContextPtr)
	return &FreeContextResponse{}, nil
}

// GetVersion reports the engine identifier.
func (s *Server) GetVersion(context.Context, *GetVersionRequest) (*GetVersionResponse, error) {
	return &GetVersionResponse{Version: s.binding.Version()}, nil
}

func invalidArgument(what string) error {
	return status.Errorf(codes.InvalidArgument, "%s is required", what)
}
