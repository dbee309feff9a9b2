package server

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified name of the channel service.
const ServiceName = "whisper.channel.v1.WhisperChannel"

const (
	methodInitContext = "/" + ServiceName + "/InitContext"
	methodTranscribe  = "/" + ServiceName + "/Transcribe"
	methodFreeContext = "/" + ServiceName + "/FreeContext"
	methodGetVersion  = "/" + ServiceName + "/GetVersion"
)

// Request arguments are pointers so a missing key can be told apart from a
// zero value.

// InitContextRequest asks for a session on the model at ModelPath.
type InitContextRequest struct {
	ModelPath *string `json:"modelPath,omitempty"`
}

// InitContextResponse carries the session handle, 0 when the model failed to load.
type InitContextResponse struct {
	ContextPtr int64 `json:"contextPtr"`
}

// TranscribeRequest names the session and the WAV file to transcribe.
type TranscribeRequest struct {
	ContextPtr *int64  `json:"contextPtr,omitempty"`
	AudioPath  *string `json:"audioPath,omitempty"`
}

// TranscribeResponse carries the transcript, empty on any failure.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// FreeContextRequest names the session to release.
type FreeContextRequest struct {
	ContextPtr *int64 `json:"contextPtr,omitempty"`
}

// FreeContextResponse is empty.
type FreeContextResponse struct{}

// GetVersionRequest takes no arguments.
type GetVersionRequest struct{}

// GetVersionResponse carries the engine identifier.
type GetVersionResponse struct {
	Version string `json:"version"`
}

// WhisperChannelServer is the server API for the channel service.
type WhisperChannelServer interface {
	InitContext(context.Context, *InitContextRequest) (*InitContextResponse, error)
	Transcribe(context.Context, *TranscribeRequest) (*TranscribeResponse, error)
	FreeContext(context.Context, *FreeContextRequest) (*FreeContextResponse, error)
	GetVersion(context.Context, *GetVersionRequest) (*GetVersionResponse, error)
}

// RegisterWhisperChannelServer attaches srv to s.
func RegisterWhisperChannelServer(s grpc.ServiceRegistrar, srv WhisperChannelServer) {
	s.RegisterService(&WhisperChannel_ServiceDesc, srv)
}

// WhisperChannel_ServiceDesc describes the channel service for grpc.Server.
var WhisperChannel_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WhisperChannelServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitContext", Handler: initContextHandler},
		{MethodName: "Transcribe", Handler: transcribeHandler},
		{MethodName: "FreeContext", Handler: freeContextHandler},
		{MethodName: "GetVersion", Handler: getVersionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "whisper/channel/v1/channel.json",
}

func initContextHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InitContextRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WhisperChannelServer).InitContext(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodInitContext}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WhisperChannelServer).InitContext(ctx, req.(*InitContextRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func transcribeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TranscribeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WhisperChannelServer).Transcribe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodTranscribe}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WhisperChannelServer).Transcribe(ctx, req.(*TranscribeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func freeContextHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FreeContextRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WhisperChannelServer).FreeContext(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodFreeContext}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WhisperChannelServer).FreeContext(ctx, req.(*FreeContextRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getVersionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetVersionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WhisperChannelServer).GetVersion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetVersion}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WhisperChannelServer).GetVersion(ctx, req.(*GetVersionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the channel service over a gRPC connection using the JSON
// content subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// InitContext opens a session and returns its handle.
func (c *Client) InitContext(ctx context.Context, in *InitContextRequest, opts ...grpc.CallOption) (*InitContextResponse, error) {
	out := new(InitContextResponse)
	if err := c.cc.Invoke(ctx, methodInitContext, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// Transcribe runs a WAV file through an open session.
func (c *Client) Transcribe(ctx context.Context, in *TranscribeRequest, opts ...grpc.CallOption) (*TranscribeResponse, error) {
	out := new(TranscribeResponse)
	if err := c.cc.Invoke(ctx, methodTranscribe, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// FreeContext releases a session.
func (c *Client) FreeContext(ctx context.Context, in *FreeContextRequest, opts ...grpc.CallOption) (*FreeContextResponse, error) {
	out := new(FreeContextResponse)
	if err := c.cc.Invoke(ctx, methodFreeContext, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVersion returns the engine identifier.
func (c *Client) GetVersion(ctx context.Context, in *GetVersionRequest, opts ...grpc.CallOption) (*GetVersionResponse, error) {
	out := new(GetVersionResponse)
	if err := c.cc.Invoke(ctx, methodGetVersion, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
}
