//go:build !whispercpp

package engine

// NativeAvailable reports whether the native whisper backend is compiled in.
func NativeAvailable() bool { return false }

// NewNativeBackend returns an error when the native backend is not built.
func NewNativeBackend() (Backend, error) {
	return nil, ErrNativeEngineUnavailable
}
