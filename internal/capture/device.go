// Package capture records microphone audio into a single clip.
package capture

import (
	"context"
	"errors"
)

var (
	ErrNotRecording      = errors.New("not recording")
	ErrPermissionDenied  = errors.New("microphone permission denied")
	ErrDeviceUnavailable = errors.New("microphone unavailable")
	ErrClosed            = errors.New("capture controller closed")
)

// Device grants access to a microphone.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream delivers encoded audio fragments in arrival order. The fragment
// channel is closed once the stream ends, either because the source stopped
// or because Close was called. Close releases the device.
type Stream interface {
	Fragments() <-chan []byte
	Close() error
}

type DeviceFunc func(ctx context.Context) (Stream, error)

func (f DeviceFunc) Open(ctx context.Context) (Stream, error) {
	return f(ctx)
}
