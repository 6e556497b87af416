package studio

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const sseKeepAliveInterval = 30 * time.Second

// sseStream writes state events to one browser as Server-Sent Events.
type sseStream struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, http.ErrNotSupported
	}
	return &sseStream{writer: w, flusher: flusher}, nil
}

// Run forwards events until the channel closes or ctx is done.
func (s *sseStream) Run(ctx context.Context, events <-chan StateEvent) error {
	ticker := time.NewTicker(sseKeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.writeEvent(ev); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.writeKeepAlive(); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *sseStream) writeEvent(ev StateEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if _, err := s.writer.Write([]byte("event: state\ndata: ")); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	if _, err := s.writer.Write([]byte("\n\n")); err != nil {
		return err
	}

	s.flusher.Flush()
	return nil
}

func (s *sseStream) writeKeepAlive() error {
	if _, err := s.writer.Write([]byte(":keepalive\n\n")); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
