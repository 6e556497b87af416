package capture

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxFragmentSize = 4 * 1024 * 1024
	fragmentBuffer  = 64

	stopCommand = "stop"
)

// WSDevice treats a browser WebSocket as the microphone: binary messages are
// encoded audio fragments, a text "stop" or the socket closing ends the
// recording. A WSDevice can be opened once.
type WSDevice struct {
	ws     *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	opened bool
	ended  chan struct{}
}

func NewWSDevice(ws *websocket.Conn, logger *slog.Logger) *WSDevice {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSDevice{
		ws:     ws,
		logger: logger.With("component", "ws_microphone"),
		ended:  make(chan struct{}),
	}
}

// Ended is closed once the underlying connection is no longer read.
func (d *WSDevice) Ended() <-chan struct{} {
	return d.ended
}

func (d *WSDevice) Open(ctx context.Context) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.opened {
		return nil, ErrDeviceUnavailable
	}
	d.opened = true

	s := &wsStream{
		ws:     d.ws,
		logger: d.logger,
		frags:  make(chan []byte, fragmentBuffer),
		done:   make(chan struct{}),
		ended:  d.ended,
	}
	go s.readPump()
	go s.pingPump()
	return s, nil
}

// ReleaseIfUnused closes the connection when the device was never opened.
// An opened device is released through its stream.
func (d *WSDevice) ReleaseIfUnused() {
	d.mu.Lock()
	opened := d.opened
	d.opened = true
	d.mu.Unlock()
	if !opened {
		_ = d.ws.Close()
		close(d.ended)
	}
}

type wsStream struct {
	ws     *websocket.Conn
	logger *slog.Logger
	frags  chan []byte
	done   chan struct{}
	ended  chan struct{}
	once   sync.Once
}

func (s *wsStream) Fragments() <-chan []byte {
	return s.frags
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = s.ws.Close()
	})
	return err
}

func (s *wsStream) readPump() {
	defer func() {
		close(s.frags)
		close(s.ended)
	}()

	s.ws.SetReadLimit(maxFragmentSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				select {
				case <-s.done:
				default:
					s.logger.Warn("microphone socket read error", "error", err)
				}
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			select {
			case s.frags <- data:
			case <-s.done:
				return
			}
		case websocket.TextMessage:
			if strings.TrimSpace(string(data)) == stopCommand {
				return
			}
		}
	}
}

func (s *wsStream) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.ended:
			return
		case <-ticker.C:
			if err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
