package mllp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-hl7/internal/pool"
	"github.com/arloliu/go-hl7/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sourcegraph/conc"
)

// Handler responds to the payload of one received MLLP frame.
//
// The returned response is framed and written back to the sender; a nil response writes nothing.
// A non-nil error is logged and nothing is written back, the connection stays open.
type Handler interface {
	ServeMLLP(ctx context.Context, payload []byte) ([]byte, error)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

// ServeMLLP calls f(ctx, payload).
func (f HandlerFunc) ServeMLLP(ctx context.Context, payload []byte) ([]byte, error) {
	return f(ctx, payload)
}

// EchoHandler returns a handler that replies with the received payload.
func EchoHandler() Handler {
	return HandlerFunc(func(_ context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	})
}

// Server is a passive MLLP endpoint. It accepts TCP connections and calls its Handler for every
// frame received on them, one frame at a time per connection.
type Server struct {
	cfg     *ConnectionConfig
	logger  logger.Logger
	handler Handler

	ctx       context.Context
	ctxCancel context.CancelFunc

	listenerMutex sync.Mutex
	listener      net.Listener

	// serveMu orders connection registration against shutdown, so no handler starts after Close
	serveMu  sync.Mutex
	connID   atomic.Uint64
	conns    *xsync.MapOf[uint64, net.Conn]
	wg       conc.WaitGroup
	shutdown atomic.Bool

	metrics ServerMetrics
}

// NewServer creates a new server with the given configuration and handler.
func NewServer(cfg *ConnectionConfig, handler Handler) (*Server, error) {
	if cfg == nil {
		return nil, ErrConnConfigNil
	}

	if handler == nil {
		return nil, ErrHandlerNil
	}

	s := &Server{
		cfg:     cfg,
		logger:  cfg.Logger().With("component", "mllp-server"),
		handler: handler,
		conns:   xsync.NewMapOf[uint64, net.Conn](),
	}
	s.ctx, s.ctxCancel = context.WithCancel(context.Background())

	return s, nil
}

// Metrics returns the metrics of the server.
func (s *Server) Metrics() *ServerMetrics {
	return &s.metrics
}

// Listen binds the configured address. It's called by ListenAndServe, and can be called before Serve
// to learn the bound address, e.g. when the configured port is 0.
func (s *Server) Listen() error {
	s.listenerMutex.Lock()
	defer s.listenerMutex.Unlock()

	if s.shutdown.Load() {
		return ErrServerClosed
	}

	if s.listener != nil {
		return nil
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(s.ctx, "tcp", s.cfg.Address())
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info("listening", "addr", listener.Addr().String())

	return nil
}

// Addr returns the bound address, or nil if the server is not listening.
func (s *Server) Addr() net.Addr {
	s.listenerMutex.Lock()
	defer s.listenerMutex.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// ListenAndServe binds the configured address and serves connections until Close is called.
// It always returns a non-nil error; after Close it returns ErrServerClosed.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}

	return s.Serve()
}

// Serve accepts connections until Close is called.
// It always returns a non-nil error; after Close it returns ErrServerClosed.
func (s *Server) Serve() error {
	s.listenerMutex.Lock()
	listener := s.listener
	s.listenerMutex.Unlock()

	if listener == nil {
		return ErrNotListening
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return ErrServerClosed
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			s.logger.Error("failed to accept connection", "error", err)

			return err
		}

		if !s.startConn(conn) {
			_ = conn.Close()
			return ErrServerClosed
		}
	}
}

// startConn registers conn and starts serving it. It returns false if the server is closing.
func (s *Server) startConn(conn net.Conn) bool {
	s.serveMu.Lock()
	defer s.serveMu.Unlock()

	if s.shutdown.Load() {
		return false
	}

	id := s.connID.Add(1)
	s.conns.Store(id, conn)
	s.metrics.incConnAcceptCount()
	s.wg.Go(func() { s.serveConn(id, conn) })

	return true
}

// Close stops accepting connections, closes the open ones and waits for the running handlers,
// at most for the configured close timeout.
func (s *Server) Close() error {
	s.serveMu.Lock()
	swapped := s.shutdown.CompareAndSwap(false, true)
	s.serveMu.Unlock()

	if !swapped {
		return nil
	}

	s.ctxCancel()

	s.listenerMutex.Lock()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.listenerMutex.Unlock()

	s.conns.Range(func(_ uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := s.wg.WaitAndRecover(); r != nil {
			s.logger.Error("connection handler panicked", "panic", r.Value)
		}
	}()

	timer := pool.GetTimer(s.cfg.CloseTimeout())
	defer pool.PutTimer(timer)

	select {
	case <-done:
		s.logger.Info("server closed")
	case <-timer.C:
		s.logger.Warn("close timeout, connection handlers are still running", "timeout", s.cfg.CloseTimeout())
	}

	return err
}

func (s *Server) serveConn(id uint64, conn net.Conn) {
	log := s.logger.With("conn", id, "remote_addr", conn.RemoteAddr().String())
	defer func() {
		s.conns.Delete(id)
		s.metrics.decConnActiveGauge()
		_ = conn.Close()
		log.Debug("connection closed")
	}()

	log.Debug("connection accepted")

	reader := newFrameReader(conn, s.cfg.MaxFrameSize())
	for {
		if err := conn.SetReadDeadline(idleDeadline(s.cfg.IdleTimeout())); err != nil {
			log.Debug("failed to set read deadline", "error", err)
			return
		}

		frame, err := reader.ReadFrame()
		if err != nil {
			if !s.shutdown.Load() && !errors.Is(err, io.EOF) {
				s.metrics.incFrameErrCount()
				log.Warn("failed to read frame", "error", err)
			}
			return
		}
		s.metrics.incFrameRecvCount()

		payload, err := Unframe(frame)
		if err != nil {
			s.metrics.incFrameErrCount()
			log.Warn("drop malformed frame", "error", err, "size", len(frame))
			continue
		}

		resp, err := s.handler.ServeMLLP(s.ctx, payload)
		if err != nil {
			s.metrics.incFrameErrCount()
			log.Error("handler failed", "error", err)
			continue
		}

		if resp == nil {
			continue
		}

		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout())); err != nil {
			log.Debug("failed to set write deadline", "error", err)
			return
		}

		if _, err := conn.Write(Frame(resp)); err != nil {
			s.metrics.incFrameErrCount()
			log.Warn("failed to write response", "error", err)
			return
		}
		s.metrics.incFrameSendCount()
	}
}

// idleDeadline returns the read deadline for the next frame; the zero time disables it.
func idleDeadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}

	return time.Now().Add(timeout)
}
