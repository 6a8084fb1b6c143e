// Package relay accepts sensor connections and turns each of them into one
// pool job that reads length-prefixed frames until the sensor hangs up.
package relay

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/TemirB/sensor-relay/internal/observability"
	"github.com/TemirB/sensor-relay/internal/pkg/pool"
	"github.com/TemirB/sensor-relay/internal/protocol"
	"go.uber.org/zap"
)

type FrameHandler interface {
	Handle(ctx context.Context, payload []byte) error
}

type FrameHandlerFunc func(ctx context.Context, payload []byte) error

func (f FrameHandlerFunc) Handle(ctx context.Context, payload []byte) error { return f(ctx, payload) }

type Submitter interface {
	TrySubmit(job pool.Job) error
}

type Server struct {
	handler     FrameHandler
	submitter   Submitter
	logger      *zap.Logger
	metrics     observability.Metrics
	maxFrame    int
	readTimeout time.Duration

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

// New returns a server that hands connections to submitter. A zero
// readTimeout disables the idle deadline.
func New(handler FrameHandler, submitter Submitter, maxFrame int, readTimeout time.Duration, logger *zap.Logger, metrics observability.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Server{
		handler:     handler,
		submitter:   submitter,
		logger:      logger,
		metrics:     metrics,
		maxFrame:    maxFrame,
		readTimeout: readTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts until ctx is cancelled. Cancellation closes the listener and
// every open connection, so the jobs serving them return promptly and the
// pool can drain. It returns nil after a cancellation.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
		s.closeAll()
	})
	defer stop()

	s.logger.Info("relay listening", zap.String("addr", ln.Addr().String()))

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("relay stopped accepting")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.logger.Warn("accept error, retrying", zap.Error(err), zap.Duration("backoff", backoff))
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		if !s.track(conn) {
			_ = conn.Close()
			continue
		}

		c := conn
		if err := s.submitter.TrySubmit(func() { s.serveConn(ctx, c) }); err != nil {
			s.logger.Warn("connection rejected",
				zap.String("remote", c.RemoteAddr().String()),
				zap.Error(err),
			)
			s.untrack(c)
			_ = c.Close()
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

// serveConn runs on a pool worker. Frames are handled with a context that
// survives cancellation so a reading read before shutdown still gets stored.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer func() {
		s.untrack(conn)
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	log := s.logger.With(zap.String("remote", remote))
	log.Debug("connection established")

	hctx := context.WithoutCancel(ctx)
	for {
		if s.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		payload, err := protocol.ReadFrame(conn, s.maxFrame)
		if err != nil {
			s.logReadError(log, err)
			return
		}

		if err := s.handler.Handle(hctx, payload); err != nil {
			s.metrics.ObserveFrame(len(payload), false)
			log.Warn("frame not processed", zap.Int("bytes", len(payload)), zap.Error(err))
			continue
		}
		s.metrics.ObserveFrame(len(payload), true)
	}
}

func (s *Server) logReadError(log *zap.Logger, err error) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Debug("connection closed by peer")
	case errors.Is(err, net.ErrClosed):
		log.Debug("connection closed by relay")
	case errors.Is(err, protocol.ErrFrameTooLarge):
		s.metrics.ObserveFrame(0, false)
		log.Warn("dropping connection", zap.Error(err))
	case errors.As(err, &ne) && ne.Timeout():
		log.Info("connection idle, closing", zap.Duration("read_timeout", s.readTimeout))
	default:
		log.Warn("failed to read frame", zap.Error(err))
	}
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
}

// Conns is the number of connections currently open.
func (s *Server) Conns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
