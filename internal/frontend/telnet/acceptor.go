package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetable/internal/config"
)

// SessionHandler runs the command loop for a single connected player.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for Telnet connections and hands each one to a
// SessionHandler on its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	running  bool
	stopped  bool
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// NewAcceptor creates a Telnet acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		conns:   make(map[*Conn]struct{}),
		quit:    make(chan struct{}),
	}
}

// ListenAndServe binds the configured address and serves until Stop is called.
//
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(listener)
}

// Serve accepts connections on listener until Stop is called. If Stop has
// already been called, Serve closes listener and returns nil at once.
//
// Precondition: The acceptor must not already be serving.
func (a *Acceptor) Serve(listener net.Listener) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	if a.running {
		a.mu.Unlock()
		return errors.New("telnet acceptor already running")
	}
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", listener.Addr().String()),
	)

	for {
		raw, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}

		conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
		if !a.track(conn) {
			_ = conn.Close()
			return nil
		}
		go a.serveConn(conn)
	}
}

// track registers conn for forced close on Stop and counts its session
// goroutine. It reports false once the acceptor is stopping.
func (a *Acceptor) track(conn *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return false
	}
	a.conns[conn] = struct{}{}
	a.wg.Add(1)
	return true
}

func (a *Acceptor) untrack(conn *Conn) {
	a.mu.Lock()
	delete(a.conns, conn)
	a.mu.Unlock()
}

func (a *Acceptor) serveConn(conn *Conn) {
	defer a.wg.Done()
	defer a.untrack(conn)
	defer conn.Close()

	start := time.Now()
	addr := conn.RemoteAddr().String()
	a.logger.Info("client connected", zap.String("remote_addr", addr))

	if err := conn.Negotiate(); err != nil {
		a.logger.Warn("telnet negotiation failed",
			zap.String("remote_addr", addr),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := a.handler.HandleSession(ctx, conn)
	fields := []zap.Field{
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		a.logger.Debug("session ended", append(fields, zap.Error(err))...)
		return
	}
	a.logger.Info("session ended cleanly", fields...)
}

// Stop closes the listener and every open connection, then waits for the
// session goroutines to exit. Stop may be called before Serve, in which case
// a later Serve returns immediately. Calling Stop more than once is safe.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.running = false
	a.quitOnce.Do(func() { close(a.quit) })
	if a.listener != nil {
		_ = a.listener.Close()
	}
	open := len(a.conns)
	for conn := range a.conns {
		_ = conn.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped", zap.Int("closed_sessions", open))
}

// Addr returns the listening address, or "" before Serve has started.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// ActiveSessions returns the number of connected players.
func (a *Acceptor) ActiveSessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}
