package net

import (
	"errors"
	"fmt"
	stdnet "net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/thelostgroup/Impostor/internal/protocol"
)

// Config holds the transport knobs, filled from the network section of the
// server configuration.
type Config struct {
	BindAddress  string
	OutQueueSize int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Dispatcher receives inbound frames and connection teardown notifications.
// HandleDisconnect is invoked exactly once per connection, after the read
// loop has exited.
type Dispatcher interface {
	HandleFrame(conn Connection, frame []byte)
	HandleDisconnect(conn Connection)
}

// Server accepts client connections and runs one read loop and one write
// loop per connection.
type Server struct {
	cfg      Config
	log      *zap.Logger
	dispatch Dispatcher

	ln     stdnet.Listener
	nextID atomic.Int32
	closed atomic.Bool
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[int32]*tcpConn
}

func NewServer(cfg Config, log *zap.Logger, dispatch Dispatcher) *Server {
	return &Server{cfg: cfg, log: log, dispatch: dispatch, conns: make(map[int32]*tcpConn)}
}

// Listen binds the listener without accepting yet, so callers can report
// bind errors before daemonizing.
func (s *Server) Listen() error {
	ln, err := stdnet.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.BindAddress, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() stdnet.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() error {
	for {
		raw, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go s.serveConn(raw)
	}
}

// Close stops accepting, tears down live connections, and waits for
// per-connection goroutines to drain.
func (s *Server) Close() error {
	s.closed.Store(true)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.mu.Lock()
	for _, c := range s.conns {
		c.shutdown()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

func (s *Server) serveConn(raw stdnet.Conn) {
	defer s.wg.Done()

	c := newTCPConn(s.nextID.Add(1), raw, s.cfg, s.log)
	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c.id)
		s.mu.Unlock()
	}()
	s.log.Debug("connection accepted",
		zap.Int32("connID", c.ID()),
		zap.Stringer("remote", raw.RemoteAddr()))

	go c.writeLoop()
	c.readLoop(s.dispatch)

	s.dispatch.HandleDisconnect(c)
}

type tcpConn struct {
	id   int32
	raw  stdnet.Conn
	addr netip.Addr
	cfg  Config
	log  *zap.Logger

	state atomic.Int32
	nonce atomic.Uint32

	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newTCPConn(id int32, raw stdnet.Conn, cfg Config, log *zap.Logger) *tcpConn {
	var addr netip.Addr
	if tcp, ok := raw.RemoteAddr().(*stdnet.TCPAddr); ok {
		addr = tcp.AddrPort().Addr()
	}
	c := &tcpConn{
		id:   id,
		raw:  raw,
		addr: addr,
		cfg:  cfg,
		log:  log,
		out:  make(chan []byte, cfg.OutQueueSize),
		done: make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

func (c *tcpConn) ID() int32              { return c.id }
func (c *tcpConn) State() ConnState       { return ConnState(c.state.Load()) }
func (c *tcpConn) RemoteAddr() netip.Addr { return c.addr }

func (c *tcpConn) Send(frame []byte) {
	if c.State() == StateDisconnected {
		c.log.Debug("send on dead connection", zap.Int32("connID", c.id))
		return
	}
	c.enqueue(frame)
}

func (c *tcpConn) enqueue(frame []byte) {
	// Copy before stamping: the caller's frame may be shared between
	// recipients, and each connection stamps its own nonce.
	buf := make([]byte, len(frame))
	copy(buf, frame)
	if len(buf) >= 3 && protocol.SendOption(buf[0]) == protocol.SendOptionReliable {
		n := uint16(c.nonce.Add(1))
		buf[1] = byte(n >> 8)
		buf[2] = byte(n)
	}
	select {
	case c.out <- buf:
	case <-c.done:
	default:
		c.log.Warn("out queue full, dropping frame",
			zap.Int32("connID", c.id),
			zap.Int("queueSize", c.cfg.OutQueueSize))
	}
}

func (c *tcpConn) Disconnect(reason protocol.DisconnectReason, message string) {
	w := protocol.NewMessageWriter(protocol.SendOptionDisconnect)
	w.WriteUint8(byte(reason))
	if reason == protocol.DisconnectReasonCustom {
		w.WriteString(message)
	}
	c.enqueue(w.Bytes())
	c.shutdown()
}

// shutdown marks the connection dead and wakes the write loop to flush and
// close the socket. Safe to call from any goroutine, any number of times.
func (c *tcpConn) shutdown() {
	c.once.Do(func() {
		c.state.Store(int32(StateDisconnected))
		close(c.done)
	})
}

func (c *tcpConn) readLoop(dispatch Dispatcher) {
	defer c.shutdown()
	for {
		if c.cfg.ReadTimeout > 0 {
			_ = c.raw.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}
		frame, err := ReadFrame(c.raw)
		if err != nil {
			if !errors.Is(err, stdnet.ErrClosed) {
				c.log.Debug("read loop ended", zap.Int32("connID", c.id), zap.Error(err))
			}
			return
		}
		// The hello frame completes the handshake; the transport owns
		// the state flip, the dispatcher owns the payload.
		if c.State() == StateConnecting &&
			protocol.SendOption(frame[0]) == protocol.SendOptionHello {
			c.state.Store(int32(StateConnected))
		}
		dispatch.HandleFrame(c, frame)
	}
}

func (c *tcpConn) writeLoop() {
	for {
		select {
		case buf := <-c.out:
			c.write(buf)
		case <-c.done:
			// Flush what is already queued (the disconnect notice at
			// minimum), then close the socket.
			for {
				select {
				case buf := <-c.out:
					c.write(buf)
				default:
					_ = c.raw.Close()
					return
				}
			}
		}
	}
}

func (c *tcpConn) write(buf []byte) {
	if c.cfg.WriteTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err := WriteFrame(c.raw, buf); err != nil {
		c.log.Debug("write failed", zap.Int32("connID", c.id), zap.Error(err))
		c.shutdown()
	}
}
