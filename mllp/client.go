package mllp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-hl7/hl7"
	"github.com/arloliu/go-hl7/logger"
)

// aLongTimeAgo is a deadline in the past, used to abort blocking I/O when a context is done.
var aLongTimeAgo = time.Unix(1, 0)

// Client is an MLLP client that sends messages to a remote host over a single TCP connection
// and waits for a response frame to each of them.
//
// The connection is established by the first send and reused by the following ones. When an exchange
// fails the connection is dropped and the next send dials again.
//
// Client is safe for concurrent use; exchanges are serialized.
type Client struct {
	cfg    *ConnectionConfig
	logger logger.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *frameReader
	closed atomic.Bool

	metrics ClientMetrics
}

// NewClient creates a new client with the given configuration. It doesn't connect.
func NewClient(cfg *ConnectionConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrConnConfigNil
	}

	return &Client{
		cfg:    cfg,
		logger: cfg.Logger().With("component", "mllp-client", "remote", cfg.Address()),
	}, nil
}

// Dial creates a new client for host:port and connects it.
func Dial(ctx context.Context, host string, port int, opts ...ConnOption) (*Client, error) {
	cfg, err := NewConnectionConfig(host, port, opts...)
	if err != nil {
		return nil, err
	}

	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Metrics returns the metrics of the client.
func (c *Client) Metrics() *ClientMetrics {
	return &c.metrics
}

// Connect establishes the connection if it's not established yet.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked(ctx)
}

// Send writes data to the connection as-is and returns the raw response, read up to and including the
// EB + CR frame terminator.
//
// data is expected to be a complete MLLP frame; use SendMessage to frame a message automatically.
// The exchange is bounded by the reply timeout and by ctx.
//
// The response must end with EB followed by CR. A response terminated by a bare EB fails with
// ErrMalformedFrame when another byte follows the EB, or with io.ErrUnexpectedEOF when the peer closes the
// connection after it; otherwise Send waits for the CR until the reply timeout.
//
// All errors are returned as *ClientError.
func (c *Client) Send(ctx context.Context, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	resp, err := c.exchangeLocked(ctx, data)
	if err != nil {
		c.metrics.incMsgErrCount()
		c.logger.Debug("exchange failed, drop connection", "method", "Send", "error", err)
		c.closeConnLocked()

		return nil, err
	}

	return resp, nil
}

// SendMessage wraps message in an MLLP frame, sends it, and returns the payload of the response frame.
//
// A response that is not a well-formed frame is reported as a *ClientError wrapping ErrMalformedFrame.
func (c *Client) SendMessage(ctx context.Context, message string) (string, error) {
	resp, err := c.Send(ctx, Frame([]byte(message)))
	if err != nil {
		return "", err
	}

	payload, err := Unframe(resp)
	if err != nil {
		c.metrics.incMsgErrCount()
		return "", &ClientError{Op: "read", Addr: c.cfg.Address(), Err: err}
	}

	return string(payload), nil
}

// SendHL7 serializes msg, sends it, and parses the response as an HL7 message.
//
// Transport failures are returned as *ClientError. A response that is not a valid HL7 message is
// returned with the hl7 package errors, e.g. hl7.ErrMalformedHeader.
func (c *Client) SendHL7(ctx context.Context, msg *hl7.Message) (*hl7.Message, error) {
	resp, err := c.SendMessage(ctx, msg.String())
	if err != nil {
		return nil, err
	}

	return hl7.Parse(resp)
}

// Close closes the connection. It waits for an in-flight exchange to finish.
// Sending after Close fails with ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeConnLocked()
	c.logger.Debug("client closed")

	return nil
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.closed.Load() {
		return &ClientError{Op: "dial", Addr: c.cfg.Address(), Err: ErrClientClosed}
	}

	if c.conn != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout())
	defer cancel()

	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	conn, err := dialer.DialContext(dialCtx, "tcp", c.cfg.Address())
	if err != nil {
		c.metrics.incConnectErrCount()
		c.logger.Debug("failed to dial", "method", "connect", "error", err)

		return &ClientError{Op: "dial", Addr: c.cfg.Address(), Err: err}
	}

	c.conn = conn
	c.reader = newFrameReader(conn, c.cfg.MaxFrameSize())
	c.metrics.incConnectCount()

	c.logger.Debug("connected to the remote",
		"local_addr", conn.LocalAddr().String(),
		"remote_addr", conn.RemoteAddr().String(),
		"method", "connect",
	)

	return nil
}

func (c *Client) exchangeLocked(ctx context.Context, data []byte) ([]byte, error) {
	addr := c.cfg.Address()
	conn := c.conn

	// unblock pending I/O when ctx is done
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(aLongTimeAgo)
	})
	defer stop()

	if err := conn.SetWriteDeadline(deadline(ctx, c.cfg.WriteTimeout())); err != nil {
		return nil, &ClientError{Op: "write", Addr: addr, Err: err}
	}

	if _, err := conn.Write(data); err != nil {
		return nil, &ClientError{Op: "write", Addr: addr, Err: ctxErr(ctx, err)}
	}
	c.metrics.incMsgSendCount()

	if err := conn.SetReadDeadline(deadline(ctx, c.cfg.ReplyTimeout())); err != nil {
		return nil, &ClientError{Op: "read", Addr: addr, Err: err}
	}

	resp, err := c.reader.ReadFrame()
	if err != nil {
		return nil, &ClientError{Op: "read", Addr: addr, Err: ctxErr(ctx, err)}
	}
	c.metrics.incMsgRecvCount()

	c.logger.Debug("response received", "method", "exchange", "sent", len(data), "received", len(resp))

	return resp, nil
}

func (c *Client) closeConnLocked() {
	if c.conn == nil {
		return
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug("failed to close connection", "error", err)
	}
	c.conn = nil
	c.reader = nil
}

// deadline returns the earlier of now+timeout and the ctx deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}

	return d
}

// ctxErr reports the context error instead of the I/O error it caused.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return err
}
