package mllp

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-hl7/logger"
)

// DefaultPort is the port commonly used by MLLP listeners.
const DefaultPort = 2575

// ConnectionConfig represents the configuration parameters of an MLLP connection, shared by Client
// and Server.
type ConnectionConfig struct {
	mu sync.RWMutex

	// host specifies the remote host for a client, or the local address to bind for a server.
	// An empty host binds all interfaces.
	host string

	// port specifies the TCP port number. Port 0 lets a server pick an ephemeral port.
	port int

	// connectTimeout defines the timeout for dialing the remote host. It should be between 10 milliseconds
	// and 60 seconds.
	// Defaults to 5 seconds.
	//
	// This field is only relevant for clients.
	connectTimeout time.Duration

	// replyTimeout defines how long a client waits for the complete response frame after writing a message.
	// It should be between 10 milliseconds and 10 minutes.
	// Defaults to 30 seconds.
	//
	// This field is only relevant for clients.
	replyTimeout time.Duration

	// writeTimeout defines the timeout for writing one frame. It should be between 10 milliseconds and
	// 10 minutes.
	// Defaults to 10 seconds.
	writeTimeout time.Duration

	// idleTimeout defines how long a server keeps an idle connection open while waiting for the next frame.
	// Zero disables the timeout.
	// Defaults to 0.
	//
	// This field is only relevant for servers.
	idleTimeout time.Duration

	// closeTimeout defines how long a server waits for its connection handlers to finish on Close.
	// It should be between 10 milliseconds and 30 seconds.
	// Defaults to 3 seconds.
	//
	// This field is only relevant for servers.
	closeTimeout time.Duration

	// maxFrameSize defines the maximum payload size of a frame, in bytes. It should be between 16 bytes
	// and 64 MiB.
	// Defaults to 1 MiB.
	maxFrameSize int

	// logger provides a logger instance for logging MLLP-related events and errors.
	logger logger.Logger
}

// NewConnectionConfig creates a new MLLP connection configuration with the given host, port number,
// and optional functional options.
//
// The host parameter specifies the remote host of a client, or the local address of a server.
// The port parameter specifies the TCP port number.
//
// See the documentation for ConnOption and the various WithXXX functions for available configuration options.
//
// Returns a pointer to the initialized ConnectionConfig and an error if any occurred during the configuration process.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		connectTimeout: 5 * time.Second,
		replyTimeout:   30 * time.Second,
		writeTimeout:   10 * time.Second,
		idleTimeout:    0,
		closeTimeout:   3 * time.Second,
		maxFrameSize:   1 << 20,
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Address returns the host:port address of the configuration.
func (cfg *ConnectionConfig) Address() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

func (cfg *ConnectionConfig) ConnectTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.connectTimeout
}

func (cfg *ConnectionConfig) ReplyTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.replyTimeout
}

func (cfg *ConnectionConfig) WriteTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.writeTimeout
}

func (cfg *ConnectionConfig) IdleTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.idleTimeout
}

func (cfg *ConnectionConfig) CloseTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.closeTimeout
}

func (cfg *ConnectionConfig) MaxFrameSize() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.maxFrameSize
}

func (cfg *ConnectionConfig) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

// Update applies options to an existing configuration. Only options that can be changed at runtime
// are accepted.
func (cfg *ConnectionConfig) Update(opts ...ConnOption) error {
	if cfg == nil {
		return ErrConnConfigNil
	}

	for _, opt := range opts {
		if o, ok := opt.(*connOptFunc); ok && !o.runtime {
			return errors.New(o.name + " can't be changed at runtime")
		}
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return err
		}
	}

	return nil
}

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	runtime   bool
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error { return c.applyFunc(cfg) }

func newConnOptFunc(name string, runtime bool, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{
		name:      name,
		runtime:   runtime,
		applyFunc: f,
	}
}

// withHost sets the host of the connection.
// The host must be empty, an IP address, or a resolvable domain name.
func withHost(host string) ConnOption {
	return newConnOptFunc("withHost", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if host == "" {
			cfg.host = host
			return nil
		}

		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		host = strings.TrimPrefix(host, ".")
		host = strings.TrimSuffix(host, ".")
		if _, err := net.LookupHost(host); err == nil {
			cfg.host = host
			return nil
		}

		return errors.New("invalid host")
	})
}

// withPort sets the TCP port number of the connection.
// An error is returned if the port number is out of the valid range (0-65535).
func withPort(port int) ConnOption {
	return newConnOptFunc("withPort", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if port < 0 || port > 65535 {
			return errors.New("port is out of range [0, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithConnectTimeout sets the timeout for dialing the remote host.
// An error is returned if the timeout is outside the valid range (0.01-60 seconds) or if the configuration is nil.
//
// The default value is 5 seconds.
//
// This option can be changed at runtime.
func WithConnectTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", true, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 10*time.Millisecond || val > 60*time.Second {
			return errors.New("connect timeout out of range [0.01, 60]")
		}
		cfg.connectTimeout = val

		return nil
	})
}

// WithReplyTimeout sets how long a client waits for the response frame after sending a message.
// An error is returned if the timeout is outside the valid range (0.01-600 seconds) or if the configuration is nil.
//
// The default value is 30 seconds.
//
// This option can be changed at runtime.
func WithReplyTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithReplyTimeout", true, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 10*time.Millisecond || val > 10*time.Minute {
			return errors.New("reply timeout out of range [0.01, 600]")
		}
		cfg.replyTimeout = val

		return nil
	})
}

// WithWriteTimeout sets the timeout for writing one frame.
// An error is returned if the timeout is outside the valid range (0.01-600 seconds) or if the configuration is nil.
//
// The default value is 10 seconds.
//
// This option can be changed at runtime.
func WithWriteTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithWriteTimeout", true, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 10*time.Millisecond || val > 10*time.Minute {
			return errors.New("write timeout out of range [0.01, 600]")
		}
		cfg.writeTimeout = val

		return nil
	})
}

// WithIdleTimeout sets how long a server keeps an idle connection open. Zero disables the timeout.
// An error is returned if the timeout is negative or if the configuration is nil.
//
// The default value is 0.
//
// This option can be changed at runtime.
func WithIdleTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithIdleTimeout", true, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 0 {
			return errors.New("idle timeout must not be negative")
		}
		cfg.idleTimeout = val

		return nil
	})
}

// WithCloseTimeout sets how long a server waits for its connection handlers on Close.
// An error is returned if the timeout is outside the valid range (0.01-30 seconds) or if the configuration is nil.
//
// The default value is 3 seconds.
//
// This option can be changed at runtime.
func WithCloseTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithCloseTimeout", true, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if val < 10*time.Millisecond || val > 30*time.Second {
			return errors.New("close timeout out of range [0.01, 30]")
		}
		cfg.closeTimeout = val

		return nil
	})
}

// WithMaxFrameSize sets the maximum payload size of a frame in bytes.
// An error is returned if the size is outside the valid range (16 bytes - 64 MiB) or if the configuration is nil.
//
// The default value is 1 MiB.
//
// This option can't be changed at runtime.
func WithMaxFrameSize(size int) ConnOption {
	return newConnOptFunc("WithMaxFrameSize", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if size < 16 || size > 64<<20 {
			return errors.New("max frame size out of range [16, 67108864]")
		}
		cfg.maxFrameSize = size

		return nil
	})
}

// WithLogger sets the logger of the connection.
// An error is returned if the logger or the configuration is nil.
//
// The default value is the default logger of the logger package.
//
// This option can't be changed at runtime.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ErrConnConfigNil
		}

		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
