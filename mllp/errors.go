package mllp

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame indicates that a frame doesn't start with the start block byte or doesn't end
	// with the end block byte followed by a carriage return.
	ErrMalformedFrame = errors.New("mllp: malformed frame")

	// ErrFrameTooLarge indicates that a frame exceeds the configured maximum frame size.
	ErrFrameTooLarge = errors.New("mllp: frame exceeds maximum size")
)

var (
	// ErrConnConfigNil indicates that a nil ConnectionConfig was provided.
	ErrConnConfigNil = errors.New("mllp: connection config is nil")

	// ErrHandlerNil indicates that a nil Handler was provided to a server.
	ErrHandlerNil = errors.New("mllp: handler is nil")

	// ErrClientClosed indicates that the client has been closed.
	ErrClientClosed = errors.New("mllp: client closed")

	// ErrServerClosed is returned by Server.Serve after Server.Close is called.
	ErrServerClosed = errors.New("mllp: server closed")

	// ErrNotListening indicates that Server.Serve was called before Server.Listen.
	ErrNotListening = errors.New("mllp: server is not listening")
)

// ClientError records a failed client operation.
//
// Every error returned by Client is a *ClientError, which keeps transport failures apart from
// parsing errors of the hl7 package. The cause can be inspected with errors.Is and errors.As.
type ClientError struct {
	// Op is the failed operation, e.g. "dial", "write" or "read".
	Op string
	// Addr is the remote address of the connection.
	Addr string
	// Err is the cause.
	Err error
}

func (e *ClientError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("mllp: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("mllp: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}
