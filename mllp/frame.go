package mllp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MLLP block markers.
const (
	// SB is the start block byte.
	SB byte = 0x0b
	// EB is the end block byte.
	EB byte = 0x1c
	// CR is the carriage return that follows EB.
	CR byte = 0x0d
)

// frameOverhead is the number of marker bytes around a payload.
const frameOverhead = 3

// Frame wraps payload in an MLLP frame: SB + payload + EB + CR.
func Frame(payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+frameOverhead)
	frame = append(frame, SB)
	frame = append(frame, payload...)
	frame = append(frame, EB, CR)

	return frame
}

// Unframe returns the payload of an MLLP frame.
//
// It returns an error wrapping ErrMalformedFrame if frame doesn't start with SB or doesn't end with EB + CR.
// The returned slice references frame.
func Unframe(frame []byte) ([]byte, error) {
	if len(frame) < frameOverhead {
		return nil, fmt.Errorf("%w: frame is shorter than %d bytes", ErrMalformedFrame, frameOverhead)
	}

	if frame[0] != SB {
		return nil, fmt.Errorf("%w: missing start block 0x%02x", ErrMalformedFrame, SB)
	}

	if !bytes.HasSuffix(frame, []byte{EB, CR}) {
		return nil, fmt.Errorf("%w: missing end block 0x%02x 0x%02x", ErrMalformedFrame, EB, CR)
	}

	return frame[1 : len(frame)-2], nil
}

// frameReader reads MLLP frames from a byte stream.
//
// frameReader is NOT goroutine-safe. The caller must ensure that only one ReadFrame call is
// active at a time.
type frameReader struct {
	r            *bufio.Reader
	maxFrameSize int
}

func newFrameReader(r io.Reader, maxFrameSize int) *frameReader {
	return &frameReader{r: bufio.NewReader(r), maxFrameSize: maxFrameSize}
}

// ReadFrame reads bytes until EB + CR and returns them, markers included.
//
// Bytes preceding the frame are returned as they were received, Unframe rejects them.
// Deadlines are the responsibility of the caller.
func (fr *frameReader) ReadFrame() ([]byte, error) {
	var frame []byte
	for {
		chunk, err := fr.r.ReadSlice(EB)
		frame = append(frame, chunk...)

		if fr.maxFrameSize > 0 && len(frame) > fr.maxFrameSize+frameOverhead {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrFrameTooLarge, fr.maxFrameSize)
		}

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(frame) > 0 {
			return nil, fmt.Errorf("%w: connection closed inside a frame", io.ErrUnexpectedEOF)
		}

		return nil, err
	}

	b, err := fr.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: connection closed before trailing carriage return", io.ErrUnexpectedEOF)
		}
		return nil, err
	}

	if b != CR {
		return nil, fmt.Errorf("%w: end block followed by 0x%02x", ErrMalformedFrame, b)
	}

	return append(frame, CR), nil
}
