package mllp

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	require := require.New(t)

	frame := Frame([]byte("foobar"))
	require.Equal([]byte("\x0bfoobar\x1c\x0d"), frame)
	require.Equal(append(append([]byte{SB}, "foobar"...), EB, CR), frame)

	require.Equal([]byte{SB, EB, CR}, Frame(nil))
}

func TestUnframe(t *testing.T) {
	require := require.New(t)

	payload, err := Unframe(Frame([]byte("foobar")))
	require.NoError(err)
	require.Equal([]byte("foobar"), payload)

	payload, err = Unframe([]byte{SB, EB, CR})
	require.NoError(err)
	require.Empty(payload)

	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "nil", frame: nil},
		{name: "too short", frame: []byte{SB, EB}},
		{name: "missing start block", frame: []byte("foobar\x1c\x0d")},
		{name: "missing end block", frame: []byte("\x0bfoobar\x0d")},
		{name: "missing carriage return", frame: []byte("\x0bfoobar\x1c")},
		{name: "leading garbage", frame: []byte("x\x0bfoobar\x1c\x0d")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unframe(tt.frame)
			require.ErrorIs(err, ErrMalformedFrame)
		})
	}
}

func TestFrameReader(t *testing.T) {
	t.Run("Single Frame", func(t *testing.T) {
		reader := newFrameReader(bytes.NewReader(Frame([]byte("MSH|^~\\&"))), 1024)

		frame, err := reader.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, Frame([]byte("MSH|^~\\&")), frame)

		_, err = reader.ReadFrame()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("Consecutive Frames", func(t *testing.T) {
		stream := append(Frame([]byte("first")), Frame([]byte("second"))...)
		reader := newFrameReader(bytes.NewReader(stream), 1024)

		frame, err := reader.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, Frame([]byte("first")), frame)

		frame, err = reader.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, Frame([]byte("second")), frame)
	})

	t.Run("Split Writes", func(t *testing.T) {
		client, server := net.Pipe()
		defer client.Close()
		defer server.Close()

		frame := Frame([]byte("foobar"))
		go func() {
			for _, b := range frame {
				_, _ = server.Write([]byte{b})
			}
		}()

		got, err := newFrameReader(client, 1024).ReadFrame()
		require.NoError(t, err)
		require.Equal(t, frame, got)
	})

	t.Run("Larger Than Read Buffer", func(t *testing.T) {
		payload := bytes.Repeat([]byte("A"), 10000)
		reader := newFrameReader(bytes.NewReader(Frame(payload)), 20000)

		frame, err := reader.ReadFrame()
		require.NoError(t, err)
		require.Len(t, frame, len(payload)+frameOverhead)
	})

	t.Run("Too Large", func(t *testing.T) {
		payload := bytes.Repeat([]byte("A"), 10000)
		reader := newFrameReader(bytes.NewReader(Frame(payload)), 100)

		_, err := reader.ReadFrame()
		require.ErrorIs(t, err, ErrFrameTooLarge)
	})

	t.Run("End Block Without Carriage Return", func(t *testing.T) {
		reader := newFrameReader(bytes.NewReader([]byte("\x0bfoobar\x1cX")), 1024)

		_, err := reader.ReadFrame()
		require.ErrorIs(t, err, ErrMalformedFrame)
	})

	t.Run("Closed Inside Frame", func(t *testing.T) {
		reader := newFrameReader(bytes.NewReader([]byte("\x0bfoo")), 1024)

		_, err := reader.ReadFrame()
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("Closed Before Carriage Return", func(t *testing.T) {
		reader := newFrameReader(bytes.NewReader([]byte("\x0bfoo\x1c")), 1024)

		_, err := reader.ReadFrame()
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}
