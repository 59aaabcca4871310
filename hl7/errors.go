package hl7

import "errors"

var (
	// ErrMalformedHeader indicates that the MSH header segment could not be used to discover the separators.
	// It is returned when the text is too short, doesn't start with MSH, or carries an invalid encoding
	// characters block.
	ErrMalformedHeader = errors.New("hl7: malformed MSH header")

	// ErrDecode indicates that the input is not valid UTF-8 text.
	// The caller is responsible for decoding the input with its own character set before parsing.
	ErrDecode = errors.New("hl7: input is not valid UTF-8 text")
)

var (
	// ErrSegmentNotFound indicates that a keyed lookup found no segment with the requested name.
	ErrSegmentNotFound = errors.New("hl7: segment not found")

	// ErrIndexOutOfRange indicates that a positional lookup addressed a non-existent element.
	ErrIndexOutOfRange = errors.New("hl7: index out of range")

	// ErrNotContainer indicates that a positional lookup tried to descend into a leaf value.
	ErrNotContainer = errors.New("hl7: element is not a container")
)
