package hl7

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

const (
	// HeaderName is the name of the header segment that declares the separators of a message.
	HeaderName = "MSH"

	// SegmentSeparator separates segments. It is fixed by the standard and never declared in the header.
	SegmentSeparator = '\r'

	// headerRunes is the minimum number of runes of a header: MSH, the field separator and
	// the 4 encoding characters.
	headerRunes = 8
)

// Separators is the separator set of a message, as declared in its MSH header segment.
//
// The depth of each separator, from the outermost to the innermost, is:
//
//	0: Segment, 1: Field, 2: Repetition, 3: Component, 4: SubComponent
//
// Escape is not a nesting separator, it introduces escape sequences in text values.
type Separators struct {
	Segment      rune
	Field        rune
	Repetition   rune
	Component    rune
	SubComponent rune
	Escape       rune
}

// DefaultSeparators returns the separators recommended by the standard, i.e. "|^~\&".
func DefaultSeparators() Separators {
	return Separators{
		Segment:      SegmentSeparator,
		Field:        '|',
		Repetition:   '~',
		Component:    '^',
		SubComponent: '&',
		Escape:       '\\',
	}
}

// DiscoverSeparators reads the separator set from the MSH header at the beginning of text.
//
// The field separator is the rune right after "MSH", and the next 4 runes are the encoding characters
// in the order component, repetition, escape, sub-component.
//
// It returns an error wrapping ErrMalformedHeader if the text is too short, doesn't begin with MSH,
// or if the separators are not distinct non-whitespace characters.
func DiscoverSeparators(text string) (Separators, error) {
	var runes []rune
	for _, r := range text {
		runes = append(runes, r)
		if len(runes) > headerRunes {
			break
		}
	}

	if len(runes) < headerRunes {
		return Separators{}, fmt.Errorf("%w: header is shorter than %d characters", ErrMalformedHeader, headerRunes)
	}

	if string(runes[:3]) != HeaderName {
		return Separators{}, fmt.Errorf("%w: text doesn't begin with %s", ErrMalformedHeader, HeaderName)
	}

	seps := Separators{
		Segment:      SegmentSeparator,
		Field:        runes[3],
		Component:    runes[4],
		Repetition:   runes[5],
		Escape:       runes[6],
		SubComponent: runes[7],
	}

	if err := seps.Validate(); err != nil {
		return Separators{}, err
	}

	// the encoding characters field ends with a field separator unless it is the last field
	if len(runes) > headerRunes && runes[headerRunes] != seps.Field && runes[headerRunes] != SegmentSeparator {
		return Separators{}, fmt.Errorf("%w: encoding characters field is longer than 4 characters", ErrMalformedHeader)
	}

	return seps, nil
}

// Validate checks that the separators are mutually distinct and non-whitespace,
// and that the segment separator is a carriage return.
func (s Separators) Validate() error {
	if s.Segment != SegmentSeparator {
		return fmt.Errorf("%w: segment separator must be a carriage return", ErrMalformedHeader)
	}

	declared := []rune{s.Field, s.Component, s.Repetition, s.Escape, s.SubComponent}
	for _, r := range declared {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: separator %q is whitespace or a control character", ErrMalformedHeader, r)
		}
	}

	if len(lo.Uniq(declared)) != len(declared) {
		return fmt.Errorf("%w: separators %q are not distinct", ErrMalformedHeader, string(declared))
	}

	return nil
}

// Ordered returns the nesting separators ordered from the outermost to the innermost level:
// segment, field, repetition, component, sub-component.
func (s Separators) Ordered() []rune {
	return []rune{s.Segment, s.Field, s.Repetition, s.Component, s.SubComponent}
}

// EncodingCharacters returns the encoding characters block as it appears in the MSH segment.
func (s Separators) EncodingCharacters() string {
	return string([]rune{s.Component, s.Repetition, s.Escape, s.SubComponent})
}

// Header returns the beginning of an MSH segment declaring the separators, e.g. "MSH|^~\&".
func (s Separators) Header() string {
	return HeaderName + string(s.Field) + s.EncodingCharacters()
}

// EscapeText replaces the separators and the escape character found in text with their escape sequences.
func (s Separators) EscapeText(text string) string {
	if !strings.ContainsAny(text, string([]rune{s.Field, s.Component, s.Repetition, s.SubComponent, s.Escape})) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + 8)
	for _, r := range text {
		code := s.escapeCode(r)
		if code == 0 {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(s.Escape)
		sb.WriteRune(code)
		sb.WriteRune(s.Escape)
	}

	return sb.String()
}

// UnescapeText replaces the \F\, \S\, \T\, \R\ and \E\ escape sequences found in text with the characters
// they represent. Other escape sequences, such as formatting or hexadecimal data, are kept unchanged.
func (s Separators) UnescapeText(text string) string {
	if !strings.ContainsRune(text, s.Escape) {
		return text
	}

	runes := []rune(text)
	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != s.Escape || i+2 >= len(runes) || runes[i+2] != s.Escape {
			sb.WriteRune(r)
			continue
		}

		decoded, ok := s.unescapeCode(runes[i+1])
		if !ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(decoded)
		i += 2
	}

	return sb.String()
}

func (s Separators) escapeCode(r rune) rune {
	switch r {
	case s.Field:
		return 'F'
	case s.Component:
		return 'S'
	case s.SubComponent:
		return 'T'
	case s.Repetition:
		return 'R'
	case s.Escape:
		return 'E'
	}

	return 0
}

func (s Separators) unescapeCode(code rune) (rune, bool) {
	switch code {
	case 'F':
		return s.Field, true
	case 'S':
		return s.Component, true
	case 'T':
		return s.SubComponent, true
	case 'R':
		return s.Repetition, true
	case 'E':
		return s.Escape, true
	}

	return 0, false
}
