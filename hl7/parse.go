package hl7

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// trailingSeparators are stripped from the end of the text before parsing.
const trailingSeparators = "\r\n"

// Parse parses an HL7 v2.x message.
//
// The separators are discovered from the MSH header, then the text is split recursively: segments, fields,
// repetitions, components and sub-components. Empty values are preserved, so serializing the returned
// message with String() gives back text, except for leading whitespace and trailing line terminators,
// which are stripped before the separators are discovered.
//
// It returns an error wrapping ErrDecode if text is not valid UTF-8, or an error wrapping
// ErrMalformedHeader if the separators can't be discovered. No partial message is returned on error.
func Parse(text string) (*Message, error) {
	if !utf8.ValidString(text) {
		return nil, ErrDecode
	}

	text = strings.TrimRight(strings.TrimLeftFunc(text, unicode.IsSpace), trailingSeparators)

	plan, err := CreateParsePlan(text)
	if err != nil {
		return nil, err
	}

	msg, _ := plan.parse(text).(*Message)

	return msg, nil
}

// ParseBytes parses an HL7 v2.x message encoded in UTF-8.
//
// Bytes that are not valid UTF-8 are never replaced; ParseBytes fails with ErrDecode instead and the caller
// is expected to decode the input with its own character set first.
func ParseBytes(data []byte) (*Message, error) {
	if !utf8.Valid(data) {
		return nil, ErrDecode
	}

	return Parse(string(data))
}

// IsHL7 reports whether text looks like an HL7 v2.x message, i.e. its first segment begins with MSH.
//
// It is a cheap check to run before Parse and doesn't validate the separators.
func IsHL7(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	first, _, _ := strings.Cut(text, string(SegmentSeparator))

	return strings.HasPrefix(first, HeaderName)
}

// IsHL7Bytes is the byte slice variant of IsHL7. It returns false for nil input and for input that is not
// valid UTF-8.
func IsHL7Bytes(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}

	return IsHL7(string(data))
}

// parse splits text with the plan separator and parses each token with the next plan.
// Tokens of the last level are built by parseField.
func (p *ParsePlan) parse(text string) Element {
	if p.Kind() == FieldKind {
		return p.parseField(text)
	}

	tokens := strings.Split(text, string(p.Separator()))
	next := p.Next()

	children := make([]Element, len(tokens))
	for i, token := range tokens {
		switch {
		case next == nil:
			children[i] = Text(token)
		case p.Kind() == SegmentKind && i == 1 && tokens[0] == HeaderName:
			// MSH-2 holds the encoding characters, which must not be split by themselves
			children[i] = next.Container([]Element{Text(token)})
		default:
			children[i] = next.parse(token)
		}
	}

	return p.Container(children)
}

// parseField builds a field, resolving repetitions, components and sub-components in a single pass.
func (p *ParsePlan) parseField(text string) Element {
	seps := p.encoding

	repetitions := strings.Split(text, string(seps.Repetition))
	if len(repetitions) == 1 {
		return p.Container(splitComponents(text, seps))
	}

	children := make([]Element, len(repetitions))
	for i, rep := range repetitions {
		children[i] = NewRepetition(seps.Component, splitComponents(rep, seps)...)
	}

	return &Field{Container: Container{separator: seps.Repetition, items: children}}
}

func splitComponents(text string, seps Separators) []Element {
	components := strings.Split(text, string(seps.Component))

	items := make([]Element, len(components))
	for i, comp := range components {
		if !strings.ContainsRune(comp, seps.SubComponent) {
			items[i] = Text(comp)
			continue
		}

		subs := strings.Split(comp, string(seps.SubComponent))
		subItems := make([]Element, len(subs))
		for j, sub := range subs {
			subItems[j] = Text(sub)
		}
		items[i] = &Component{Container: Container{separator: seps.SubComponent, items: subItems}}
	}

	return items
}
