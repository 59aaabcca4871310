package hl7

import (
	"fmt"

	"github.com/samber/lo"
)

// Kind identifies the level of a container in the message hierarchy.
type Kind int

const (
	MessageKind Kind = iota
	SegmentKind
	FieldKind
	RepetitionKind
	ComponentKind
)

func (k Kind) String() string {
	switch k {
	case MessageKind:
		return "message"
	case SegmentKind:
		return "segment"
	case FieldKind:
		return "field"
	case RepetitionKind:
		return "repetition"
	case ComponentKind:
		return "component"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Message is the top level container of a parsed HL7 message. Its elements are Segments joined by '\r'.
//
// Besides positional access, a Message supports keyed lookup of segments by name with Segments and Segment.
type Message struct {
	Container
	separators Separators
}

// NewMessage creates a new message with the given separators and segments. Nil segments are skipped.
func NewMessage(separators Separators, segments ...*Segment) *Message {
	msg := &Message{
		Container:  Container{separator: separators.Segment},
		separators: separators,
	}
	for _, seg := range segments {
		if seg == nil {
			continue
		}
		msg.items = append(msg.items, seg)
	}

	return msg
}

// Separators returns the separator set of the message.
func (m *Message) Separators() Separators {
	return m.separators
}

// SegmentAt returns the segment at position i, or nil if i is out of range.
func (m *Message) SegmentAt(i int) *Segment {
	seg, _ := m.At(i).(*Segment)
	return seg
}

// Segments returns all segments named name, in message order.
//
// The lookup is exact and case-sensitive. It returns an error wrapping ErrSegmentNotFound if there's no
// segment named name.
func (m *Message) Segments(name string) ([]*Segment, error) {
	segments := lo.FilterMap(m.items, func(item Element, _ int) (*Segment, bool) {
		seg, ok := item.(*Segment)
		return seg, ok && seg.Name() == name
	})

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSegmentNotFound, name)
	}

	return segments, nil
}

// Segment returns the first segment named name.
//
// It returns an error wrapping ErrSegmentNotFound if there's no segment named name.
func (m *Message) Segment(name string) (*Segment, error) {
	segments, err := m.Segments(name)
	if err != nil {
		return nil, err
	}

	return segments[0], nil
}

// Clone creates a deep copy of the message.
func (m *Message) Clone() *Message {
	return &Message{
		Container:  Container{separator: m.separator, items: cloneElements(m.items)},
		separators: m.separators,
	}
}

// Segment is a segment of a message. Its elements are Fields joined by the field separator,
// and the first field holds the segment name.
type Segment struct {
	Container
}

// NewSegment creates a new segment with the given field separator and fields.
func NewSegment(separator rune, fields ...Element) *Segment {
	return &Segment{Container: *NewContainer(separator, fields...)}
}

// Name returns the segment name, i.e. the serialized first field.
func (s *Segment) Name() string {
	first := s.At(0)
	if first == nil {
		return ""
	}

	return first.String()
}

// Field returns the field at position i, or nil if i is out of range.
//
// Position 0 is the segment name. For MSH segments position 1 is the encoding characters field.
func (s *Segment) Field(i int) *Field {
	field, _ := s.At(i).(*Field)
	return field
}

// Clone creates a deep copy of the segment.
func (s *Segment) Clone() *Segment {
	return &Segment{Container: *s.Container.Clone()}
}

// Field is a field of a segment.
//
// A field without repetitions holds its components, Text or Component elements, joined by the component
// separator. A repeating field holds Repetition elements joined by the repetition separator.
type Field struct {
	Container
}

// NewField creates a new field with the given separator and elements.
func NewField(separator rune, items ...Element) *Field {
	return &Field{Container: *NewContainer(separator, items...)}
}

// HasRepetitions reports whether the field holds repetitions.
func (f *Field) HasRepetitions() bool {
	return lo.SomeBy(f.items, func(item Element) bool {
		_, ok := item.(*Repetition)
		return ok
	})
}

// Repetitions returns the repetitions of the field.
// A field without repetitions is returned as a single repetition holding the field components.
func (f *Field) Repetitions() []*Repetition {
	if !f.HasRepetitions() {
		return []*Repetition{{Container: Container{separator: f.separator, items: f.items}}}
	}

	return lo.FilterMap(f.items, func(item Element, _ int) (*Repetition, bool) {
		rep, ok := item.(*Repetition)
		return rep, ok
	})
}

// Clone creates a deep copy of the field.
func (f *Field) Clone() *Field {
	return &Field{Container: *f.Container.Clone()}
}

// Repetition is one occurrence of a repeating field. Its elements are Text or Component values joined by
// the component separator.
type Repetition struct {
	Container
}

// NewRepetition creates a new repetition with the given component separator and elements.
func NewRepetition(separator rune, items ...Element) *Repetition {
	return &Repetition{Container: *NewContainer(separator, items...)}
}

// Clone creates a deep copy of the repetition.
func (r *Repetition) Clone() *Repetition {
	return &Repetition{Container: *r.Container.Clone()}
}

// Component is a component made of sub-components. Its elements are Text values joined by the
// sub-component separator.
type Component struct {
	Container
}

// NewComponent creates a new component with the given sub-component separator and sub-components.
func NewComponent(separator rune, items ...Element) *Component {
	return &Component{Container: *NewContainer(separator, items...)}
}

// Clone creates a deep copy of the component.
func (c *Component) Clone() *Component {
	return &Component{Container: *c.Container.Clone()}
}
