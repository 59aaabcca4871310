package hl7

import (
	"slices"
)

// ParsePlan drives the recursive parser. It pairs each remaining nesting level with its separator and
// with the kind of container built at that level.
//
// A ParsePlan is immutable; Next returns a new plan for the next deeper level.
type ParsePlan struct {
	separators []rune
	kinds      []Kind
	encoding   Separators
}

// CreateParsePlan discovers the separators of text and returns the plan for the message level.
//
// The plan has three explicit levels: Message split by the segment separator, Segment split by the field
// separator and Field split by the component separator. Repetitions and sub-components are resolved
// when a field is built.
func CreateParsePlan(text string) (*ParsePlan, error) {
	seps, err := DiscoverSeparators(text)
	if err != nil {
		return nil, err
	}

	return newParsePlan(seps), nil
}

func newParsePlan(seps Separators) *ParsePlan {
	return &ParsePlan{
		separators: []rune{seps.Segment, seps.Field, seps.Component},
		kinds:      []Kind{MessageKind, SegmentKind, FieldKind},
		encoding:   seps,
	}
}

// Separators returns the separators of the current and deeper levels.
func (p *ParsePlan) Separators() []rune {
	return slices.Clone(p.separators)
}

// Containers returns the container kinds of the current and deeper levels.
func (p *ParsePlan) Containers() []Kind {
	return slices.Clone(p.kinds)
}

// Separator returns the separator of the current level.
func (p *ParsePlan) Separator() rune {
	return p.separators[0]
}

// Kind returns the container kind of the current level.
func (p *ParsePlan) Kind() Kind {
	return p.kinds[0]
}

// Encoding returns the full separator set the plan was created from.
func (p *ParsePlan) Encoding() Separators {
	return p.encoding
}

// Next returns the plan of the next deeper level, or nil if the current level is the last one.
func (p *ParsePlan) Next() *ParsePlan {
	if len(p.separators) <= 1 {
		return nil
	}

	return &ParsePlan{
		separators: p.separators[1:],
		kinds:      p.kinds[1:],
		encoding:   p.encoding,
	}
}

// Container creates a container of the current level kind holding children, tagged with the current
// level separator.
//
// For MessageKind the returned value is a *Message carrying the plan separators, for SegmentKind a *Segment,
// and for FieldKind a *Field.
func (p *ParsePlan) Container(children []Element) Element {
	c := Container{separator: p.Separator(), items: children}

	switch p.Kind() {
	case MessageKind:
		return &Message{Container: c, separators: p.encoding}
	case SegmentKind:
		return &Segment{Container: c}
	case FieldKind:
		return &Field{Container: c}
	case RepetitionKind:
		return &Repetition{Container: c}
	case ComponentKind:
		return &Component{Container: c}
	}

	return &c
}
