package hl7

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/arloliu/go-hl7/internal/util"
)

// Element is a node of a parsed message: either a Text leaf or one of the containers
// (Message, Segment, Field, Repetition, Component, Container).
type Element interface {
	// String serializes the element and all of its descendants with their separators.
	String() string
}

// Text is a leaf value of a message. It holds the raw text between two separators, escape sequences included.
type Text string

// String implements Element.String().
func (t Text) String() string {
	return string(t)
}

// sequence is implemented by every container type.
type sequence interface {
	Elements() []Element
}

// Container is an ordered sequence of elements tagged with the separator used to join them.
//
// The separator and the level of a container are fixed at creation, the contents can be modified like
// any ordered sequence.
type Container struct {
	separator rune
	items     []Element
}

// NewContainer creates a new container with the given separator and elements.
func NewContainer(separator rune, items ...Element) *Container {
	c := &Container{separator: separator}
	c.items = append(make([]Element, 0, len(items)), items...)

	return c
}

// Separator returns the separator used to join the elements of the container.
func (c *Container) Separator() rune {
	return c.separator
}

// Len returns the number of elements, counted non-recursively.
func (c *Container) Len() int {
	return len(c.items)
}

// At returns the element at position i, or nil if i is out of range.
func (c *Container) At(i int) Element {
	if i < 0 || i >= len(c.items) {
		return nil
	}

	return c.items[i]
}

// Elements returns the elements of the container.
//
// Caution: the returned slice references the container's storage; modifying it modifies the container.
func (c *Container) Elements() []Element {
	return c.items
}

// Slice returns the elements in the range [i, j), clamped to the container bounds.
func (c *Container) Slice(i, j int) []Element {
	i = max(i, 0)
	j = min(j, len(c.items))
	if i >= j {
		return []Element{}
	}

	return c.items[i:j]
}

// Append appends elements to the end of the container.
func (c *Container) Append(items ...Element) {
	c.items = append(c.items, items...)
}

// AppendText appends text leaves to the end of the container.
func (c *Container) AppendText(values ...string) {
	for _, v := range values {
		c.items = append(c.items, Text(v))
	}
}

// Get retrieves a nested element at the specified indices.
//
// Each index selects an element of the current container and descends into it. Without indices it
// returns the container itself.
//
// An error wrapping ErrIndexOutOfRange is returned if an index is invalid, and an error wrapping
// ErrNotContainer if an index addresses the children of a Text leaf.
func (c *Container) Get(indices ...int) (Element, error) {
	var elem Element = c
	for depth, idx := range indices {
		seq, ok := elem.(sequence)
		if !ok {
			return nil, fmt.Errorf("%w: indices %v at depth %d", ErrNotContainer, indices, depth)
		}

		items := seq.Elements()
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("%w: indices %v at depth %d", ErrIndexOutOfRange, indices, depth)
		}
		elem = items[idx]
	}

	return elem, nil
}

// String joins the serialized elements with the container separator.
func (c *Container) String() string {
	var sb strings.Builder
	c.writeTo(&sb)

	return sb.String()
}

func (c *Container) writeTo(sb *strings.Builder) {
	for i, item := range c.items {
		if i > 0 {
			sb.WriteRune(c.separator)
		}

		switch v := item.(type) {
		case nil:
		case Text:
			sb.WriteString(string(v))
		case interface{ writeTo(*strings.Builder) }:
			v.writeTo(sb)
		default:
			sb.WriteString(v.String())
		}
	}
}

// Equal reports whether the container is structurally equal to other.
//
// other can be any container, a Text or string leaf, or a plain slice such as []string, [][]string or []any.
// Elements are compared recursively; separators are ignored.
func (c *Container) Equal(other any) bool {
	return equalValue(c, other)
}

// Clone creates a deep copy of the container.
func (c *Container) Clone() *Container {
	return &Container{separator: c.separator, items: cloneElements(c.items)}
}

func cloneElements(items []Element) []Element {
	clone := util.CloneSlice(items, 0)
	for i, item := range clone {
		switch v := item.(type) {
		case *Message:
			clone[i] = v.Clone()
		case *Segment:
			clone[i] = v.Clone()
		case *Field:
			clone[i] = v.Clone()
		case *Repetition:
			clone[i] = v.Clone()
		case *Component:
			clone[i] = v.Clone()
		case *Container:
			clone[i] = v.Clone()
		}
	}

	return clone
}

func equalValue(a, b any) bool {
	if as, ok := leafValue(a); ok {
		bs, ok := leafValue(b)
		return ok && as == bs
	}

	if _, ok := leafValue(b); ok {
		return false
	}

	aItems, ok := sequenceValues(a)
	if !ok {
		return false
	}
	bItems, ok := sequenceValues(b)
	if !ok {
		return false
	}

	if len(aItems) != len(bItems) {
		return false
	}
	for i := range aItems {
		if !equalValue(aItems[i], bItems[i]) {
			return false
		}
	}

	return true
}

func leafValue(v any) (string, bool) {
	switch t := v.(type) {
	case Text:
		return string(t), true
	case string:
		return t, true
	}

	return "", false
}

func sequenceValues(v any) ([]any, bool) {
	if seq, ok := v.(sequence); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false
		}

		items := seq.Elements()
		values := make([]any, len(items))
		for i, item := range items {
			values[i] = item
		}

		return values, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}

	return values, true
}
