// Package hl7 parses and serializes HL7 v2.x messages.
//
// An HL7 v2.x message is text made of nested levels: segments separated by carriage returns, fields separated
// by the field separator, repetitions, components and sub-components. The separators are not fixed; they are
// declared by the message itself in the MSH header segment, so the parser discovers them first and then
// tokenizes the text recursively.
//
// Parsed data is represented by separator-aware ordered containers:
//
//   - Message: the segments, joined by '\r'. Supports keyed lookup by segment name.
//   - Segment: the fields of one segment. The first field holds the segment name.
//   - Field: the components of a field, or its repetitions when the field repeats.
//   - Repetition: the components of one repetition.
//   - Component: the sub-components of one component.
//
// Leaves are Text values. Serializing a parsed message with String() reproduces the original text, except
// for a trailing segment separator which is stripped during parsing.
//
// Usage Example:
//
//	if !hl7.IsHL7(raw) {
//	    // not an HL7 message
//	}
//
//	msg, err := hl7.Parse(raw)
//	if err != nil {
//	    // Handle error
//	}
//
//	// positional access
//	name, _ := msg.Get(1, 5, 0) // PID-5.1
//
//	// keyed access
//	obx, err := msg.Segments("OBX")
//	if errors.Is(err, hl7.ErrSegmentNotFound) {
//	    // optional segment is absent
//	}
package hl7
