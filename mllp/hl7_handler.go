package mllp

import (
	"context"

	"github.com/arloliu/go-hl7/hl7"
)

// HL7HandlerFunc handles a parsed HL7 message and returns the message to reply with, or nil to
// reply nothing.
type HL7HandlerFunc func(ctx context.Context, msg *hl7.Message) (*hl7.Message, error)

// HL7Handler adapts f to a Handler. Payloads are parsed with hl7.ParseBytes; payloads that are not
// valid HL7 messages are reported as handler errors and f is not called.
func HL7Handler(f HL7HandlerFunc) Handler {
	return HandlerFunc(func(ctx context.Context, payload []byte) ([]byte, error) {
		msg, err := hl7.ParseBytes(payload)
		if err != nil {
			return nil, err
		}

		reply, err := f(ctx, msg)
		if err != nil || reply == nil {
			return nil, err
		}

		return []byte(reply.String()), nil
	})
}
