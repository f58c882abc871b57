// Package session implements the Session Dispatcher (spec §4.8): the
// WebSocket gateway that terminates client transports, decodes the JSON
// wire envelope, and routes inbound operations to the right Room. The
// connection plumbing (readPump/writePump, bounded non-blocking send
// buffers) is grounded on the teacher's apps/server/internal/gateway
// Gateway/Connection; reconnect-grace tracking borrows the TTL map idiom
// from apps/server/internal/auth Manager.
package session

import (
	"bytes"
	"encoding/json"

	"github.com/choeurtis18/MortPion/internal/room"
)

// inboundEnvelope peels off just the `type` discriminator; the rest of
// the message is re-decoded into the type-specific request struct by the
// caller once it knows which one applies.
type inboundEnvelope struct {
	Type room.MessageType `json:"type"`
}

func decodeEnvelope(data []byte) (room.MessageType, []byte, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, err
	}
	return env.Type, data, nil
}

// unmarshalPayload decodes the full envelope into a type-specific request
// struct; the struct simply ignores the leading "type" field it doesn't
// declare.
func unmarshalPayload(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// encodeOutbound marshals payload and splices in a leading "type" field,
// producing the `{type, ...fields}` shape spec §6 mandates. payload is
// expected to marshal to a JSON object; for payloads that don't carry one
// (bare acks) pass an empty struct.
func encodeOutbound(msgType room.MessageType, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	typeField, err := json.Marshal(msgType)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		trimmed = []byte("{}")
	}
	if len(trimmed) == 2 { // "{}"
		return []byte(`{"type":` + string(typeField) + `}`), nil
	}
	out := make([]byte, 0, len(trimmed)+len(typeField)+10)
	out = append(out, '{')
	out = append(out, []byte(`"type":`)...)
	out = append(out, typeField...)
	out = append(out, ',')
	out = append(out, trimmed[1:]...)
	return out, nil
}
