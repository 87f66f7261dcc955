package messaging

import "encoding/json"

// Envelope is the wire form of every multiplexing message. Receivers drop anything without
// IsID5Message set, so other scripts posting to the same windows are ignored.
//
// ID is a per-sender sequence number. Dst is empty for broadcasts. Request is set on responses and
// carries the envelope being answered.
type Envelope struct {
	IsID5Message bool            `json:"isId5Message"`
	ID           int64           `json:"id"`
	Timestamp    int64           `json:"timestamp"`
	Src          string          `json:"src"`
	Dst          string          `json:"dst,omitempty"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Request      *Envelope       `json:"request,omitempty"`
}

// IsResponse reports whether e answers another envelope.
func (e Envelope) IsResponse() bool {
	return e.Request != nil
}

// DecodePayload unmarshals the payload into out.
func (e Envelope) DecodePayload(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// decodeEnvelope returns ok=false for anything that is not a multiplexing envelope.
func decodeEnvelope(data []byte) (Envelope, bool) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, false
	}
	if !e.IsID5Message || e.Src == "" || e.Type == "" {
		return Envelope{}, false
	}
	return e, true
}
