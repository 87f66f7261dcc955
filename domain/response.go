package domain

import "encoding/json"

// CacheControl is the server-declared caching policy of a response.
type CacheControl struct {
	MaxAgeSec int `json:"max_age_sec"`
}

// PrivacyData is the privacy metadata returned by the identity service and kept between page views.
type PrivacyData struct {
	Jurisdiction string `json:"jurisdiction,omitempty"`
	ID5Consent   bool   `json:"id5_consent"`
}

// IdResponse is an identity payload as returned by the identity service. Fields unknown to this
// package are preserved so a stored response reads back exactly as it was written.
type IdResponse map[string]json.RawMessage

// ParseIdResponse decodes a JSON object into an IdResponse.
func ParseIdResponse(b []byte) (IdResponse, error) {
	var r IdResponse
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r IdResponse) field(name string, out any) bool {
	raw, ok := r[name]
	if !ok || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// UniversalUID returns universal_uid or "".
func (r IdResponse) UniversalUID() string {
	var s string
	r.field("universal_uid", &s)
	return s
}

// Signature returns signature or "".
func (r IdResponse) Signature() string {
	var s string
	r.field("signature", &s)
	return s
}

// Ext returns the raw ext object, nil when absent.
func (r IdResponse) Ext() json.RawMessage {
	return r["ext"]
}

// CacheControl returns cache_control when present.
func (r IdResponse) CacheControl() (CacheControl, bool) {
	var cc CacheControl
	ok := r.field("cache_control", &cc)
	return cc, ok
}

// Privacy returns privacy when present.
func (r IdResponse) Privacy() (PrivacyData, bool) {
	var p PrivacyData
	ok := r.field("privacy", &p)
	return p, ok
}

// CascadeNeeded reports whether the service asked for a cascade pixel.
func (r IdResponse) CascadeNeeded() bool {
	var b bool
	r.field("cascade_needed", &b)
	return b
}

// IsWellFormed reports whether the response carries both a uid and a signature.
func (r IdResponse) IsWellFormed() bool {
	return r.UniversalUID() != "" && r.Signature() != ""
}

// Merge returns a new response with every field of override laid over r.
func (r IdResponse) Merge(override IdResponse) IdResponse {
	out := make(IdResponse, len(r)+len(override))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Set stores v under name, JSON encoded.
func (r IdResponse) Set(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r[name] = b
	return nil
}
