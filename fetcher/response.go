package fetcher

import (
	"bytes"
	"encoding/json"
	"time"

	"id5multiplexing/domain"
)

// RefreshedResponse is the answer to one batched fetch: a generic response shared by all requests
// plus per request overrides.
type RefreshedResponse struct {
	Generic   domain.IdResponse            `json:"generic"`
	Responses map[string]domain.IdResponse `json:"responses,omitempty"`
	Timestamp time.Time                    `json:"-"`
}

// ResponseFor returns the override of requestID merged over the generic response.
func (r *RefreshedResponse) ResponseFor(requestID string) domain.IdResponse {
	override, ok := r.Responses[requestID]
	if !ok {
		return r.Generic
	}
	return r.Generic.Merge(override)
}

func parseResponse(body []byte, now time.Time) (*RefreshedResponse, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, NewFetchError(ErrEmptyResponse, "empty response from identity service", nil)
	}
	var r RefreshedResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, NewFetchError(ErrMalformedResponse, "malformed response from identity service", err)
	}
	if r.Generic == nil {
		return nil, NewFetchError(ErrMalformedResponse, "response has no generic part", nil)
	}
	if r.Generic.UniversalUID() == "" {
		return nil, NewFetchError(ErrMissingUid, "response has no universal_uid", nil)
	}
	r.Timestamp = now
	return &r, nil
}
