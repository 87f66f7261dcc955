package interfaces

import "context"

// HTTPTransport performs the network calls of the uid fetcher: one batched POST to the identity
// service and GETs to the auxiliary extensions endpoints.
//
// Implemented by adapters.httptransport. Called from fetcher.UidFetcher.FetchId and fetcher.Extensions.Gather.
//
//go:generate moq -stub -out mock/transport.go -pkg mock . HTTPTransport
type HTTPTransport interface {
	// Post sends body to url with the given extra headers.
	// Returns: (response body, nil) on a 2xx answer; (nil, error) on network error or non-2xx status.
	Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error)

	// Get fetches url.
	// Returns: (response body, nil) on a 2xx answer; (nil, error) on network error or non-2xx status.
	Get(ctx context.Context, url string) ([]byte, error)
}
