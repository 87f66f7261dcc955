package fetcher

import (
	"context"
	"encoding/json"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultEndpoint is the identity service batch endpoint.
const DefaultEndpoint = "https://id5-sync.com/gm/v3"

// ConsentSource provides the consent data a fetch waits for. Implemented by consent.Management.
type ConsentSource interface {
	ConsentData(ctx context.Context) (consent.Data, error)
	LocalStorageGrant() consent.LocalStorageGrant
}

// Config of a UidFetcher.
type Config struct {
	// Endpoint receives the batched POST. Defaults to DefaultEndpoint.
	Endpoint string
	// Version is sent as the SDK version of every request.
	Version string
}

// UidFetcher issues one batched identity request for all followers of a leader. It never retries:
// a failed fetch is reported to the caller, which decides when to try again.
type UidFetcher struct {
	cfg        Config
	transport  interfaces.HTTPTransport
	consent    ConsentSource
	extensions *Extensions
	meter      interfaces.MeterRegistry
	clock      clock.Clock
	logger     log.Logger
}

// NewUidFetcher panics on nil transport, consent, meter, clock or logger. extensions may be nil, in
// which case requests carry no extensions.
func NewUidFetcher(cfg Config, transport interfaces.HTTPTransport, consentSource ConsentSource, extensions *Extensions, meter interfaces.MeterRegistry, clk clock.Clock, logger log.Logger) *UidFetcher {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &UidFetcher{
		cfg:        cfg,
		transport:  helpers.NilPanic(transport, "fetcher.fetcher.go: transport is required"),
		consent:    helpers.NilPanic(consentSource, "fetcher.fetcher.go: consent is required"),
		extensions: extensions,
		meter:      helpers.NilPanic(meter, "fetcher.fetcher.go: meter is required"),
		clock:      helpers.NilPanic(clk, "fetcher.fetcher.go: clock is required"),
		logger:     log.With(helpers.NilPanic(logger, "fetcher.fetcher.go: logger is required"), "component", "uid_fetcher"),
	}
}

// FetchId waits for consent data, then sends requests in one call.
//
// Returns: (response, nil) when the service answered with a generic uid; (nil, *FetchError) otherwise.
func (f *UidFetcher) FetchId(ctx context.Context, requests []domain.FetchIdRequestData) (*RefreshedResponse, error) {
	started := f.clock.Now()
	resp, err := f.fetch(ctx, requests)
	status := "success"
	if err != nil {
		status = "fail"
	}
	tags := map[string]string{"status": status}
	f.meter.Counter("id5.api.fetch.call", tags).Inc()
	f.meter.Timer("id5.api.fetch.time", tags).Record(f.clock.Since(started))
	f.meter.Summary("id5.api.fetch.requests", nil).Record(float64(len(requests)))
	return resp, err
}

func (f *UidFetcher) fetch(ctx context.Context, requests []domain.FetchIdRequestData) (*RefreshedResponse, error) {
	consentData, err := f.consent.ConsentData(ctx)
	if err != nil {
		return nil, NewFetchError(ErrConsentUnavailable, "consent data not available", err)
	}
	grant := f.consent.LocalStorageGrant()

	var ext map[string]any
	if f.extensions != nil {
		ext = f.extensions.Gather(ctx, grant)
	}

	batch := batchBody{Requests: make([]requestBody, 0, len(requests))}
	for _, r := range requests {
		batch.Requests = append(batch.Requests, buildRequest(r, f.cfg.Version, consentData, grant, ext))
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, NewFetchError(ErrBadRequest, "can't encode fetch request", err)
	}

	level.Debug(f.logger).Log("msg", "fetching uid", "requests", len(requests), "endpoint", f.cfg.Endpoint)
	raw, err := f.transport.Post(ctx, f.cfg.Endpoint, body, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		level.Warn(f.logger).Log("msg", "uid fetch failed", "err", err)
		return nil, NewFetchError(ErrNetwork, "identity service call failed", err)
	}
	resp, err := parseResponse(raw, f.clock.Now())
	if err != nil {
		level.Warn(f.logger).Log("msg", "invalid identity service response", "err", err)
		return nil, err
	}
	level.Info(f.logger).Log("msg", "uid fetched", "requests", len(requests))
	return resp, nil
}
