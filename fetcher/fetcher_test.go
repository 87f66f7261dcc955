package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consentStub struct {
	data  consent.Data
	err   error
	grant consent.LocalStorageGrant
}

func (c consentStub) ConsentData(ctx context.Context) (consent.Data, error) {
	return c.data, c.err
}

func (c consentStub) LocalStorageGrant() consent.LocalStorageGrant {
	return c.grant
}

func newMeter() *mock.MeterRegistryMock {
	return &mock.MeterRegistryMock{
		CounterFunc: func(name string, tags map[string]string) interfaces.Counter { return &mock.CounterMock{} },
		TimerFunc:   func(name string, tags map[string]string) interfaces.Timer { return &mock.TimerMock{} },
		SummaryFunc: func(name string, tags map[string]string) interfaces.Summary { return &mock.SummaryMock{} },
	}
}

var gdprConsent = consentStub{
	data: consent.Data{
		APIs:          []consent.API{consent.APITCFv2, consent.APIGPPv11},
		GdprApplies:   true,
		ConsentString: "tcf-string",
		CcpaString:    "1YN-",
		GppData:       &consent.GppData{GppString: "gpp", ApplicableSections: []int{2, 6}},
	},
	grant: consent.LocalStorageGrant{Allowed: true, GrantType: consent.GrantConsentAPI},
}

func TestNewUidFetcher_Panics(t *testing.T) {
	transport := &mock.HTTPTransportMock{}
	clk := helpers.TestClock()
	logger := log.NewNopLogger()
	meter := newMeter()

	t.Run("transport_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "fetcher.fetcher.go: transport is required", func() {
			NewUidFetcher(Config{}, nil, gdprConsent, nil, meter, clk, logger)
		})
	})
	t.Run("consent_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "fetcher.fetcher.go: consent is required", func() {
			NewUidFetcher(Config{}, transport, nil, nil, meter, clk, logger)
		})
	})
	t.Run("meter_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "fetcher.fetcher.go: meter is required", func() {
			NewUidFetcher(Config{}, transport, gdprConsent, nil, nil, clk, logger)
		})
	})
	t.Run("logger_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "fetcher.fetcher.go: logger is required", func() {
			NewUidFetcher(Config{}, transport, gdprConsent, nil, meter, clk, nil)
		})
	})
}

func TestUidFetcher_FetchId(t *testing.T) {
	requests := []domain.FetchIdRequestData{
		{
			RequestID:      "leader-id",
			Role:           domain.RoleLeader,
			CacheID:        "cid1",
			RequestCount:   1,
			NbPage:         3,
			Href:           "https://publisher.com/article",
			CachedResponse: domain.IdResponse{"signature": json.RawMessage(`"old-sig"`)},
			FetchIdData: domain.FetchIdData{
				PartnerID:   99,
				Pd:          "pd",
				Trace:       true,
				Segments:    []domain.Segment{{Destination: "22", IDs: []string{"abc"}}},
				AbTesting:   &domain.AbTesting{Enabled: true, ControlGroupPct: 0.1},
				RefererInfo: domain.RefererInfo{TopmostLocation: "https://publisher.com", Ref: "https://google.com", ReachedTop: true},
			},
		},
		{RequestID: "follower-id", Role: domain.RoleFollower, CacheID: "cid2", FetchIdData: domain.FetchIdData{PartnerID: 100}},
	}

	t.Run("success", func(t *testing.T) {
		transport := &mock.HTTPTransportMock{
			PostFunc: func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
				return []byte(`{"generic":{"universal_uid":"ID5*generic","signature":"sig"},"responses":{"follower-id":{"universal_uid":"ID5*follower","cascade_needed":true}}}`), nil
			},
		}
		f := NewUidFetcher(Config{Endpoint: "https://id5.test/gm/v3", Version: "1.2.3"}, transport, gdprConsent, nil, newMeter(), helpers.TestClock(), log.NewNopLogger())

		resp, err := f.FetchId(context.Background(), requests)
		require.NoError(t, err)
		assert.Equal(t, helpers.TestNow(), resp.Timestamp)
		assert.Equal(t, "ID5*generic", resp.ResponseFor("leader-id").UniversalUID())
		assert.False(t, resp.ResponseFor("leader-id").CascadeNeeded())
		follower := resp.ResponseFor("follower-id")
		assert.Equal(t, "ID5*follower", follower.UniversalUID())
		assert.Equal(t, "sig", follower.Signature())
		assert.True(t, follower.CascadeNeeded())

		calls := transport.PostCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "https://id5.test/gm/v3", calls[0].URL)
		assert.Equal(t, "application/json", calls[0].Headers["Content-Type"])

		var body struct {
			Requests []map[string]any `json:"requests"`
		}
		require.NoError(t, json.Unmarshal(calls[0].Body, &body))
		require.Len(t, body.Requests, 2)
		first := body.Requests[0]
		assert.Equal(t, "leader-id", first["requestId"])
		assert.Equal(t, "leader", first["role"])
		assert.Equal(t, "cid1", first["cacheId"])
		assert.EqualValues(t, 99, first["partner"])
		assert.Equal(t, "1.2.3", first["v"])
		assert.EqualValues(t, 1, first["gdpr"])
		assert.Equal(t, "tcf-string", first["gdpr_consent"])
		assert.Equal(t, "1YN-", first["us_privacy"])
		assert.Equal(t, "gpp", first["gpp_string"])
		assert.Equal(t, "2,6", first["gpp_sid"])
		assert.Equal(t, "https://publisher.com", first["tml"])
		assert.Equal(t, "https://google.com", first["ref"])
		assert.Equal(t, "https://publisher.com/article", first["u"])
		assert.EqualValues(t, 1, first["top"])
		assert.EqualValues(t, 3, first["nbPage"])
		assert.Equal(t, "old-sig", first["s"])
		assert.Equal(t, "pd", first["pd"])
		assert.Equal(t, true, first["_trace"])
		assert.EqualValues(t, 1, first["localStorage"])
		assert.NotNil(t, first["segments"])
		assert.NotNil(t, first["ab_testing"])
		assert.Equal(t, "follower", body.Requests[1]["role"])
		assert.Nil(t, body.Requests[1]["s"])
	})

	errorTests := []struct {
		name  string
		body  []byte
		err   error
		check func(error) bool
	}{
		{name: "transport_error", err: errors.New("connection refused"), check: IsNetworkError},
		{name: "empty_body", body: []byte("  "), check: IsEmptyResponseError},
		{name: "malformed_json", body: []byte("{"), check: IsMalformedResponseError},
		{name: "no_generic", body: []byte(`{"responses":{}}`), check: IsMalformedResponseError},
		{name: "missing_uid", body: []byte(`{"generic":{"signature":"s"}}`), check: IsMissingUidError},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mock.HTTPTransportMock{
				PostFunc: func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
					return tt.body, tt.err
				},
			}
			f := NewUidFetcher(Config{}, transport, gdprConsent, nil, newMeter(), helpers.TestClock(), log.NewNopLogger())
			resp, err := f.FetchId(context.Background(), requests)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.Len(t, transport.PostCalls(), 1, "no internal retry")
		})
	}

	t.Run("consent_unavailable", func(t *testing.T) {
		transport := &mock.HTTPTransportMock{}
		waiting := consentStub{err: context.DeadlineExceeded}
		f := NewUidFetcher(Config{}, transport, waiting, nil, newMeter(), helpers.TestClock(), log.NewNopLogger())
		_, err := f.FetchId(context.Background(), requests)
		assert.True(t, IsFetchError(err, ErrConsentUnavailable))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Empty(t, transport.PostCalls())
	})

	t.Run("metrics", func(t *testing.T) {
		meter := newMeter()
		transport := &mock.HTTPTransportMock{
			PostFunc: func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
				return nil, errors.New("down")
			},
		}
		f := NewUidFetcher(Config{}, transport, gdprConsent, nil, meter, helpers.TestClock(), log.NewNopLogger())
		_, _ = f.FetchId(context.Background(), requests)
		require.Len(t, meter.CounterCalls(), 1)
		assert.Equal(t, "id5.api.fetch.call", meter.CounterCalls()[0].Name)
		assert.Equal(t, map[string]string{"status": "fail"}, meter.CounterCalls()[0].Tags)
	})
}

func TestFetchError(t *testing.T) {
	inner := errors.New("boom")
	err := NewFetchError(ErrNetwork, "call failed", inner)
	assert.Equal(t, "network_error call failed: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "empty_response nothing", NewFetchError(ErrEmptyResponse, "nothing", nil).Error())
	assert.Nil(t, ToFetchError(inner))
}

type extensionsCacheStub struct {
	stored map[string]any
	ttl    time.Duration
}

func (c *extensionsCacheStub) CachedExtensions(g consent.LocalStorageGrant) (map[string]any, bool) {
	return c.stored, c.stored != nil
}

func (c *extensionsCacheStub) StoreExtensions(g consent.LocalStorageGrant, ext map[string]any, ttl time.Duration) bool {
	c.stored = ext
	c.ttl = ttl
	return true
}

func TestExtensions_Gather(t *testing.T) {
	grant := consent.LocalStorageGrant{Allowed: true, GrantType: consent.GrantConsentAPI}
	endpoints := []string{"https://lb.test/lb", "https://ext.test/v1"}

	t.Run("merges_and_caches", func(t *testing.T) {
		transport := &mock.HTTPTransportMock{
			GetFunc: func(ctx context.Context, url string) ([]byte, error) {
				if url == endpoints[0] {
					return []byte(`{"lb":"lb-value","ttl":300}`), nil
				}
				return []byte(`{"other":1}`), nil
			},
		}
		cache := &extensionsCacheStub{}
		e := NewExtensions(transport, cache, endpoints, time.Second, log.NewNopLogger())

		got := e.Gather(context.Background(), grant)
		assert.Equal(t, "lb-value", got["lb"])
		assert.EqualValues(t, 1, got["other"])
		assert.Equal(t, 300*time.Second, cache.ttl)

		again := e.Gather(context.Background(), grant)
		assert.Equal(t, got, again)
		assert.Len(t, transport.GetCalls(), 2, "second gather served from cache")
	})

	t.Run("independent_failures", func(t *testing.T) {
		transport := &mock.HTTPTransportMock{
			GetFunc: func(ctx context.Context, url string) ([]byte, error) {
				if url == endpoints[0] {
					return nil, errors.New("timeout")
				}
				return []byte(`{"other":1}`), nil
			},
		}
		got := NewExtensions(transport, &extensionsCacheStub{}, endpoints, time.Second, log.NewNopLogger()).Gather(context.Background(), grant)
		assert.Equal(t, map[string]any{"other": float64(1)}, got)
	})

	t.Run("default_when_all_fail", func(t *testing.T) {
		transport := &mock.HTTPTransportMock{
			GetFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte("not json"), nil
			},
		}
		cache := &extensionsCacheStub{}
		got := NewExtensions(transport, cache, endpoints, time.Second, log.NewNopLogger()).Gather(context.Background(), grant)
		assert.Equal(t, DefaultExtensions, got)
		assert.Nil(t, cache.stored)
	})
}

func TestUidFetcher_SendsExtensions(t *testing.T) {
	transport := &mock.HTTPTransportMock{
		GetFunc: func(ctx context.Context, url string) ([]byte, error) {
			return []byte(`{"lb":"x"}`), nil
		},
		PostFunc: func(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
			return []byte(`{"generic":{"universal_uid":"u","signature":"s"}}`), nil
		},
	}
	ext := NewExtensions(transport, &extensionsCacheStub{}, []string{"https://lb.test"}, time.Second, log.NewNopLogger())
	f := NewUidFetcher(Config{}, transport, gdprConsent, ext, newMeter(), helpers.TestClock(), log.NewNopLogger())

	_, err := f.FetchId(context.Background(), []domain.FetchIdRequestData{{RequestID: "a"}})
	require.NoError(t, err)
	var body struct {
		Requests []struct {
			Extensions map[string]any `json:"extensions"`
		} `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(transport.PostCalls()[0].Body, &body))
	assert.Equal(t, "x", body.Requests[0].Extensions["lb"])
	assert.Equal(t, DefaultEndpoint, transport.PostCalls()[0].URL)
}
