package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"id5multiplexing/domain"

	"github.com/go-kit/log"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T) (*echo.Echo, *IdentityServer) {
	t.Helper()
	s := NewIdentityServer(0, map[string]map[string]any{"lb": {"lb": "lb-value", "ttl": 60}}, log.NewNopLogger())
	n := 0
	s.newUID = func() string {
		n++
		return "ID5*uid-" + string(rune('0'+n))
	}
	e := echo.New()
	RegisterErrorHandler(e, log.NewNopLogger())
	RegisterHandlers(e, s)
	return e, s
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeAnswer(t *testing.T, rec *httptest.ResponseRecorder) fetchAnswer {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var a fetchAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	return a
}

func TestNewIdentityServer_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "handlers.http.go: logger is required", func() {
		NewIdentityServer(0, nil, nil)
	})
}

func TestFetchIds(t *testing.T) {
	e, s := newTestEcho(t)

	body := `{"requests":[{"requestId":"r1","role":"leader","cacheId":"c1","partner":99,"nbPage":1},{"requestId":"r2","role":"follower","cacheId":"c2","partner":99}]}`
	a := decodeAnswer(t, doRequest(e, http.MethodPost, FetchPath, body))

	assert.Equal(t, "ID5*uid-1", a.Generic.UniversalUID())
	assert.Equal(t, "sig-ID5*uid-1", a.Generic.Signature())
	cc, ok := a.Generic.CacheControl()
	require.True(t, ok)
	assert.Equal(t, DefaultMaxAgeSec, cc.MaxAgeSec)
	p, ok := a.Generic.Privacy()
	require.True(t, ok)
	assert.Equal(t, domain.PrivacyData{Jurisdiction: "other", ID5Consent: true}, p)
	require.Len(t, a.Responses, 2)
	assert.True(t, a.Responses["r1"].CascadeNeeded())
	assert.False(t, a.Responses["r2"].CascadeNeeded())

	t.Run("uid is stable per partner and cascade is asked once", func(t *testing.T) {
		a := decodeAnswer(t, doRequest(e, http.MethodPost, FetchPath, `{"requests":[{"requestId":"r3","partner":99}]}`))
		assert.Equal(t, "ID5*uid-1", a.Generic.UniversalUID())
		assert.False(t, a.Responses["r3"].CascadeNeeded())
	})

	t.Run("another partner gets another uid", func(t *testing.T) {
		a := decodeAnswer(t, doRequest(e, http.MethodPost, FetchPath, `{"requests":[{"requestId":"r4","partner":7}]}`))
		assert.Equal(t, "ID5*uid-2", a.Generic.UniversalUID())
	})

	assert.Equal(t, 3, s.Calls())
}

func TestFetchIds_GdprWithoutConsent(t *testing.T) {
	e, _ := newTestEcho(t)
	a := decodeAnswer(t, doRequest(e, http.MethodPost, FetchPath, `{"requests":[{"requestId":"r1","partner":99,"gdpr":1}]}`))

	assert.Equal(t, "0", a.Generic.UniversalUID())
	assert.Equal(t, "", a.Generic.Signature())
	assert.False(t, a.Generic.IsWellFormed())
	p, ok := a.Generic.Privacy()
	require.True(t, ok)
	assert.Equal(t, "gdpr", p.Jurisdiction)
	assert.False(t, p.ID5Consent)
}

func TestFetchIds_BadParameter(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid_json", body: `not json`},
		{name: "no_requests", body: `{"requests":[]}`},
		{name: "missing_request_id", body: `{"requests":[{"partner":99}]}`},
		{name: "missing_partner", body: `{"requests":[{"requestId":"r1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := newTestEcho(t)
			rec := doRequest(e, http.MethodPost, FetchPath, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrBadParameter, resp.Error.Code)
			assert.Equal(t, 0, s.Calls())
		})
	}
}

func TestGetExtension(t *testing.T) {
	e, _ := newTestEcho(t)

	rec := doRequest(e, http.MethodGet, "/extensions/lb", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lb":"lb-value","ttl":60}`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/extensions/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrEntityNotFound, resp.Error.Code)
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "bad_parameter", err: NewBadParameterError("bad", nil), wantStatus: http.StatusBadRequest, wantCode: ErrBadParameter},
		{name: "wrapped_not_found", err: errors.Join(errors.New("ctx"), NewEntityNotFoundError("gone", nil)), wantStatus: http.StatusNotFound, wantCode: ErrEntityNotFound},
		{name: "plain_error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: ErrInternalServerError},
		{name: "echo_not_found", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: ErrEntityNotFound},
		{name: "echo_method_not_allowed", err: echo.ErrMethodNotAllowed, wantStatus: http.StatusMethodNotAllowed, wantCode: ErrBadParameter},
	}
	h := NewHTTPErrorHandler(NewErrorCodeToStatusCodeMaps(), log.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h.Handler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestServiceError(t *testing.T) {
	inner := errors.New("io")
	err := NewBadParameterError("bad body", inner)
	assert.Equal(t, "bad_parameter bad body: io", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsServiceError(err, ErrBadParameter))
	assert.Same(t, err, NewEntityNotFoundError("other", err))
}
