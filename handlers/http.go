// Package handlers is an in-process stand-in for the ID5 identity service: the batched fetch
// endpoint and the extensions endpoints the uid fetcher calls.
package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"id5multiplexing/domain"
	"id5multiplexing/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// FetchPath is the batched fetch endpoint.
	FetchPath = "/gm/v3"
	// ExtensionsPath serves one extensions endpoint per name.
	ExtensionsPath = "/extensions/:name"

	DefaultMaxAgeSec = 3600
)

// fetchRequest is the part of a batched fetch element the stub looks at.
type fetchRequest struct {
	RequestID   string      `json:"requestId"`
	Role        domain.Role `json:"role"`
	CacheID     string      `json:"cacheId"`
	Partner     int         `json:"partner"`
	Gdpr        int         `json:"gdpr"`
	GdprConsent string      `json:"gdpr_consent"`
	NbPage      int         `json:"nbPage"`
	Signature   string      `json:"s"`
}

type fetchBatch struct {
	Requests []fetchRequest `json:"requests"`
}

type fetchAnswer struct {
	Generic   domain.IdResponse            `json:"generic"`
	Responses map[string]domain.IdResponse `json:"responses,omitempty"`
}

// IdentityServer answers fetch calls with a stable uid per partner and serves static extensions.
type IdentityServer struct {
	maxAgeSec  int
	extensions map[string]map[string]any
	newUID     func() string
	logger     log.Logger

	mu     sync.Mutex
	uids   map[int]string
	synced map[int]bool
	calls  int
}

// NewIdentityServer creates an IdentityServer. Panics on nil logger. maxAgeSec <= 0 selects DefaultMaxAgeSec.
func NewIdentityServer(maxAgeSec int, extensions map[string]map[string]any, logger log.Logger) *IdentityServer {
	if maxAgeSec <= 0 {
		maxAgeSec = DefaultMaxAgeSec
	}
	return &IdentityServer{
		maxAgeSec:  maxAgeSec,
		extensions: extensions,
		newUID:     func() string { return "ID5*" + uuid.NewString() },
		logger:     log.With(helpers.NilPanic(logger, "handlers.http.go: logger is required"), "component", "IdentityServer"),
		uids:       make(map[int]string),
		synced:     make(map[int]bool),
	}
}

// RegisterHandlers routes the stub's endpoints on e.
func RegisterHandlers(e *echo.Echo, s *IdentityServer) {
	e.POST(FetchPath, s.FetchIds)
	e.GET(ExtensionsPath, s.GetExtension)
}

// Calls returns how many fetch calls were answered.
func (s *IdentityServer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FetchIds (POST /gm/v3) answers one batch. Every request shares the partner's uid. A request
// without consent under gdpr gets uid "0" and no signature. The first batch of a partner asks its
// first request for a cascade.
func (s *IdentityServer) FetchIds(ectx echo.Context) error {
	var batch fetchBatch
	if err := ectx.Bind(&batch); err != nil {
		return NewBadParameterError("invalid request body", err)
	}
	if len(batch.Requests) == 0 {
		return NewBadParameterError("requests are required", nil)
	}
	partner := batch.Requests[0].Partner
	for _, r := range batch.Requests {
		if r.RequestID == "" {
			return NewBadParameterError("requestId is required", nil)
		}
		if r.Partner <= 0 {
			return NewBadParameterError(fmt.Sprintf("request %s has no partner", r.RequestID), nil)
		}
	}

	s.mu.Lock()
	s.calls++
	uid, ok := s.uids[partner]
	if !ok {
		uid = s.newUID()
		s.uids[partner] = uid
	}
	firstSync := !s.synced[partner]
	s.synced[partner] = true
	s.mu.Unlock()

	answer := fetchAnswer{Generic: domain.IdResponse{}, Responses: make(map[string]domain.IdResponse)}
	first := batch.Requests[0]
	if first.Gdpr == 1 && first.GdprConsent == "" {
		_ = answer.Generic.Set("universal_uid", "0")
		_ = answer.Generic.Set("privacy", domain.PrivacyData{Jurisdiction: "gdpr", ID5Consent: false})
	} else {
		_ = answer.Generic.Set("universal_uid", uid)
		_ = answer.Generic.Set("signature", "sig-"+uid)
		_ = answer.Generic.Set("privacy", domain.PrivacyData{Jurisdiction: "other", ID5Consent: true})
	}
	_ = answer.Generic.Set("cache_control", domain.CacheControl{MaxAgeSec: s.maxAgeSec})
	_ = answer.Generic.Set("ext", map[string]any{"linkType": 1})

	for i, r := range batch.Requests {
		resp := domain.IdResponse{}
		_ = resp.Set("cascade_needed", firstSync && i == 0)
		answer.Responses[r.RequestID] = resp
	}

	level.Debug(s.logger).Log("msg", "fetch answered", "partner", partner, "requests", len(batch.Requests))
	return ectx.JSON(http.StatusOK, answer)
}

// GetExtension (GET /extensions/{name}) returns the configured object for name.
func (s *IdentityServer) GetExtension(ectx echo.Context) error {
	name := ectx.Param("name")
	ext, ok := s.extensions[name]
	if !ok {
		return NewEntityNotFoundError(fmt.Sprintf("extension %s is not served", name), nil)
	}
	return ectx.JSON(http.StatusOK, ext)
}
