package fetcher

import (
	"strconv"
	"strings"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
)

// requestBody is one element of the batched fetch call.
type requestBody struct {
	RequestID       string            `json:"requestId"`
	RequestCount    int               `json:"requestCount"`
	Role            domain.Role       `json:"role"`
	CacheID         string            `json:"cacheId"`
	Partner         int               `json:"partner"`
	Version         string            `json:"v"`
	Origin          string            `json:"o,omitempty"`
	OriginVersion   string            `json:"ov,omitempty"`
	Cdn             bool              `json:"id5cdn,omitempty"`
	Att             string            `json:"att,omitempty"`
	Provider        string            `json:"provider,omitempty"`
	PartnerUserID   string            `json:"puid,omitempty"`
	LocalStorage    int               `json:"localStorage"`
	Gdpr            int               `json:"gdpr"`
	GdprConsent     string            `json:"gdpr_consent,omitempty"`
	UsPrivacy       string            `json:"us_privacy,omitempty"`
	GppString       string            `json:"gpp_string,omitempty"`
	GppSid          string            `json:"gpp_sid,omitempty"`
	AllowedVendors  []string          `json:"allowed_vendors,omitempty"`
	Tml             string            `json:"tml,omitempty"`
	Ref             string            `json:"ref,omitempty"`
	Cu              string            `json:"cu,omitempty"`
	U               string            `json:"u,omitempty"`
	Top             int               `json:"top"`
	NbPage          int               `json:"nbPage"`
	Signature       string            `json:"s,omitempty"`
	Pd              string            `json:"pd,omitempty"`
	Segments        []domain.Segment  `json:"segments,omitempty"`
	AbTesting       *domain.AbTesting `json:"ab_testing,omitempty"`
	ProvidedOptions map[string]any    `json:"provided_options,omitempty"`
	Trace           bool              `json:"_trace,omitempty"`
	Extensions      map[string]any    `json:"extensions,omitempty"`
	RefreshReason   string            `json:"refreshReason,omitempty"`
}

type batchBody struct {
	Requests []requestBody `json:"requests"`
}

func buildRequest(r domain.FetchIdRequestData, version string, c consent.Data, grant consent.LocalStorageGrant, ext map[string]any) requestBody {
	d := r.FetchIdData
	body := requestBody{
		RequestID:       r.RequestID,
		RequestCount:    r.RequestCount,
		Role:            r.Role,
		CacheID:         r.CacheID,
		Partner:         d.PartnerID,
		Version:         version,
		Origin:          d.Origin,
		OriginVersion:   d.OriginVersion,
		Cdn:             d.IsUsingCdn,
		Att:             d.Att,
		Provider:        d.Provider,
		PartnerUserID:   d.PartnerUserID,
		LocalStorage:    boolToInt(grant.Allowed),
		Gdpr:            boolToInt(c.GdprApplies),
		GdprConsent:     c.ConsentString,
		UsPrivacy:       c.CcpaString,
		AllowedVendors:  c.AllowedVendors,
		Tml:             d.RefererInfo.TopmostLocation,
		Ref:             d.RefererInfo.Ref,
		Cu:              d.RefererInfo.CanonicalURL,
		U:               r.Href,
		Top:             boolToInt(d.RefererInfo.ReachedTop),
		NbPage:          r.NbPage,
		Signature:       r.CachedResponse.Signature(),
		Pd:              d.Pd,
		Segments:        d.Segments,
		AbTesting:       d.AbTesting,
		ProvidedOptions: d.ProvidedOptions,
		Trace:           d.Trace,
		Extensions:      ext,
		RefreshReason:   r.RefreshReason,
	}
	if len(d.RefererInfo.Stack) > 0 && body.U == "" {
		body.U = d.RefererInfo.Stack[0]
	}
	if c.GppData != nil {
		body.GppString = c.GppData.GppString
		sids := make([]string, 0, len(c.GppData.ApplicableSections))
		for _, s := range c.GppData.ApplicableSections {
			sids = append(sids, strconv.Itoa(s))
		}
		body.GppSid = strings.Join(sids, ",")
	}
	return body
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
