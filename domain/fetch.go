package domain

// Role is informational for the identity service: which request in a batch belongs to the leader.
type Role string

const (
	RoleLeader   Role = "leader"
	RoleFollower Role = "follower"
)

// RefererInfo describes where on the page an integration runs.
// NumIframes is the number of frames between the integration and the top window; nil when unknown.
type RefererInfo struct {
	TopmostLocation string   `json:"topmostLocation,omitempty"`
	Ref             string   `json:"ref,omitempty"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty"`
	Stack           []string `json:"stack,omitempty"`
	ReachedTop      bool     `json:"reachedTop"`
	NumIframes      *int     `json:"numIframes,omitempty"`
}

// Segment is a partner-provided audience segment.
type Segment struct {
	Destination string   `json:"destination"`
	IDs         []string `json:"ids"`
}

// AbTesting is the partner A/B testing configuration forwarded to the identity service.
type AbTesting struct {
	Enabled         bool    `json:"enabled"`
	ControlGroupPct float64 `json:"controlGroupPct"`
}

// FetchIdData is everything an integration configures about its identity request.
type FetchIdData struct {
	PartnerID                          int            `json:"partnerId"`
	Origin                             string         `json:"origin,omitempty"`
	OriginVersion                      string         `json:"originVersion,omitempty"`
	IsUsingCdn                         bool           `json:"isUsingCdn,omitempty"`
	Att                                string         `json:"att,omitempty"`
	Pd                                 string         `json:"pd,omitempty"`
	Provider                           string         `json:"provider,omitempty"`
	PartnerUserID                      string         `json:"partnerUserId,omitempty"`
	AbTesting                          *AbTesting     `json:"abTesting,omitempty"`
	Segments                           []Segment      `json:"segments,omitempty"`
	RefreshInSeconds                   *int           `json:"refreshInSeconds,omitempty"`
	LinkType                           int            `json:"linkType,omitempty"`
	ProvidedOptions                    map[string]any `json:"providedOptions,omitempty"`
	Trace                              bool           `json:"trace,omitempty"`
	RefererInfo                        RefererInfo    `json:"refererInfo"`
	MaxCascades                        *int           `json:"maxCascades,omitempty"`
	ApplyCreativeRestrictions          bool           `json:"applyCreativeRestrictions,omitempty"`
	AllowLocalStorageWithoutConsentAPI bool           `json:"allowLocalStorageWithoutConsentApi,omitempty"`
}

// CanDoCascade reports whether the integration may fire a cascade pixel.
func (d FetchIdData) CanDoCascade() bool {
	return d.MaxCascades != nil && *d.MaxCascades >= 0 && !d.ApplyCreativeRestrictions
}

// FetchIdRequestData is one follower's contribution to a batched fetch call.
type FetchIdRequestData struct {
	RequestID      string
	Role           Role
	CacheID        string
	RequestCount   int
	NbPage         int
	FetchIdData    FetchIdData
	Href           string
	Domain         string
	CachedResponse IdResponse
	RefreshReason  string
}
