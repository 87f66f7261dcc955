package consent

import (
	"encoding/json"
	"sort"

	"github.com/multiformats/go-multihash"
)

// API identifies a consent framework reported by the page.
type API string

const (
	APINone              API = "none"
	APITCFv1             API = "TCFv1"
	APITCFv2             API = "TCFv2"
	APIUSPv1             API = "USPv1"
	APIGPPv10            API = "GPPv1.0"
	APIGPPv11            API = "GPPv1.1"
	APIID5AllowedVendors API = "ID5"
)

// ID5VendorID is the IAB vendor id of ID5.
const ID5VendorID = "131"

// GppTcfEuSectionID is the GPP section id of the EU TCF v2 section.
const GppTcfEuSectionID = 2

// GppData is what the page's GPP API reported.
type GppData struct {
	Version                     API    `json:"version"`
	ApplicableSections          []int  `json:"applicableSections,omitempty"`
	GppString                   string `json:"gppString,omitempty"`
	LocalStoragePurposeConsent  *bool  `json:"localStoragePurposeConsent,omitempty"`
	VendorsConsentForId5Granted *bool  `json:"vendorsConsentForId5Granted,omitempty"`
}

// EuTcfSectionApplies reports whether the EU TCF section is among the applicable sections.
func (g GppData) EuTcfSectionApplies() bool {
	for _, s := range g.ApplicableSections {
		if s == GppTcfEuSectionID {
			return true
		}
	}
	return false
}

// Data is one snapshot of the consent signals found on the page. It is replaced as a whole on every
// update. Source only records where the data came from and is ignored by Hash.
type Data struct {
	APIs                        []API    `json:"apiTypes,omitempty"`
	GdprApplies                 bool     `json:"gdprApplies"`
	ConsentString               string   `json:"consentString,omitempty"`
	LocalStoragePurposeConsent  *bool    `json:"localStoragePurposeConsent,omitempty"`
	VendorsConsentForId5Granted *bool    `json:"vendorsConsentForId5Granted,omitempty"`
	CcpaString                  string   `json:"ccpaString,omitempty"`
	AllowedVendors              []string `json:"allowedVendors,omitempty"`
	GppData                     *GppData `json:"gppData,omitempty"`
	ForcedGrantByConfig         bool     `json:"forcedGrantByConfig,omitempty"`
	Source                      string   `json:"source,omitempty"`
}

// Has reports whether api was consulted.
func (d Data) Has(api API) bool {
	for _, a := range d.APIs {
		if a == api {
			return true
		}
	}
	return false
}

// apis returns the consulted APIs without duplicates and without APINone. Empty means no consent
// signal was found.
func (d Data) apis() []API {
	seen := make(map[API]bool, len(d.APIs))
	out := make([]API, 0, len(d.APIs))
	for _, a := range d.APIs {
		if a == APINone || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// hashedData is the decision relevant part of Data.
type hashedData struct {
	APIs                        []API    `json:"apiTypes"`
	GdprApplies                 bool     `json:"gdprApplies"`
	ConsentString               string   `json:"consentString"`
	LocalStoragePurposeConsent  *bool    `json:"localStoragePurposeConsent"`
	VendorsConsentForId5Granted *bool    `json:"vendorsConsentForId5Granted"`
	CcpaString                  string   `json:"ccpaString"`
	AllowedVendors              []string `json:"allowedVendors"`
	GppData                     *GppData `json:"gppData"`
	ForcedGrantByConfig         bool     `json:"forcedGrantByConfig"`
}

// Hash returns a stable digest of every field that affects consent decisions. Two snapshots that
// differ only in Source or in the order of APIs and allowed vendors hash the same.
func (d Data) Hash() string {
	vendors := append([]string(nil), d.AllowedVendors...)
	sort.Strings(vendors)
	h := hashedData{
		APIs:                        d.apis(),
		GdprApplies:                 d.GdprApplies,
		ConsentString:               d.ConsentString,
		LocalStoragePurposeConsent:  d.LocalStoragePurposeConsent,
		VendorsConsentForId5Granted: d.VendorsConsentForId5Granted,
		CcpaString:                  d.CcpaString,
		AllowedVendors:              vendors,
		GppData:                     d.GppData,
		ForcedGrantByConfig:         d.ForcedGrantByConfig,
	}
	b, err := json.Marshal(h)
	if err != nil {
		// every field is a plain value
		panic(err)
	}
	return HashBytes(b)
}

// HashBytes returns the base58 sha2-256 multihash of b. Storage uses it for the partner data and
// segments change-detection hashes.
func HashBytes(b []byte) string {
	sum, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		panic(err)
	}
	return sum.B58String()
}
