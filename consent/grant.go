package consent

import "id5multiplexing/domain"

// GrantType tells how a LocalStorageGrant was decided.
type GrantType string

const (
	GrantNone                 GrantType = "none"
	GrantForceAllowedByConfig GrantType = "force_allowed_by_config"
	GrantProvisional          GrantType = "provisional"
	GrantJurisdiction         GrantType = "jurisdiction"
	GrantID5Consent           GrantType = "id5_consent"
	GrantConsentAPI           GrantType = "consent_api"
)

// LocalStorageGrant is the decision whether storage may be used. API holds the per-framework
// result the decision was built from.
type LocalStorageGrant struct {
	Allowed   bool
	GrantType GrantType
	API       map[API]bool
}

// IsDefinitivelyAllowed is true for an allow that does not depend on a consent signal still to come.
func (g LocalStorageGrant) IsDefinitivelyAllowed() bool {
	return g.Allowed && g.GrantType != GrantProvisional
}

// IsDefinitivelyDenied is true for a deny that was decided from real consent or stored privacy data.
func (g LocalStorageGrant) IsDefinitivelyDenied() bool {
	return !g.Allowed && g.GrantType != GrantProvisional && g.GrantType != GrantNone
}

// LocalStorageGrant applies the per framework rules. With several frameworks every one must allow.
func (d Data) LocalStorageGrant() LocalStorageGrant {
	if d.ForcedGrantByConfig {
		return LocalStorageGrant{Allowed: true, GrantType: GrantForceAllowedByConfig, API: map[API]bool{}}
	}
	apis := d.apis()
	if len(apis) == 0 {
		return LocalStorageGrant{Allowed: true, GrantType: GrantConsentAPI, API: map[API]bool{APINone: true}}
	}
	g := LocalStorageGrant{Allowed: true, GrantType: GrantConsentAPI, API: make(map[API]bool, len(apis))}
	for _, api := range apis {
		allowed := d.allowedBy(api)
		g.API[api] = allowed
		g.Allowed = g.Allowed && allowed
	}
	return g
}

func (d Data) allowedBy(api API) bool {
	switch api {
	case APITCFv1:
		return !d.GdprApplies || isTrue(d.LocalStoragePurposeConsent)
	case APITCFv2:
		return !d.GdprApplies || (isTrue(d.LocalStoragePurposeConsent) && !isFalse(d.VendorsConsentForId5Granted))
	case APIGPPv10, APIGPPv11:
		if d.GppData == nil || !d.GppData.EuTcfSectionApplies() {
			return true
		}
		return isTrue(d.GppData.LocalStoragePurposeConsent) && !isFalse(d.GppData.VendorsConsentForId5Granted)
	case APIUSPv1:
		return true
	case APIID5AllowedVendors:
		for _, v := range d.AllowedVendors {
			if v == ID5VendorID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// jurisdictionRequiresConsent lists jurisdictions known to the identity service. Unknown ones do not
// require consent.
var jurisdictionRequiresConsent = map[string]bool{
	"gdpr":  true,
	"ccpa":  false,
	"lgpd":  true,
	"other": false,
}

// ProvisionalGrant decides storage access before any consent signal was received, from the
// privacy data stored by a previous response.
func ProvisionalGrant(privacy domain.PrivacyData, stored bool) LocalStorageGrant {
	switch {
	case stored && privacy.ID5Consent:
		return LocalStorageGrant{Allowed: true, GrantType: GrantID5Consent}
	case stored && privacy.Jurisdiction != "":
		return LocalStorageGrant{Allowed: !jurisdictionRequiresConsent[privacy.Jurisdiction], GrantType: GrantJurisdiction}
	default:
		return LocalStorageGrant{Allowed: true, GrantType: GrantProvisional}
	}
}

func isTrue(b *bool) bool  { return b != nil && *b }
func isFalse(b *bool) bool { return b != nil && !*b }
