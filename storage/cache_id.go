package storage

import (
	"encoding/json"

	"id5multiplexing/domain"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// cacheKey holds the fetch parameters that make a response specific to an integration.
type cacheKey struct {
	PartnerID        int               `json:"partnerId"`
	Att              string            `json:"att"`
	Pd               string            `json:"pd"`
	Provider         string            `json:"provider"`
	AbTesting        *domain.AbTesting `json:"abTesting"`
	Segments         []domain.Segment  `json:"segments"`
	RefreshInSeconds *int              `json:"refreshInSeconds"`
	LinkType         int               `json:"linkType"`
}

// CacheIDFor returns the cache id of the response an integration with data would receive. Two
// integrations with the same id share one stored response.
func CacheIDFor(data domain.FetchIdData) string {
	b, err := json.Marshal(cacheKey{
		PartnerID:        data.PartnerID,
		Att:              data.Att,
		Pd:               data.Pd,
		Provider:         data.Provider,
		AbTesting:        data.AbTesting,
		Segments:         data.Segments,
		RefreshInSeconds: data.RefreshInSeconds,
		LinkType:         data.LinkType,
	})
	if err != nil {
		panic(err)
	}
	sum, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		panic(err)
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}
