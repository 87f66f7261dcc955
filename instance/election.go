package instance

import (
	"sort"
	"strings"

	"id5multiplexing/domain"

	"golang.org/x/mod/semver"
)

// ElectLeader returns the candidate every instance on the page agrees on, whatever the order
// candidates were discovered in. The second value is false when there is no candidate.
func ElectLeader(candidates []domain.Properties) (domain.Properties, bool) {
	if len(candidates) == 0 {
		return domain.Properties{}, false
	}
	sorted := append([]domain.Properties(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareCandidates(sorted[i], sorted[j]) < 0
	})
	return sorted[0], true
}

// compareCandidates is negative when a ranks before b:
// higher protocol version, then smaller source name, then higher source version, then fewer
// frames to the top window (unknown last), then smaller id.
func compareCandidates(a, b domain.Properties) int {
	if c := compareVersions(b.Version, a.Version); c != 0 {
		return c
	}
	if c := strings.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if c := compareVersions(b.SourceVersion, a.SourceVersion); c != 0 {
		return c
	}
	if c := compareDepth(a.FetchIdData.RefererInfo.NumIframes, b.FetchIdData.RefererInfo.NumIframes); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// compareVersions orders semantic versions written with or without the v prefix. Invalid versions
// are lower than any valid one.
func compareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

func canonical(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

func compareDepth(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
