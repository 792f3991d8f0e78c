package cluster

import (
	"fmt"
	"path"
	"time"

	"media-dedup/internal/hashing"
	"media-dedup/internal/metrics"
	"media-dedup/internal/store"
)

// Thresholds are the per-family maximum Hamming distances for
// near-duplicate matching. Values are clamped into [1, 32]; with 64-bit
// fingerprints anything beyond 32 matches essentially everything.
type Thresholds struct {
	AHash int `json:"ahash" yaml:"ahash"`
	DHash int `json:"dhash" yaml:"dhash"`
	PHash int `json:"phash" yaml:"phash"`
}

// DefaultThresholds returns the tuned defaults: the DCT hash is the most
// discriminating so it gets the tightest bound.
func DefaultThresholds() Thresholds {
	return Thresholds{AHash: 10, DHash: 10, PHash: 8}
}

// Clamp returns the thresholds with every family forced into [1, 32].
func (t Thresholds) Clamp() Thresholds {
	clamp := func(v int) int {
		if v < 1 {
			return 1
		}
		if v > 32 {
			return 32
		}
		return v
	}
	return Thresholds{AHash: clamp(t.AHash), DHash: clamp(t.DHash), PHash: clamp(t.PHash)}
}

// NotCompared marks a distance where one or both sides had no
// fingerprint for that family.
const NotCompared = -1

// SimilarMember is one file in a near-duplicate group, annotated with its
// per-family distances to the group representative.
type SimilarMember struct {
	File store.FileRecord `json:"file"`

	AHashDistance int `json:"ahashDistance"`
	DHashDistance int `json:"dhashDistance"`
	PHashDistance int `json:"phashDistance"`

	// ConfidencePercent inverts the mean compared-family distance into
	// [0, 99.99]; identical fingerprints score just under 100.
	ConfidencePercent float64 `json:"confidencePercent"`
}

// SimilarGroup is a connected component of the near-duplicate graph. The
// first member is the representative the distances refer to.
type SimilarGroup struct {
	// Label is a human-readable summary, e.g.
	// "Similar group (2 files) - beach.jpg".
	Label string          `json:"label"`
	Files []SimilarMember `json:"files"`
}

// SimilarGroups clusters files whose perceptual fingerprints fall within
// the given thresholds and returns the requested page of groups.
//
// Two files are linked when every comparable family passes its threshold:
// a family present on both sides must be within distance, a family
// present on only one side fails the pair outright, and a family absent
// on both sides is ignored. A pair with no comparable family at all never
// links. Groups are the connected components of size >= 2, ordered by
// their first member's position in the input, which makes the result
// deterministic for id-ordered input.
func SimilarGroups(files []store.FileRecord, t Thresholds, limit, offset int) []SimilarGroup {
	start := time.Now()
	defer func() {
		metrics.ClusterQueryDuration.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	}()

	t = t.Clamp()

	// Only fingerprinted files can participate.
	candidates := make([]store.FileRecord, 0, len(files))
	for _, f := range files {
		if f.HasFingerprints() {
			candidates = append(candidates, f)
		}
	}

	parent := make([]int, len(candidates))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if linked(&candidates[i], &candidates[j], t) {
				union(i, j)
			}
		}
	}

	// Components in first-seen order.
	componentOf := make(map[int][]int)
	var order []int
	for i := range candidates {
		root := find(i)
		if _, seen := componentOf[root]; !seen {
			order = append(order, root)
		}
		componentOf[root] = append(componentOf[root], i)
	}

	var groups []SimilarGroup
	for _, root := range order {
		indices := componentOf[root]
		if len(indices) < 2 {
			continue
		}

		rep := &candidates[indices[0]]
		members := make([]SimilarMember, 0, len(indices))
		for _, idx := range indices {
			members = append(members, annotate(rep, &candidates[idx]))
		}

		groups = append(groups, SimilarGroup{
			Label: fmt.Sprintf("Similar group (%d files) - %s", len(members), path.Base(rep.Path)),
			Files: members,
		})
	}

	metrics.ClusterGroupsFound.WithLabelValues("similar").Set(float64(len(groups)))
	return pageOf(groups, clampGroupLimit(limit, MaxSimilarGroupLimit), clampGroupOffset(offset))
}

// familyDistance compares one fingerprint family across a pair.
// Returns NotCompared when absent on both sides, or a negative failure
// marker below when present on only one side.
const oneSided = -2

func familyDistance(a, b *uint64) int {
	switch {
	case a == nil && b == nil:
		return NotCompared
	case a == nil || b == nil:
		return oneSided
	default:
		return hashing.Hamming(*a, *b)
	}
}

func linked(a, b *store.FileRecord, t Thresholds) bool {
	compared := false
	for _, family := range []struct {
		dist      int
		threshold int
	}{
		{familyDistance(a.AHash, b.AHash), t.AHash},
		{familyDistance(a.DHash, b.DHash), t.DHash},
		{familyDistance(a.PHash, b.PHash), t.PHash},
	} {
		switch {
		case family.dist == NotCompared:
		case family.dist == oneSided:
			return false
		case family.dist > family.threshold:
			return false
		default:
			compared = true
		}
	}
	return compared
}

func annotate(rep, f *store.FileRecord) SimilarMember {
	m := SimilarMember{
		File:          *f,
		AHashDistance: publicDistance(familyDistance(rep.AHash, f.AHash)),
		DHashDistance: publicDistance(familyDistance(rep.DHash, f.DHash)),
		PHashDistance: publicDistance(familyDistance(rep.PHash, f.PHash)),
	}

	sum, n := 0, 0
	for _, d := range []int{m.AHashDistance, m.DHashDistance, m.PHashDistance} {
		if d >= 0 {
			sum += d
			n++
		}
	}
	if n > 0 {
		confidence := (1 - float64(sum)/float64(n)/float64(hashing.FingerprintBits)) * 100
		if confidence > 99.99 {
			confidence = 99.99
		}
		if confidence < 0 {
			confidence = 0
		}
		m.ConfidencePercent = confidence
	}
	return m
}

// publicDistance collapses the internal one-sided marker into
// NotCompared for reporting.
func publicDistance(d int) int {
	if d < 0 {
		return NotCompared
	}
	return d
}
