package cluster

import (
	"fmt"
	"sort"
	"time"

	"media-dedup/internal/metrics"
	"media-dedup/internal/store"
)

// Group pagination bounds. Similar-group queries are capped lower than
// exact ones: each similar group carries per-member distance annotations
// and the query behind it is quadratic.
const (
	MaxExactGroupLimit   = 10_000
	MaxSimilarGroupLimit = 2_000
	MaxGroupOffset       = 10_000_000
)

// ExactGroup is a set of files with byte-identical content, keyed by a
// shared strong hash.
type ExactGroup struct {
	// Label is a human-readable summary, e.g.
	// "Exact group (3 files) - 4f2a91c80be1".
	Label string `json:"label"`
	// Key identifies the shared hash, "blake3:<hex>" or "sha256:<hex>".
	Key   string             `json:"key"`
	Files []store.FileRecord `json:"files"`
}

// ExactGroups clusters files by strong-hash equality and returns the
// requested page of groups. Files group by blake3 when present, falling
// back to sha256; files with neither hash (unreadable or inventory-only
// records) never group. Only groups of two or more files are returned.
//
// Group order is deterministic: ascending by key. Members keep the id
// order of the input. Pagination slices the group list, so a group is
// never split across pages.
func ExactGroups(files []store.FileRecord, limit, offset int) []ExactGroup {
	start := time.Now()
	defer func() {
		metrics.ClusterQueryDuration.WithLabelValues("exact").Observe(time.Since(start).Seconds())
	}()

	byKey := make(map[string][]store.FileRecord)
	for _, f := range files {
		var key string
		switch {
		case f.Blake3 != "":
			key = "blake3:" + f.Blake3
		case f.Sha256 != "":
			key = "sha256:" + f.Sha256
		default:
			continue
		}
		byKey[key] = append(byKey[key], f)
	}

	keys := make([]string, 0, len(byKey))
	for key, members := range byKey {
		if len(members) >= 2 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	groups := make([]ExactGroup, 0, len(keys))
	for _, key := range keys {
		members := byKey[key]
		groups = append(groups, ExactGroup{
			Label: fmt.Sprintf("Exact group (%d files) - %s", len(members), shortHash(key)),
			Key:   key,
			Files: members,
		})
	}

	metrics.ClusterGroupsFound.WithLabelValues("exact").Set(float64(len(groups)))
	return pageOf(groups, clampGroupLimit(limit, MaxExactGroupLimit), clampGroupOffset(offset))
}

// shortHash takes the first 12 hex digits after the "algo:" prefix.
func shortHash(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			hex := key[i+1:]
			if len(hex) > 12 {
				hex = hex[:12]
			}
			return hex
		}
	}
	return key
}

func clampGroupLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

func clampGroupOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > MaxGroupOffset {
		return MaxGroupOffset
	}
	return offset
}

func pageOf[T any](groups []T, limit, offset int) []T {
	if offset >= len(groups) {
		return nil
	}
	end := offset + limit
	if end > len(groups) {
		end = len(groups)
	}
	return groups[offset:end]
}
