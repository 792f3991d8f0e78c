// Package cluster computes duplicate groupings over cataloged file
// records. Exact groups key on strong-hash equality; similar groups are
// connected components of the pairwise fingerprint-distance graph under
// caller-supplied Hamming thresholds.
//
// Nothing here is persisted. Clustering runs fresh per query over the
// already-cataloged population, so threshold changes take effect without
// a re-scan. Pagination always slices the group list, never the
// flattened membership, so no group is ever split across pages.
package cluster
