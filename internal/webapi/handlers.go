package webapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"media-dedup/internal/cluster"
	"media-dedup/internal/logging"
	"media-dedup/internal/store"
)

// ListFiles returns cataloged rows, optionally restricted to files whose
// strong hash appears more than once.
//
// Query parameters: duplicates_only, limit, offset.
func (s *Server) ListFiles(w http.ResponseWriter, r *http.Request) {
	duplicatesOnly, err := queryBool(r, "duplicates_only")
	if err != nil {
		writeJSONError(w, "invalid duplicates_only parameter", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeJSONError(w, "invalid limit parameter", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSONError(w, "invalid offset parameter", http.StatusBadRequest)
		return
	}

	files, err := s.store.ListFiles(r.Context(), duplicatesOnly, limit, offset)
	if err != nil {
		logging.Error("list files failed: %v", err)
		writeJSONError(w, "failed to list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// DeleteFile removes a row from the catalog by its relative path. The
// file on disk is untouched. Deleting an unknown path succeeds with a
// zero count.
func (s *Server) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path parameter is required", http.StatusBadRequest)
		return
	}

	n, err := s.store.DeleteFileByPath(r.Context(), path)
	if err != nil {
		logging.Error("delete file %s failed: %v", path, err)
		writeJSONError(w, "failed to delete file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{"deleted": n})
}

// ExactGroups returns groups of byte-identical files.
//
// Query parameters: limit, offset (both count groups, not rows).
func (s *Server) ExactGroups(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeJSONError(w, "invalid limit parameter", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSONError(w, "invalid offset parameter", http.StatusBadRequest)
		return
	}

	files, err := s.store.ListAllFiles(r.Context())
	if err != nil {
		logging.Error("load catalog for exact grouping failed: %v", err)
		writeJSONError(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	groups := cluster.ExactGroups(files, limit, offset)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}

// SimilarGroups returns connected components of perceptually similar
// files.
//
// Query parameters: ahash, dhash, phash (Hamming distance thresholds,
// clamped to [1, 32]), limit, offset (both count groups).
func (s *Server) SimilarGroups(w http.ResponseWriter, r *http.Request) {
	thresholds := cluster.DefaultThresholds()
	var err error
	if thresholds.AHash, err = queryInt(r, "ahash", thresholds.AHash); err != nil {
		writeJSONError(w, "invalid ahash parameter", http.StatusBadRequest)
		return
	}
	if thresholds.DHash, err = queryInt(r, "dhash", thresholds.DHash); err != nil {
		writeJSONError(w, "invalid dhash parameter", http.StatusBadRequest)
		return
	}
	if thresholds.PHash, err = queryInt(r, "phash", thresholds.PHash); err != nil {
		writeJSONError(w, "invalid phash parameter", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeJSONError(w, "invalid limit parameter", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeJSONError(w, "invalid offset parameter", http.StatusBadRequest)
		return
	}

	files, err := s.store.ListAllFiles(r.Context())
	if err != nil {
		logging.Error("load catalog for similarity grouping failed: %v", err)
		writeJSONError(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	groups := cluster.SimilarGroups(files, thresholds, limit, offset)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"groups":     groups,
		"count":      len(groups),
		"thresholds": thresholds.Clamp(),
	})
}

// GetMetadata returns the fileset's descriptive metadata.
func (s *Server) GetMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.GetFilesetMetadata(r.Context())
	if err != nil {
		logging.Error("get fileset metadata failed: %v", err)
		writeJSONError(w, "failed to get metadata", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, meta)
}

// PutMetadata overwrites the fileset metadata wholesale, status
// included; a body that omits a field clears it. Only the creation
// time is immutable.
func (s *Server) PutMetadata(w http.ResponseWriter, r *http.Request) {
	var meta store.FilesetMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeJSONError(w, "invalid metadata body", http.StatusBadRequest)
		return
	}

	if err := s.store.SetFilesetMetadata(r.Context(), &meta); err != nil {
		logging.Error("set fileset metadata failed: %v", err)
		writeJSONError(w, "failed to set metadata", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, "ok")
}

// ListSnapshots returns the sampled frame fingerprints for one video.
// An uncataloged path yields an empty list, not an error.
func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path parameter is required", http.StatusBadRequest)
		return
	}

	snaps, err := s.store.ListSnapshotsByPath(r.Context(), path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			snaps = []store.SnapshotRecord{}
		} else {
			logging.Error("list snapshots for %s failed: %v", path, err)
			writeJSONError(w, "failed to list snapshots", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"snapshots": snaps,
		"count":     len(snaps),
	})
}
