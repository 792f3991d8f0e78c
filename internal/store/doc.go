// Package store is the SQLite persistence layer for the dedup catalog.
//
// The schema has three tables: files (one row per cataloged file, keyed
// by relative path with a stable autoincrement id), file_snapshots
// (per-frame video fingerprints, cascading on file deletion), and the
// fileset singleton describing the catalog as a whole.
//
// The database runs in WAL mode so the scan's single writer never blocks
// readers. Every scan write is transactional per file: a file row and its
// snapshots land together or not at all.
package store
