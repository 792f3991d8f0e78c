// Package webapi serves the catalog over HTTP as read-mostly JSON: file
// listings, exact and similar duplicate groups, fileset metadata, and
// video snapshot fingerprints, plus health and Prometheus endpoints.
package webapi
