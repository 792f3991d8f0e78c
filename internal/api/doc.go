// Package api is the boundary adapter for front-ends: a handle table
// mapping opaque numeric handles to engines and cancel tokens, coarse
// Status codes, and a last-error message overwritten on every fallible
// call.
//
// Handles have single-owner destroy-once semantics. Using a handle after
// destroying it is caller error and reports StatusNullHandle, never a
// silent success. Group listings come back as label-plus-bounds views
// over a flattened row slice, mirroring how out-of-process callers
// consume them.
package api
