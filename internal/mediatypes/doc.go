// Package mediatypes provides file classification shared across the
// scanning and hashing pipeline.
//
// It exists as a dependency-free foundation that can be imported by any
// other package without creating import cycles: primitive types,
// extension tables, and pure utility functions with no dependencies
// beyond the standard library.
//
// Classification is extension-first with a magic-byte sniff fallback:
//
//	t := mediatypes.Classify(path)
//	switch t {
//	case mediatypes.FileTypeImage:
//	    // decode and fingerprint once
//	case mediatypes.FileTypeVideo:
//	    // sample frames before fingerprinting
//	}
package mediatypes
