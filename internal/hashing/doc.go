// Package hashing provides the content-identity and perceptual-similarity
// primitives used by the scan pipeline.
//
// Strong hashes (BLAKE3 + SHA-256, computed in one streaming pass) decide
// exact duplication: equal digest means identical bytes. Perceptual
// fingerprints (average, difference, and DCT perception hash; 64 bits
// each) decide visual similarity: small Hamming distance means similar
// pixels.
//
// All functions are pure and stateless.
package hashing
