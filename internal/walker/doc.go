// Package walker enumerates media trees. Prescan does a cheap counting
// pass used to calibrate progress reporting; Walk does the full pass,
// handing every regular file to the caller in deterministic
// lexicographic order. Both honor cooperative cancellation and treat
// unreadable entries as skips rather than failures.
package walker
