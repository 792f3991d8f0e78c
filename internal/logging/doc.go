// Package logging provides leveled logging for the dedup engine, CLI,
// and query server.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//
// The log level is configured via the LOG_LEVEL environment variable;
// setting DEBUG to a truthy value forces debug output.
package logging
