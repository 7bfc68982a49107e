// Package utils contains internal HTTP and string helpers shared by the
// provider adapters: generic JSON POST round trips, SSE stream reading with
// frame reassembly, typed transport error classification, and truncation
// helpers for safe log output.
package utils
