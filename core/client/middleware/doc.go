// Package middleware provides composable interceptors for the facade
// client's generate, stream, and embed paths: retry with exponential
// backoff, per-request timeouts that cover whole stream lifetimes, and
// structured request logging. The chain types defined here are also the
// extension point for caller-supplied middleware.
package middleware
