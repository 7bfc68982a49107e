package client

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Runtime tuning defaults. Each can be overridden process-wide through the
// corresponding MODELFLOW_* environment variable, or per client through
// options.
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultMaxRetries     = 2
	DefaultRetryBackoff   = 250 * time.Millisecond
)

const (
	requestTimeoutEnv = "MODELFLOW_REQUEST_TIMEOUT_SECS"
	connectTimeoutEnv = "MODELFLOW_CONNECT_TIMEOUT_SECS"
	maxRetriesEnv     = "MODELFLOW_MAX_RETRIES"
	retryBackoffEnv   = "MODELFLOW_RETRY_BACKOFF_MS"
)

// RuntimeConfig carries the transport tuning resolved for one client.
type RuntimeConfig struct {
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// resolveRuntimeConfig reads the MODELFLOW_* environment variables, falling
// back to the package defaults. Malformed or non-positive values are
// construction-time errors rather than silently ignored configuration.
func resolveRuntimeConfig() (RuntimeConfig, error) {
	requestTimeoutSecs, err := parsePositiveIntEnv(requestTimeoutEnv, int(DefaultRequestTimeout/time.Second))
	if err != nil {
		return RuntimeConfig{}, err
	}

	connectTimeoutSecs, err := parsePositiveIntEnv(connectTimeoutEnv, int(DefaultConnectTimeout/time.Second))
	if err != nil {
		return RuntimeConfig{}, err
	}

	retryBackoffMillis, err := parsePositiveIntEnv(retryBackoffEnv, int(DefaultRetryBackoff/time.Millisecond))
	if err != nil {
		return RuntimeConfig{}, err
	}

	maxRetries, err := parseNonNegativeIntEnv(maxRetriesEnv, DefaultMaxRetries)
	if err != nil {
		return RuntimeConfig{}, err
	}

	return RuntimeConfig{
		RequestTimeout: time.Duration(requestTimeoutSecs) * time.Second,
		ConnectTimeout: time.Duration(connectTimeoutSecs) * time.Second,
		MaxRetries:     maxRetries,
		RetryBackoff:   time.Duration(retryBackoffMillis) * time.Millisecond,
	}, nil
}

func parsePositiveIntEnv(name string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero, got %d", name, parsed)
	}

	return parsed, nil
}

func parseNonNegativeIntEnv(name string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, raw)
	}

	return parsed, nil
}

// newHTTPClient builds the default transport with the configured connect
// timeout. The overall request deadline is enforced by the timeout
// middleware rather than http.Client.Timeout, so streaming bodies can
// outlive the time to first byte.
func newHTTPClient(connectTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}
