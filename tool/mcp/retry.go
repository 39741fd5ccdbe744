package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RicardoNiepel/frontier-agents-workshop/log"
)

// isRetryableError determines if an error is worth retrying. Only transient
// transport failures qualify; logical failures reported by the server never
// do.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network connection errors - use precise matching to avoid false positives
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection timeout") ||
		strings.Contains(errStr, "connection lost") ||
		strings.Contains(errStr, "connection aborted") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "read timeout") ||
		strings.Contains(errStr, "write timeout") ||
		strings.Contains(errStr, "dial timeout") ||
		errStr == "eof" ||
		strings.HasSuffix(errStr, ": eof") {
		return true
	}

	return isHTTPStatusRetryable(errStr)
}

// isHTTPStatusRetryable checks if an error contains a retryable HTTP status
// code. Uses precise patterns to avoid false positives (e.g. "port 5001"
// must not match "501").
func isHTTPStatusRetryable(errStr string) bool {
	// Retryable status codes: 408, 409, 429, 5xx.
	retryableCodes := []string{
		"408", "409", "429",
		"500", "501", "502", "503", "504", "505", "506", "507", "508", "509", "510", "511",
	}

	for _, code := range retryableCodes {
		if strings.Contains(errStr, "http "+code) ||
			strings.Contains(errStr, "status "+code) ||
			strings.Contains(errStr, "status: "+code) ||
			strings.Contains(errStr, "code "+code) ||
			strings.Contains(errStr, "code: "+code) ||
			strings.Contains(errStr, code+" ") {
			return true
		}
	}

	return false
}

// executeWithRetry executes an operation with exponential backoff retry.
func executeWithRetry(
	ctx context.Context,
	retryConfig RetryConfig,
	operation func() (any, error),
	operationName string,
) (any, error) {
	if retryConfig.MaxRetries <= 0 {
		return operation()
	}

	var lastErr error
	backoff := retryConfig.InitialBackoff

	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		result, err := operation()
		if err == nil {
			if attempt > 0 {
				log.Debugf("Operation %s succeeded after %d attempts",
					operationName, attempt+1)
			}
			return result, nil
		}

		if !isRetryableError(err) {
			return nil, err
		}

		lastErr = err
		if attempt >= retryConfig.MaxRetries {
			break
		}

		log.Debugf("Retryable error in %s (attempt %d/%d, backoff %v): %v",
			operationName, attempt+1, retryConfig.MaxRetries+1, backoff, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("operation cancelled during retry backoff: %w", ctx.Err())
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * retryConfig.BackoffFactor)
			if backoff > retryConfig.MaxBackoff {
				backoff = retryConfig.MaxBackoff
			}
		}
	}

	log.Errorf("All %d attempts exhausted for %s: %v",
		retryConfig.MaxRetries+1, operationName, lastErr)
	return nil, lastErr
}
