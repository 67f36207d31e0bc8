package wherrors

import "strings"

// containsAnyPattern reports whether the lowercased error message contains
// any of the given substrings, ported from the teacher's pattern-matching
// error classifiers.
func containsAnyPattern(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err looks like a provider rate-limit
// response, regardless of which adapter (LLM, embedding, broker) raised it.
func IsRateLimited(err error) bool {
	return containsAnyPattern(err, []string{"rate limit", "rate_limit", "429", "too many requests"})
}

// IsTimeout reports whether err looks like a transport or context deadline
// timeout.
func IsTimeout(err error) bool {
	return containsAnyPattern(err, []string{
		"timeout", "timed out", "deadline exceeded", "context deadline exceeded", "408", "504",
	})
}

// IsOverloaded reports whether the remote service reported itself as
// overloaded or temporarily unavailable.
func IsOverloaded(err error) bool {
	return containsAnyPattern(err, []string{"overloaded", "resource_exhausted", "service unavailable", "503"})
}

// IsServerError reports whether err looks like a 5xx-class provider error.
func IsServerError(err error) bool {
	return containsAnyPattern(err, []string{"500", "502", "internal server error", "bad gateway"})
}

// IsAuthError reports whether err looks like an authentication failure.
func IsAuthError(err error) bool {
	return containsAnyPattern(err, []string{"401", "unauthorized", "invalid api key", "invalid_api_key", "authentication"})
}

// ClassifyTransient inspects a raw adapter error (LLM, embedding, broker,
// SQL, vector backend) and wraps it as transient I/O if it matches a known
// retryable shape, leaving unrecognized errors unwrapped for the caller to
// classify by other means.
func ClassifyTransient(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case IsRateLimited(err), IsTimeout(err), IsOverloaded(err), IsServerError(err):
		return New(KindTransientIO, err)
	default:
		return err
	}
}
