package countdown

import "fmt"

// RateLimitedError is a 429 seen by the client. RetryAfter is nil when the
// server had no numeric hint.
type RateLimitedError struct {
	Message    string
	RetryAfter *int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("%s (retry in %s)", e.message(), FormatDuration(*e.RetryAfter))
	}
	return e.message()
}

func (e *RateLimitedError) message() string {
	if e.Message == "" {
		return "rate limit exceeded"
	}
	return e.Message
}

// PaymentRequiredError is a 402 seen by the client. It never starts a countdown.
type PaymentRequiredError struct {
	Message string
}

func (e *PaymentRequiredError) Error() string {
	if e.Message == "" {
		return "AI credits depleted"
	}
	return e.Message
}

// FormatDuration renders seconds for display: "45 seconds", "2 minutes", "1m 30s".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return plural(seconds, "second")
	case seconds%60 == 0:
		return plural(seconds/60, "minute")
	default:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
