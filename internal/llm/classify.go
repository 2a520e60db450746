package llm

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// unixTimestampFloor separates "seconds from now" from "Unix time" in reset headers.
const unixTimestampFloor = 1_000_000_000

// Classify maps an upstream HTTP status to a Result. First match wins:
// 2xx, 429, 402, then everything else.
func Classify(status int, header http.Header, body []byte) Result {
	switch {
	case status >= 200 && status < 300:
		return Success{Body: body}
	case status == http.StatusTooManyRequests:
		return RateLimited{RetryAfterSeconds: RetryAfter(header, time.Now())}
	case status == http.StatusPaymentRequired:
		return PaymentRequired{}
	default:
		return UpstreamFailure{Status: status, Body: body}
	}
}

// RetryAfter reads a numeric wait hint from Retry-After, falling back to
// X-RateLimit-Reset. Reset values above unixTimestampFloor are treated as a Unix
// time and converted to seconds from now. Missing, non-numeric or out-of-range
// values yield nil.
func RetryAfter(header http.Header, now time.Time) *int {
	if header == nil {
		return nil
	}
	if secs, ok := parseSeconds(header.Get("Retry-After")); ok {
		return &secs
	}
	raw := header.Get("X-RateLimit-Reset")
	secs, ok := parseSeconds(raw)
	if !ok {
		return nil
	}
	if secs > unixTimestampFloor {
		secs = int(math.Ceil(time.Unix(int64(secs), 0).Sub(now).Seconds()))
		if secs < 0 {
			secs = 0
		}
	}
	return &secs
}

func parseSeconds(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Ceil(f)), true
}
