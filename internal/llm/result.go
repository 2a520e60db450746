package llm

import "fmt"

// Result is the classified outcome of one upstream call. It is a closed union:
// exactly one of Success, ClientError, RateLimited, PaymentRequired or UpstreamFailure.
type Result interface {
	isResult()
}

// Success carries the raw 2xx response body.
type Success struct {
	Body []byte
}

// ClientError is a request rejected before it reached the provider.
// Classify never produces it.
type ClientError struct {
	Status  int
	Details string
}

// RateLimited is a 429 from the provider. RetryAfterSeconds is nil when the
// provider gave no usable numeric hint.
type RateLimited struct {
	RetryAfterSeconds *int
}

// PaymentRequired is a 402 from the provider: credits are exhausted.
type PaymentRequired struct{}

// UpstreamFailure is any other non-2xx status, or a transport failure (Status 0).
// Body and Err are for logs only.
type UpstreamFailure struct {
	Status int
	Body   []byte
	Err    error
}

func (Success) isResult()         {}
func (ClientError) isResult()     {}
func (RateLimited) isResult()     {}
func (PaymentRequired) isResult() {}
func (UpstreamFailure) isResult() {}

func (f UpstreamFailure) String() string {
	if f.Err != nil {
		return fmt.Sprintf("upstream failure (status %d): %v", f.Status, f.Err)
	}
	return fmt.Sprintf("upstream failure (status %d)", f.Status)
}
