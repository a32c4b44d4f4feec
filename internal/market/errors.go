package market

import "fmt"

// FailureKind classifies why a catalog fetch failed. The classification is
// advisory metadata for diagnostics, not a control path.
type FailureKind string

const (
	// KindTimeout means the request or retry budget timed out.
	KindTimeout FailureKind = "timeout"
	// KindTLS means certificate verification failed.
	KindTLS FailureKind = "tls"
	// KindForbidden means the service answered 403.
	KindForbidden FailureKind = "forbidden"
	// KindNotFound means the service answered 404.
	KindNotFound FailureKind = "not_found"
	// KindBadPayload means a 2xx response was not the expected entry array.
	KindBadPayload FailureKind = "bad_payload"
	// KindTransport covers every other network or HTTP failure.
	KindTransport FailureKind = "transport"
)

// FetchError describes a failed catalog fetch with its classified cause.
type FetchError struct {
	Err        error
	Kind       FailureKind
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog fetch failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
