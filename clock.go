package grant

import "time"

// Clock is a seconds-since-epoch time source. It exists so that issuance and
// expiry checks are testable without sleeping and so that absolute expiry
// timestamps agree across processes sharing a Backend.
type Clock interface {
	// Now returns the current time as seconds since the Unix epoch.
	Now() int64
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// nowPlus returns c.Now() + deltaSeconds, the absolute expiry timestamp for
// an artifact with the given relative ttl.
func nowPlus(c Clock, deltaSeconds int64) int64 {
	return c.Now() + deltaSeconds
}
