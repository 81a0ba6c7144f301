// Package clock abstracts time for components with expiry semantics.
package clock

import "time"

// Clock supplies the current time. The cache and throttle take one so tests
// can drive TTL and window expiry without sleeping.
type Clock interface {
	Now() time.Time
}
