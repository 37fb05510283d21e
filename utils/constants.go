// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries. User
// writes invalidate the entry, so this only bounds staleness after a missed
// invalidation.
const AuthCacheTTL = 10 * time.Minute

// Context keys set by the auth middleware.
const (
	CurrentUserKey = "currentUser"
	TokenTypeKey   = "tokenType"
)

// Token types carried in the X-Token-Type header.
const (
	TokenTypeHeader   = "X-Token-Type"
	TokenTypeSession  = "session"
	TokenTypeFirebase = "firebase"
)
