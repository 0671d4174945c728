// File: utils/constants.go
package utils

import "time"

// SessionKeyPrefix is the prefix used for Redis conversation session keys.
const SessionKeyPrefix = "chat:session:"

// DefaultSessionTTL applies when SESSION_TTL_MINUTES is not positive.
const DefaultSessionTTL = 30 * time.Minute

// StaffTokenTTL is the lifetime of staff bearer tokens.
const StaffTokenTTL = 12 * time.Hour
