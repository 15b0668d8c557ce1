package models

import "time"

// RouteClass categorizes endpoints for differentiated rate limiting.
type RouteClass string

const (
	// ClassAuth: login/register/token endpoints, tightest limits.
	ClassAuth RouteClass = "auth"
	// ClassMedia: media detail, playback and listing endpoints.
	ClassMedia RouteClass = "media"
	// ClassSearch: search endpoints, expensive upstream queries.
	ClassSearch RouteClass = "search"
	// ClassUser: profile, history and preference endpoints.
	ClassUser RouteClass = "user"
	// ClassAdmin: admin tooling endpoints.
	ClassAdmin RouteClass = "admin"
	// ClassDefault applies to any path not matched by another class.
	ClassDefault RouteClass = "default"
)

// IsValid checks if the route class is one of the supported enum values.
func (c RouteClass) IsValid() bool {
	switch c {
	case ClassAuth, ClassMedia, ClassSearch, ClassUser, ClassAdmin, ClassDefault:
		return true
	}
	return false
}

// Role identifies the caller tier used to scale the effective request limit.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RolePremium   Role = "premium"
	RoleAdmin     Role = "admin"
)

// Decision represents the outcome of an admission check.
type Decision struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
	Bypassed   bool      `json:"bypassed,omitempty"`    // allow-listed path or IP
}

// ReasonRateLimitExceeded is the machine-readable reason code carried on
// quota rejections.
const ReasonRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

// RateLimitExceededResponse is the API response when a quota is exhausted.
type RateLimitExceededResponse struct {
	StatusCode int    `json:"statusCode"` // always 429
	Message    string `json:"message"`    // policy-configured rejection text
	Error      string `json:"error"`      // ReasonRateLimitExceeded
	RetryAfter int    `json:"retryAfter"` // seconds
}
