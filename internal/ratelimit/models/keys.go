package models

import "strings"

// Client key prefixes. Identity-based keys take strict precedence over
// IP-based keys: a logged-in user is never counted by IP.
const (
	ClientKeyUserPrefix    = "user_"
	ClientKeyIPPrefix      = "ip_"
	ClientKeyUnknownClient = "ip_unknown"
)

// SanitizeKeySegment escapes delimiter characters in key segments to prevent
// collision attacks where a user-controlled identifier containing ':' could
// manipulate an adjacent counter bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// UserClientKey builds the client key for an authenticated identity.
func UserClientKey(userID string) string {
	return ClientKeyUserPrefix + SanitizeKeySegment(userID)
}

// IPClientKey builds the client key for an unauthenticated caller.
// Empty or unresolvable addresses collapse into one shared bucket, which is
// deliberately conservative.
func IPClientKey(ip string) string {
	if ip == "" || ip == "unknown" {
		return ClientKeyUnknownClient
	}
	return ClientKeyIPPrefix + SanitizeKeySegment(ip)
}

// CounterKey builds the counter store key for a (class, client) pair.
// Counters are scoped per route class so a burst against search does not
// consume the auth quota.
func CounterKey(class RouteClass, clientKey string) string {
	return "rl:" + string(class) + ":" + clientKey
}
