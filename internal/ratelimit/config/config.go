// Package config holds the static admission policy tables. Policies are loaded
// once at startup and never mutated afterwards; the admin surface exposes a
// read-only snapshot.
package config

import (
	"math"
	"strings"
	"time"

	"streamgate/internal/ratelimit/models"
)

// Policy defines the fixed-window quota for one route class.
type Policy struct {
	Window      time.Duration
	MaxRequests int
	Message     string
}

// Config is the full admission configuration: one policy per route class,
// a role multiplier table, and the bypass lists.
type Config struct {
	Policies        map[models.RouteClass]Policy
	RoleMultipliers map[models.Role]float64
	// ExemptPaths bypass admission entirely, with no counter mutation.
	ExemptPaths []string
	// ExemptPathPrefixes bypass admission for whole subtrees (e.g. /docs).
	ExemptPathPrefixes []string
	// AllowlistedIPs bypass counting but still receive quota headers.
	AllowlistedIPs map[string]bool
}

// DefaultConfig returns the production policy table.
func DefaultConfig() *Config {
	return &Config{
		Policies: map[models.RouteClass]Policy{
			models.ClassAuth: {
				Window:      time.Minute,
				MaxRequests: 10,
				Message:     "Too many authentication attempts. Please try again later.",
			},
			models.ClassMedia: {
				Window:      time.Minute,
				MaxRequests: 100,
				Message:     "Too many media requests. Please slow down.",
			},
			models.ClassSearch: {
				Window:      time.Minute,
				MaxRequests: 30,
				Message:     "Too many search requests. Please slow down.",
			},
			models.ClassUser: {
				Window:      time.Minute,
				MaxRequests: 60,
				Message:     "Too many profile requests. Please slow down.",
			},
			models.ClassAdmin: {
				Window:      time.Minute,
				MaxRequests: 30,
				Message:     "Too many admin requests. Please slow down.",
			},
			models.ClassDefault: {
				Window:      time.Minute,
				MaxRequests: 60,
				Message:     "Too many requests. Please try again later.",
			},
		},
		RoleMultipliers: map[models.Role]float64{
			models.RoleAnonymous: 1.0,
			models.RoleUser:      1.0,
			models.RolePremium:   2.0,
			models.RoleAdmin:     5.0,
		},
		ExemptPaths: []string{
			"/api/health",
			"/metrics",
		},
		ExemptPathPrefixes: []string{
			"/docs",
		},
		AllowlistedIPs: map[string]bool{},
	}
}

// GetPolicy returns the policy for a route class.
func (c *Config) GetPolicy(class models.RouteClass) (Policy, bool) {
	p, ok := c.Policies[class]
	return p, ok
}

// EffectiveLimit applies the role multiplier to a policy's base limit,
// rounding to the nearest integer. Unknown roles fall back to 1.0.
func (c *Config) EffectiveLimit(p Policy, role models.Role) int {
	multiplier, ok := c.RoleMultipliers[role]
	if !ok {
		multiplier = 1.0
	}
	limit := int(math.Round(float64(p.MaxRequests) * multiplier))
	if limit < 1 {
		limit = 1
	}
	return limit
}

// IsPathExempt reports whether a path bypasses admission entirely.
func (c *Config) IsPathExempt(path string) bool {
	for _, p := range c.ExemptPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range c.ExemptPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsIPAllowlisted reports whether an IP bypasses counting.
func (c *Config) IsIPAllowlisted(ip string) bool {
	return c.AllowlistedIPs[ip]
}
