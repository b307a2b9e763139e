// Package token issues and verifies the HS256 bearer credentials carried
// between clients and the gateway.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock replaces time.Now, tests use it to move across expiry.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

func applyOptions(opts []Option) settings {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}

	return s
}
