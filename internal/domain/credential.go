package domain

import "time"

// Credential is a read-only copy of one platform's bearer token. The
// authoritative copy lives in the external credential store; the worker
// never persists tokens itself.
type Credential struct {
	Platform     Platform
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

func (c *Credential) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt)
}

func (c *Credential) Refreshable() bool {
	return c.RefreshToken != ""
}
