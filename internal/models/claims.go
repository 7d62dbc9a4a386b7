package models

import "github.com/golang-jwt/jwt/v5"

// RealmAccess carries realm-level roles from the identity provider.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// ResourceAccess carries per-client roles from the identity provider.
type ResourceAccess struct {
	Roles []string `json:"roles"`
}

// Claims is the verified token payload injected by the upstream auth
// middleware. The core only reads identity fields from it; verification
// itself happens before the request reaches any handler.
type Claims struct {
	Subject           string                    `json:"sub"`
	Email             string                    `json:"email,omitempty"`
	Name              string                    `json:"name,omitempty"`
	PreferredUsername string                    `json:"preferred_username,omitempty"`
	GivenName         string                    `json:"given_name,omitempty"`
	FamilyName        string                    `json:"family_name,omitempty"`
	RealmAccess       *RealmAccess              `json:"realm_access,omitempty"`
	ResourceAccess    map[string]ResourceAccess `json:"resource_access,omitempty"`
	Scope             string                    `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Username prefers the preferred_username claim, falling back to name.
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Name
}

// UserID is the token subject.
func (c *Claims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
