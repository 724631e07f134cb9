package domain

import "time"

// Role defines the permission level carried by a token
type Role string

const (
	RoleAdmin  Role = "admin"  // Start and reset embedding jobs
	RoleViewer Role = "viewer" // Read job state and request recommendations
)

// IsValid returns true if this is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// AuthContext contains authenticated caller info for request context
type AuthContext struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
	TokenID string `json:"token_id"`
}

// IsAdmin checks if the caller is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	Subject   string `json:"sub"`
	Role      Role   `json:"role"`
	TokenID   string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// IssuedToken is returned after minting a token
type IssuedToken struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
