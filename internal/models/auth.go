package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens, user info, and resolved role hats.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	Hats         []RoleHat `json:"hats"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	// SiswaID / GuruID link the account to its profile row when applicable.
	SiswaID *string `json:"siswa_id,omitempty"`
	GuruID  *string `json:"guru_id,omitempty"`
}

// JWTClaims is the access token payload. Role flags are embedded for teachers
// so hat checks don't need a DB round trip; they are refreshed on login.
type JWTClaims struct {
	UserID  string     `json:"user_id"`
	Role    UserRole   `json:"role"`
	SiswaID string     `json:"siswa_id,omitempty"`
	GuruID  string     `json:"guru_id,omitempty"`
	Flags   *RoleFlags `json:"flags,omitempty"`
	jwt.RegisteredClaims
}

// HasHat reports whether the claims carry the given role hat.
func (c *JWTClaims) HasHat(hat Hat) bool {
	if c == nil {
		return false
	}
	if hat == HatSiswa {
		return c.Role == RoleSiswa
	}
	if c.Role == RoleAdmin && hat == HatAdmin {
		return true
	}
	if c.Role != RoleGuru {
		return false
	}
	for _, h := range ResolveHats(c.Flags).Hats {
		if h.Hat == hat {
			return true
		}
	}
	return false
}
