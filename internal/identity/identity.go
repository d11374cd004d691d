// Package identity models the signed-in user on whose behalf the client
// talks to the timesheet server.
package identity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken indicates the bearer token is not a readable JWT.
var ErrMalformedToken = errors.New("malformed bearer token")

// Identity is the current user, their role, and their bearer credential.
type Identity struct {
	UserID    string
	Name      string
	Role      domain.Role
	Token     string
	ExpiresAt *time.Time
}

// BearerToken implements api.TokenSource.
func (i *Identity) BearerToken() string {
	if i == nil {
		return ""
	}
	return i.Token
}

// Valid reports whether the identity carries a credential that has not expired.
func (i *Identity) Valid(now time.Time) bool {
	if i == nil || i.Token == "" {
		return false
	}
	return i.ExpiresAt == nil || now.Before(*i.ExpiresAt)
}

// FromToken builds an Identity from the claims of a bearer JWT. The signature
// is not verified: the server is the authority on every call, and the client
// only needs the claims to shape its affordances.
func FromToken(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	id := &Identity{
		Token: token,
		UserID: domain.CoalesceStr(
			claimString(claims, "user_id"),
			claimString(claims, "userId"),
			claimString(claims, "id"),
			claimString(claims, "sub"),
		),
		Name: domain.CoalesceStr(claimString(claims, "name"), claimString(claims, "email")),
		Role: domain.ParseRole(domain.CoalesceStr(
			claimString(claims, "roleAccess"),
			claimString(claims, "role"),
		)),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		id.ExpiresAt = &t
	}
	if id.Role == "" {
		id.Role = domain.RoleGeneral
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
