package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	jwt.RegisteredClaims

	// PropertyID scopes the session to one hotel property.
	PropertyID string `json:"pid"`
}

// Session is the verified identity behind an admin console request.
// ID is per login, so a fresh login yields a fresh permission cache.
type Session struct {
	ID         string
	ActorID    string
	PropertyID string
	ExpiresAt  time.Time
}

// Verify checks an HS256 session token against secret, audience and now.
func Verify(tokenString, audience, secret string, now time.Time) (*Session, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &Claims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	actor := strings.TrimSpace(claims.Subject)
	property := strings.TrimSpace(claims.PropertyID)
	if actor == "" || property == "" {
		return nil, fmt.Errorf("token missing actor or property")
	}
	sid := claims.ID
	if sid == "" {
		// Tokens minted without jti still get a stable per-token session.
		sid = fmt.Sprintf("%s@%s#%d", actor, property, claims.ExpiresAt.Unix())
	}

	return &Session{
		ID:         sid,
		ActorID:    actor,
		PropertyID: property,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// Issue mints a session token. Used by the dev CLI and tests; production
// tokens come from the identity provider.
func Issue(actorID, propertyID, audience, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		PropertyID: propertyID,
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
