package federation

import (
	"errors"
	"time"

	dErrors "concord/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultPeerTokenTTL = 2 * time.Minute
	peerAudience        = "concord-federation"
)

// PeerClaims are the claims carried on federation push tokens. Origin names
// the node that signed the push.
type PeerClaims struct {
	Origin string `json:"origin"`
	jwt.RegisteredClaims
}

// Authenticator signs outbound peer tokens and verifies inbound ones. All
// members of a federation share the same HMAC key, so any node can verify
// any other node's pushes.
type Authenticator struct {
	signingKey []byte
	origin     string
	ttl        time.Duration
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithTokenTTL overrides the lifetime of signed peer tokens.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

func NewAuthenticator(signingKey string, origin string, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		signingKey: []byte(signingKey),
		origin:     origin,
		ttl:        defaultPeerTokenTTL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Origin returns the node name this authenticator signs as.
func (a *Authenticator) Origin() string { return a.origin }

// Sign issues a short-lived token for one outbound push.
func (a *Authenticator) Sign(now time.Time) (string, error) {
	claims := PeerClaims{
		Origin: a.origin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.origin,
			Audience:  jwt.ClaimStrings{peerAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign peer token")
	}
	return signed, nil
}

// VerifyPeer verifies an inbound push token and returns the origin node
// that signed it.
func (a *Authenticator) VerifyPeer(token string) (string, error) {
	claims, err := a.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Origin, nil
}

// Verify checks an inbound push token and returns its claims.
func (a *Authenticator) Verify(tokenString string) (*PeerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PeerClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.signingKey, nil
	}, jwt.WithAudience(peerAudience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "peer token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid peer token")
	}

	claims, ok := token.Claims.(*PeerClaims)
	if !ok || claims.Origin == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid peer token")
	}
	return claims, nil
}
