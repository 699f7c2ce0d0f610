package service

import (
	"time"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// Clock returns the current time. Token issuance and verification read time only through it.
type Clock func() time.Time

// Claims is the identity a verified token carries.
type Claims struct {
	AccountID uuid.UUID
	Email     string
	Role      entity.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal converts the claims into the request identity.
func (c *Claims) Principal() entity.Principal {
	return entity.Principal{
		AccountID: c.AccountID,
		Email:     c.Email,
		Role:      c.Role,
	}
}

// IssuedToken is a freshly signed token and its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer signs self-contained access tokens.
type TokenIssuer interface {
	// Issue signs a token for the principal that expires after the configured TTL.
	Issue(principal entity.Principal) (*IssuedToken, error)

	// TTL returns the configured token lifetime.
	TTL() time.Duration
}

// TokenVerifier validates tokens produced by a TokenIssuer sharing the same key.
type TokenVerifier interface {
	// Verify checks the signature first, then expiry, and returns the embedded claims.
	Verify(token string) (*Claims, error)
}

// TokenService is both halves of the token lifecycle, backed by one signing key.
type TokenService interface {
	TokenIssuer
	TokenVerifier
}
