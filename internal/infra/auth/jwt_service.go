package auth

import (
	"time"

	"warden/config"
	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// tokenClaims is the wire shape of an access token payload.
type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte        // HMAC signing key, never exposed after construction.
	ttl    time.Duration // Time-to-live for access tokens.
	issuer string
	clock  service.Clock
	parser *jwt.Parser
}

// NewJWTService is the constructor used by the application wiring.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	return NewTokenService([]byte(cfg.Token.Secret), cfg.Token.TTL, cfg.Token.Issuer, time.Now)
}

// NewTokenService builds a token service with an explicit key, lifetime and clock.
func NewTokenService(secret []byte, ttl time.Duration, issuer string, clock service.Clock) (service.TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret must be provided")
	}
	if len(secret) < config.MinSecretLength {
		return nil, errors.Errorf("token signing secret must be at least %d bytes", config.MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if clock == nil {
		clock = time.Now
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clock),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &jwtService{
		secret: key,
		ttl:    ttl,
		issuer: issuer,
		clock:  clock,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Issue signs a token for the principal.
func (s *jwtService) Issue(principal entity.Principal) (*service.IssuedToken, error) {
	if principal.AccountID == uuid.Nil || !principal.Role.IsValid() {
		return nil, errors.New("cannot issue a token for an incomplete principal")
	}

	now := s.clock()
	claims := tokenClaims{
		Email: principal.Email,
		Role:  principal.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.AccountID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}

	return &service.IssuedToken{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}

// Verify checks the signature, then the registered claims, then the identity claims.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	claims := &tokenClaims{}

	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerrors.ErrExpiredToken
		}

		return nil, domainerrors.ErrInvalidToken.WithDetails(err.Error())
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken.WithDetails("subject is not an account id")
	}

	role := entity.Role(claims.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrInvalidToken.WithDetails("unknown role")
	}

	result := &service.Claims{
		AccountID: accountID,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.UTC(),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.UTC()
	}

	return result, nil
}

// TTL returns the configured token lifetime.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
