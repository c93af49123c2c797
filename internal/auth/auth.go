package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"plan-review/internal/config"
)

// Roles carried in bearer tokens
const (
	RoleAssessor = "assessor"
	RoleReviewer = "reviewer"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingActor = errors.New("token has no subject")
)

// Claims represents the claims in a bearer token.
// Identity providers emit either a single "role" or a "roles" list.
type Claims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// ActorRef returns the opaque actor identifier
func (c *Claims) ActorRef() string {
	return c.Subject
}

// AllRoles merges role and roles
func (c *Claims) AllRoles() []string {
	roles := slices.Clone(c.Roles)
	if c.Role != "" && !slices.Contains(roles, c.Role) {
		roles = append(roles, c.Role)
	}
	return roles
}

// Service verifies bearer tokens issued by the identity provider
type Service struct {
	secret []byte
	issuer string
}

// NewService creates a new authentication service
func NewService(cfg *config.JWTConfig) *Service {
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// GenerateToken signs a token for actorRef. Used by operators and tests to mint local tokens.
func (s *Service) GenerateToken(actorRef string, roles []string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorRef,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a bearer token and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingActor
	}

	return claims, nil
}
