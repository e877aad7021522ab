package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ScopeSimulation authorizes direct status updates on the webhook.
	ScopeSimulation = "webhook:simulate"
	// SimulationTokenExpiry is the default lifetime of simulation tokens.
	SimulationTokenExpiry = time.Hour
)

// Claims represents JWT claims.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// GenerateSimulationToken issues a token allowing subject to post
// simulated notifications for ttl.
func (s *JWTService) GenerateSimulationToken(subject string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("signing secret is empty")
	}
	if ttl <= 0 {
		ttl = SimulationTokenExpiry
	}

	now := s.now()
	claims := &Claims{
		Scope: ScopeSimulation,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// SigningKey returns the HMAC secret for middleware configuration.
func (s *JWTService) SigningKey() []byte {
	return s.secret
}

// AllowsSimulation reports whether a parsed token carries the simulation scope.
func AllowsSimulation(token *jwt.Token) bool {
	if token == nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(*Claims)
	return ok && claims.Scope == ScopeSimulation
}
