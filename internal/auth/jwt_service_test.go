package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateSimulationToken(t *testing.T) {
	svc := NewJWTService("s3cret")

	token, err := svc.GenerateSimulationToken("qa", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ScopeSimulation, claims.Scope)
	assert.Equal(t, "qa", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewJWTService("one").GenerateSimulationToken("qa", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTService("two").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewJWTService("s3cret")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateSimulationToken("qa", time.Minute)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateSimulationTokenNeedsSecret(t *testing.T) {
	_, err := NewJWTService("").GenerateSimulationToken("qa", time.Minute)
	assert.Error(t, err)
}

func TestAllowsSimulation(t *testing.T) {
	assert.False(t, AllowsSimulation(nil))
	assert.False(t, AllowsSimulation(&jwt.Token{Valid: true, Claims: &Claims{Scope: "other"}}))
	assert.False(t, AllowsSimulation(&jwt.Token{Valid: false, Claims: &Claims{Scope: ScopeSimulation}}))
	assert.True(t, AllowsSimulation(&jwt.Token{Valid: true, Claims: &Claims{Scope: ScopeSimulation}}))
}
