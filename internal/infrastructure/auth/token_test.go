package auth

import (
	"testing"
	"time"

	"github.com/corpfin/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	cfg := config.AuthConfig{
		Secret:          "test-secret-key-at-least-32-chars",
		TokenExpiration: 15 * time.Minute,
		Issuer:          "test-issuer",
	}
	return NewTokenService(cfg)
}

func TestNewTokenService(t *testing.T) {
	cfg := config.AuthConfig{
		Secret:          "test-secret",
		TokenExpiration: time.Hour,
		Issuer:          "test-issuer",
	}

	svc := NewTokenService(cfg)

	assert.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.secret)
	assert.Equal(t, cfg.TokenExpiration, svc.expiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
}

func TestIssue(t *testing.T) {
	svc := newTestTokenService()

	issued, err := svc.Issue("reporting-ui", []string{ScopeModelRun, ScopeReportsRender})

	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.True(t, issued.ExpiresAt.After(time.Now()))
}

func TestIssue_EmptyClientID(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.Issue("", []string{ScopeModelRun})

	assert.ErrorIs(t, err, ErrMissingClientID)
}

func TestValidate_Success(t *testing.T) {
	svc := newTestTokenService()

	issued, err := svc.Issue("batch-pipeline", []string{ScopeModelRun, ScopeModelValidate})
	require.NoError(t, err)

	claims, err := svc.Validate(issued.Token)

	require.NoError(t, err)
	assert.Equal(t, "batch-pipeline", claims.ClientID)
	assert.Equal(t, "batch-pipeline", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, []string{ScopeModelRun, ScopeModelValidate}, claims.Scopes)
}

func TestValidate_WrongSecret(t *testing.T) {
	svc := newTestTokenService()
	issued, err := svc.Issue("reporting-ui", nil)
	require.NoError(t, err)

	other := NewTokenService(config.AuthConfig{
		Secret:          "a-completely-different-secret-key",
		TokenExpiration: 15 * time.Minute,
		Issuer:          "test-issuer",
	})

	_, err = other.Validate(issued.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	svc := newTestTokenService()

	_, err := svc.Validate("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := NewTokenService(config.AuthConfig{
		Secret:          "test-secret-key-at-least-32-chars",
		TokenExpiration: -time.Minute, // already expired when issued
		Issuer:          "test-issuer",
	})

	issued, err := svc.Issue("reporting-ui", nil)
	require.NoError(t, err)

	_, err = svc.Validate(issued.Token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestClaims_ScopeHelpers(t *testing.T) {
	claims := &Claims{
		ClientID: "reporting-ui",
		Scopes:   []string{ScopeModelRun, ScopeReportsRender},
	}

	t.Run("HasScope", func(t *testing.T) {
		assert.True(t, claims.HasScope(ScopeModelRun))
		assert.False(t, claims.HasScope(ScopeModelValidate))
	})

	t.Run("HasAnyScope", func(t *testing.T) {
		assert.True(t, claims.HasAnyScope(ScopeModelValidate, ScopeReportsRender))
		assert.False(t, claims.HasAnyScope(ScopeModelValidate))
	})

	t.Run("HasAllScopes", func(t *testing.T) {
		assert.True(t, claims.HasAllScopes(ScopeModelRun, ScopeReportsRender))
		assert.False(t, claims.HasAllScopes(ScopeModelRun, ScopeModelValidate))
	})

	t.Run("empty scopes", func(t *testing.T) {
		empty := &Claims{ClientID: "x"}
		assert.False(t, empty.HasScope(ScopeModelRun))
		assert.False(t, empty.HasAnyScope(ScopeModelRun))
		assert.True(t, empty.HasAllScopes())
	})
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	svc := newTestTokenService()
	issued, err := svc.Issue("reporting-ui", nil)
	require.NoError(t, err)

	claims, err := svc.Validate(issued.Token)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	expired := &Claims{}
	assert.Equal(t, time.Duration(0), expired.GetRemainingTTL())
}

func TestTokenExpiration(t *testing.T) {
	svc := newTestTokenService()
	assert.Equal(t, 15*time.Minute, svc.TokenExpiration())
}
