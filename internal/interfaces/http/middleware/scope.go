package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScopeConfig holds configuration for scope middleware
type ScopeConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when a scope check fails (optional)
	OnDenied func(c *gin.Context, requiredScopes []string)
}

// RequireScope creates middleware that requires a specific scope
// This is a convenience function for a single scope requirement
func RequireScope(scope string) gin.HandlerFunc {
	return RequireAnyScope(scope)
}

// RequireScopeWithConfig creates middleware with custom config
func RequireScopeWithConfig(scope string, cfg ScopeConfig) gin.HandlerFunc {
	return RequireAnyScopeWithConfig(cfg, scope)
}

// RequireAnyScope creates middleware that requires any of the specified scopes
// The client must hold at least one of the listed scopes to proceed
func RequireAnyScope(scopes ...string) gin.HandlerFunc {
	return RequireAnyScopeWithConfig(ScopeConfig{}, scopes...)
}

// RequireAnyScopeWithConfig creates middleware that requires any of the specified scopes with custom config
func RequireAnyScopeWithConfig(cfg ScopeConfig, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetAuthClaims(c)
		if claims == nil {
			handleScopeDenied(c, cfg, scopes, "No authentication claims found")
			return
		}

		if !claims.HasAnyScope(scopes...) {
			handleScopeDenied(c, cfg, scopes, "Client lacks required scope")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Scope check passed",
				zap.String("client_id", claims.ClientID),
				zap.Strings("required_any", scopes),
				zap.Strings("client_scopes", claims.Scopes),
			)
		}

		c.Next()
	}
}

// RequireAllScopes creates middleware that requires all of the specified scopes
// The client must hold every listed scope to proceed
func RequireAllScopes(scopes ...string) gin.HandlerFunc {
	return RequireAllScopesWithConfig(ScopeConfig{}, scopes...)
}

// RequireAllScopesWithConfig creates middleware that requires all scopes with custom config
func RequireAllScopesWithConfig(cfg ScopeConfig, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetAuthClaims(c)
		if claims == nil {
			handleScopeDenied(c, cfg, scopes, "No authentication claims found")
			return
		}

		if !claims.HasAllScopes(scopes...) {
			handleScopeDenied(c, cfg, scopes, "Client lacks one or more required scopes")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("All scopes check passed",
				zap.String("client_id", claims.ClientID),
				zap.Strings("required_all", scopes),
				zap.Strings("client_scopes", claims.Scopes),
			)
		}

		c.Next()
	}
}

// handleScopeDenied handles scope denied scenarios
func handleScopeDenied(c *gin.Context, cfg ScopeConfig, requiredScopes []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredScopes)
		return
	}

	if cfg.Logger != nil {
		claims := GetAuthClaims(c)
		clientID := ""
		clientScopes := []string{}
		if claims != nil {
			clientID = claims.ClientID
			clientScopes = claims.Scopes
		}

		cfg.Logger.Warn("Scope denied",
			zap.String("reason", reason),
			zap.String("client_id", clientID),
			zap.Strings("required_scopes", requiredScopes),
			zap.Strings("client_scopes", clientScopes),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient scope",
		},
	})
}

// HasScope is a helper function to check a scope in handlers
// Returns true if the client holds the specified scope
func HasScope(c *gin.Context, scope string) bool {
	claims := GetAuthClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasScope(scope)
}

// HasAnyScope is a helper function to check if the client holds any of the scopes
func HasAnyScope(c *gin.Context, scopes ...string) bool {
	claims := GetAuthClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasAnyScope(scopes...)
}

// HasAllScopes is a helper function to check if the client holds all of the scopes
func HasAllScopes(c *gin.Context, scopes ...string) bool {
	claims := GetAuthClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasAllScopes(scopes...)
}
