package middleware

import (
	"net/http"
	"strings"

	"github.com/corpfin/backend/internal/infrastructure/auth"
	"github.com/corpfin/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys
const (
	AuthClaimsKey   = "auth_claims"
	AuthClientIDKey = "auth_client_id"
	AuthScopesKey   = "auth_scopes"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// AuthMiddlewareConfig holds configuration for the token authentication middleware
type AuthMiddlewareConfig struct {
	// TokenService is required for token validation
	TokenService *auth.TokenService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns default auth middleware configuration
func DefaultAuthConfig(tokenService *auth.TokenService) AuthMiddlewareConfig {
	return AuthMiddlewareConfig{
		TokenService: tokenService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/system/ping",
			"/api/v1/auth/token",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
		OnError: nil,
		Logger:  nil,
	}
}

// AuthMiddleware creates token authentication middleware
func AuthMiddleware(tokenService *auth.TokenService) gin.HandlerFunc {
	return AuthMiddlewareWithConfig(DefaultAuthConfig(tokenService))
}

// AuthMiddlewareWithConfig creates token authentication middleware with custom config
func AuthMiddlewareWithConfig(cfg AuthMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Check skip paths
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		// Check skip path prefixes
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Extract token from Authorization header
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		// Check Bearer prefix
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		// Validate token
		claims, err := cfg.TokenService.Validate(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		// Store claims in context for downstream use
		c.Set(AuthClaimsKey, claims)
		c.Set(AuthClientIDKey, claims.ClientID)
		c.Set(AuthScopesKey, claims.Scopes)

		// Also set in request context for logger
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithClientID(ctx, log, claims.ClientID)
		c.Request = c.Request.WithContext(ctx)

		// Log authentication success if logger is provided
		if cfg.Logger != nil {
			cfg.Logger.Debug("Token authentication successful",
				zap.String("client_id", claims.ClientID),
				zap.Strings("scopes", claims.Scopes),
			)
		}

		c.Next()
	}
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg AuthMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Token authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "ERR_UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = "ERR_TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Token is not yet valid"
	case auth.ErrInvalidClaims:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token claims"
	case auth.ErrMissingClientID:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Token is missing a client identity"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetAuthClaims retrieves token claims from gin.Context
func GetAuthClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(AuthClaimsKey); exists {
		if tokenClaims, ok := claims.(*auth.Claims); ok {
			return tokenClaims
		}
	}
	return nil
}

// MustGetAuthClaims retrieves token claims from gin.Context or panics if not found
func MustGetAuthClaims(c *gin.Context) *auth.Claims {
	claims := GetAuthClaims(c)
	if claims == nil {
		panic("auth claims not found in context")
	}
	return claims
}

// GetAuthClientID retrieves the client ID from token claims in context
func GetAuthClientID(c *gin.Context) string {
	if clientID, exists := c.Get(AuthClientIDKey); exists {
		if id, ok := clientID.(string); ok {
			return id
		}
	}
	return ""
}

// GetAuthScopes retrieves the granted scopes from token claims in context
func GetAuthScopes(c *gin.Context) []string {
	if scopes, exists := c.Get(AuthScopesKey); exists {
		if s, ok := scopes.([]string); ok {
			return s
		}
	}
	return nil
}

// OptionalAuthMiddleware creates middleware that doesn't require a token but extracts claims if present
func OptionalAuthMiddleware(tokenService *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			c.Next()
			return
		}

		// Try to validate token - don't fail if invalid
		claims, err := tokenService.Validate(tokenString)
		if err != nil {
			c.Next()
			return
		}

		// Store claims in context
		c.Set(AuthClaimsKey, claims)
		c.Set(AuthClientIDKey, claims.ClientID)
		c.Set(AuthScopesKey, claims.Scopes)

		c.Next()
	}
}
