package handler

import (
	"crypto/subtle"

	"github.com/corpfin/backend/internal/infrastructure/auth"
	"github.com/corpfin/backend/internal/infrastructure/config"
	"github.com/corpfin/backend/internal/interfaces/http/dto"
	"github.com/corpfin/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// DefaultTokenScopes are granted when a token request names no scopes.
var DefaultTokenScopes = []string{auth.ScopeModelRun, auth.ScopeModelValidate}

// AuthHandler handles service token issuance and introspection
type AuthHandler struct {
	BaseHandler
	tokens *auth.TokenService
	cfg    config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokens *auth.TokenService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		cfg:    cfg,
	}
}

// IssueToken godoc
// @Summary      Issue a service token
// @Description  Exchange client credentials for a signed bearer token. The client secret is the deployment's shared auth secret; scopes default to model:run and model:validate when omitted.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body TokenRequest true "Client credentials and requested scopes"
// @Success      200 {object} dto.Response{data=TokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	if !h.cfg.Enabled {
		h.ServiceUnavailable(c, dto.ErrCodeAuthDisabled, "Token issuance is disabled on this deployment")
		return
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	// Constant-time comparison so the secret cannot be recovered byte by byte
	if subtle.ConstantTimeCompare([]byte(req.ClientSecret), []byte(h.cfg.Secret)) != 1 {
		h.Unauthorized(c, "Invalid client credentials")
		return
	}

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = DefaultTokenScopes
	}

	issued, err := h.tokens.Issue(req.ClientID, scopes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, TokenResponse{
		AccessToken: issued.Token,
		TokenType:   issued.TokenType,
		ExpiresAt:   issued.ExpiresAt,
		Scopes:      scopes,
	})
}

// TokenInfo godoc
// @Summary      Inspect the current token
// @Description  Returns the client identity, scopes and remaining lifetime of the presented bearer token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=TokenInfoResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/token/info [get]
func (h *AuthHandler) TokenInfo(c *gin.Context) {
	claims := middleware.GetAuthClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	h.Success(c, TokenInfoResponse{
		ClientID:  claims.ClientID,
		Scopes:    claims.Scopes,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.GetExpiresAtTime(),
		ExpiresIn: int64(claims.GetRemainingTTL().Seconds()),
	})
}
