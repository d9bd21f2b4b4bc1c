package handler

import "time"

// =====================
// Auth Request DTOs
// =====================

// TokenRequest represents the request body for service token issuance
type TokenRequest struct {
	ClientID     string   `json:"client_id" binding:"required,min=2,max=64"`
	ClientSecret string   `json:"client_secret" binding:"required"`
	Scopes       []string `json:"scopes" binding:"omitempty,dive,oneof=model:run model:validate reports:render"`
}

// =====================
// Auth Response DTOs
// =====================

// TokenResponse represents a freshly minted service token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Scopes      []string  `json:"scopes"`
}

// TokenInfoResponse describes the claims behind the presented token
type TokenInfoResponse struct {
	ClientID  string    `json:"client_id"`
	Scopes    []string  `json:"scopes"`
	Issuer    string    `json:"issuer"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"` // seconds until expiry
}
