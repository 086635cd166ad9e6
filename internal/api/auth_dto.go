package api

import "github.com/nekogravitycat/wellness-booking-backend/internal/identity"

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// IdentityResponse is the shape of the caller identity returned in API responses.
type IdentityResponse struct {
	Code    string `json:"code"`
	IsAdmin bool   `json:"is_admin"`
}

// LoginResponse is the response for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	Identity    IdentityResponse `json:"identity"`
}

// MeResponse is the response for GET /v1/me.
type MeResponse struct {
	Identity IdentityResponse `json:"identity"`
}

func NewIdentityResponse(id identity.Identity) IdentityResponse {
	return IdentityResponse{Code: id.Code, IsAdmin: id.IsAdmin}
}
