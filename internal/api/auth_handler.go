package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
	"github.com/nekogravitycat/wellness-booking-backend/internal/identity"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/response"
)

type AuthHandler struct {
	validator  *identity.Validator
	jwtManager *auth.JWTManager
}

func NewAuthHandler(validator *identity.Validator, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		validator:  validator,
		jwtManager: jwtManager,
	}
}

//
// POST /v1/auth/login
//

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	id, err := h.validator.Validate(req.Code)
	if err != nil {
		log.Printf("[auth] rejected login from %s", c.ClientIP())
		response.Error(c, identity.ErrInvalidCode)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(id.Code, id.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		Identity:    NewIdentityResponse(id),
	})
}

//
// GET /v1/me
//

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, MeResponse{
		Identity: IdentityResponse{
			Code:    auth.GetIdentity(c),
			IsAdmin: auth.IsAdmin(c),
		},
	})
}
