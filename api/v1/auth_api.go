package v1

import (
	"net/http"

	"blogit/api/v1/request"
	"blogit/internal/metrics"
	"blogit/service"

	"github.com/gin-gonic/gin"
)

// AuthAPI exposes HTTP handlers for the signup/login/identity flows.
type AuthAPI struct {
	service *service.UserService
}

// NewAuthAPI wires the service layer into the HTTP handlers.
func NewAuthAPI(s *service.UserService) *AuthAPI {
	return &AuthAPI{service: s}
}

// Signup handles new account creation and returns a session token.
func (a *AuthAPI) Signup(c *gin.Context) {
	var req request.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncSignup("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields required"})
		return
	}

	token, user, appErr := a.service.Signup(req.Username, req.Email, req.Password)
	if appErr != nil {
		metrics.IncSignup("failed")
		respondError(c, appErr)
		return
	}

	metrics.IncSignup("success")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Login validates credentials and returns a session token.
func (a *AuthAPI) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields required"})
		return
	}

	token, user, appErr := a.service.Login(req.Email, req.Password)
	if appErr != nil {
		metrics.IncLogin("failed")
		respondError(c, appErr)
		return
	}

	metrics.IncLogin("success")
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the public view of the token subject's own record.
func (a *AuthAPI) Me(c *gin.Context) {
	user, appErr := a.service.Me(c.GetUint64("user_id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
