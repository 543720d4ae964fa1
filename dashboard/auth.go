package dashboard

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanctra/sanctra/fields"
)

// LoginHandler signs the configured admin in and issues the JWT the data
// endpoints expect. When a TOTP secret is configured the otp code is
// checked as a second factor.
func (s *Service) LoginHandler(c *gin.Context) {
	var req fields.LoginRequest
	switch bindingErr := c.ShouldBindWith(&req, binding.JSON).(type) {
	case validator.ValidationErrors:
		var details []fields.ErrDetails
		for _, err := range bindingErr {
			details = append(details, fields.ErrorToString(err))
		}
		payload := fields.ErrorDetails{Details: details, Code: http.StatusBadRequest, Message: "Request fields validation error", Status: fields.BadRequest}
		c.JSON(http.StatusBadRequest, fields.ErrorResponse{ErrorDetails: payload})
		return
	case nil:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad_request", "code": "bad_request"})
		return
	}

	cfg := s.SanctraConfig
	if cfg.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "admin auth is not configured", "code": "admin_auth_not_configured"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.AdminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(req.Password)) == nil
	otpOK := cfg.AdminTOTPSecret == "" || totp.Validate(req.OTP, cfg.AdminTOTPSecret)
	if !userOK || !passOK || !otpOK {
		if s.Redis != nil {
			s.Redis.Incr("dashboard:failed_logins")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "wrong credentials entered", "code": "unauthorized"})
		return
	}

	token, err := s.Auth.GenerateJWT(req.Username)
	if err != nil {
		s.Logger.WithError(err).Error("jwt generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "unable to issue token", "code": "internal_error"})
		return
	}
	c.Header("Authorization", token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}
