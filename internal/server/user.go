package server

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authdomain "github.com/neeraj3071/InvoicePro/internal/auth/domain"
	invoicedomain "github.com/neeraj3071/InvoicePro/internal/invoice/domain"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

func (s *Server) Register(c *gin.Context) {
	var req authdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := validateRegister(req); err != nil {
		AbortWithError(c, err)
		return
	}

	user, token, err := s.authsvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
		"token":   token,
	})
}

func (s *Server) Login(c *gin.Context) {
	if s.loginLimiter.Enabled() {
		allowed, err := s.loginLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("login limiter unavailable", zap.Error(err))
		} else if !allowed {
			AbortWithError(c, ErrTooManyLogins)
			return
		}
	}

	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		AbortWithError(c, newValidationError("request", "required", "email and password are required"))
		return
	}

	user, token, err := s.authsvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

func (s *Server) Me(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.CurrentUser(c.Request.Context(), principal.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) UpdateMe(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var update authdomain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.UpdateProfile(c.Request.Context(), principal.OwnerID, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) VerifyToken(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.CurrentUser(c.Request.Context(), principal.OwnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}

// validateRegister aggregates every violated constraint rather than stopping
// at the first.
func validateRegister(req authdomain.RegisterRequest) error {
	var verr invoicedomain.ValidationErrors

	if strings.TrimSpace(req.FirstName) == "" {
		verr.Errors = append(verr.Errors, invoicedomain.FieldError{
			Field: "firstName", Code: "required", Message: "firstName is required",
		})
	}
	if strings.TrimSpace(req.LastName) == "" {
		verr.Errors = append(verr.Errors, invoicedomain.FieldError{
			Field: "lastName", Code: "required", Message: "lastName is required",
		})
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		verr.Errors = append(verr.Errors, invoicedomain.FieldError{
			Field: "email", Code: "required", Message: "email is required",
		})
	} else if !emailPattern.MatchString(email) {
		verr.Errors = append(verr.Errors, invoicedomain.FieldError{
			Field: "email", Code: "format", Message: "email must be a valid address",
		})
	}
	if req.Password == "" {
		verr.Errors = append(verr.Errors, invoicedomain.FieldError{
			Field: "password", Code: "required", Message: "password is required",
		})
	} else if len(req.Password) < 6 {
		verr.Errors = append(verr.Errors, invoicedomain.FieldError{
			Field: "password", Code: "min_length", Message: "password must be at least 6 characters long",
		})
	}

	if len(verr.Errors) > 0 {
		return &verr
	}
	return nil
}
