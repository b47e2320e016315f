package api

import (
	"errors"
	"net/http"
	"time"

	"wellquest/internal/service"
	"wellquest/pkg/auth"
	"wellquest/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.JWTAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.JWTAuth) {
	r := &userRoutes{us: us, a: a}

	h := handler.Group("/auth")
	{
		h.POST("/register", r.RegisterUser)
		h.POST("/login", r.Login)
	}

	p := handler.Group("/users")
	p.Use(a.AuthMiddleware())
	{
		p.GET("/me", r.GetProfile)
	}
}

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required"`
}

type UserResponse struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.RegisterUser(c.Request.Context(), req.Username)
	if err != nil {
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		RegistrationDate: user.RegistrationDate,
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Login is deliberately thin: credential verification lives in the external
// identity collaborator, this endpoint only mints the engine's bearer token.
func (r *userRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		log.Error("failed to get user", zap.Error(err))
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	token, err := r.a.IssueToken(user.ID)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (r *userRoutes) GetProfile(c *gin.Context) {
	log := logger.Logger()

	callerID, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), callerID)
	if err != nil {
		log.Error("failed to get user", zap.Error(err))
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		RegistrationDate: user.RegistrationDate,
	})
}
