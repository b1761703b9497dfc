package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/services"
)

type AuthController struct {
	Base
	users *services.UserService
}

func NewAuthController(users *services.UserService, b Base) *AuthController {
	return &AuthController{Base: b, users: users}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ac.badRequest(c, err)
		return
	}

	ctx, cancel := ac.ctx(c)
	defer cancel()

	user, err := ac.users.Register(ctx, input.Name, input.Email, input.Password)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ac.badRequest(c, err)
		return
	}

	ctx, cancel := ac.ctx(c)
	defer cancel()

	session, err := ac.users.Login(ctx, input.Email, input.Password)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}

	ctx, cancel := ac.ctx(c)
	defer cancel()

	if err := ac.users.Logout(ctx, token); err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ac *AuthController) Me(c *gin.Context) {
	ctx, cancel := ac.ctx(c)
	defer cancel()

	user, err := ac.users.Me(ctx, ac.identity(c))
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
