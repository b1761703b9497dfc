package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/services"
)

type AdminController struct {
	Base
	users *services.UserService
	stats *services.StatsService
}

func NewAdminController(users *services.UserService, stats *services.StatsService, b Base) *AdminController {
	return &AdminController{Base: b, users: users, stats: stats}
}

func (ac *AdminController) Stats(c *gin.Context) {
	ctx, cancel := ac.ctx(c)
	defer cancel()

	stats, recent, err := ac.stats.Dashboard(ctx)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "recentOrders": recent})
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	ctx, cancel := ac.ctx(c)
	defer cancel()

	users, err := ac.users.List(ctx)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ac *AdminController) UpdateUser(c *gin.Context) {
	var body struct {
		IsBlocked *bool `json:"isBlocked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ac.badRequest(c, err)
		return
	}

	ctx, cancel := ac.ctx(c)
	defer cancel()

	user, err := ac.users.SetBlocked(ctx, c.Param("id"), *body.IsBlocked)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
