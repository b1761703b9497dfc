package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/services"
)

type WishlistController struct {
	Base
	wishlists *services.WishlistService
}

func NewWishlistController(wishlists *services.WishlistService, b Base) *WishlistController {
	return &WishlistController{Base: b, wishlists: wishlists}
}

func (wc *WishlistController) Get(c *gin.Context) {
	ctx, cancel := wc.ctx(c)
	defer cancel()

	wishlist, err := wc.wishlists.Get(ctx, wc.userID(c))
	if err != nil {
		wc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

func (wc *WishlistController) Add(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required,objectid"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		wc.badRequest(c, err)
		return
	}

	ctx, cancel := wc.ctx(c)
	defer cancel()

	wishlist, err := wc.wishlists.Add(ctx, wc.userID(c), body.ProductID)
	if err != nil {
		wc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

func (wc *WishlistController) Remove(c *gin.Context) {
	ctx, cancel := wc.ctx(c)
	defer cancel()

	wishlist, err := wc.wishlists.Remove(ctx, wc.userID(c), c.Query("productId"))
	if err != nil {
		wc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}
