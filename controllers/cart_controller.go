package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/services"
)

type CartController struct {
	Base
	carts *services.CartService
}

func NewCartController(carts *services.CartService, b Base) *CartController {
	return &CartController{Base: b, carts: carts}
}

func (cc *CartController) Get(c *gin.Context) {
	ctx, cancel := cc.ctx(c)
	defer cancel()

	cart, err := cc.carts.Get(ctx, cc.userID(c))
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (cc *CartController) Add(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required,objectid"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		cc.badRequest(c, err)
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	cart, err := cc.carts.Add(ctx, cc.userID(c), body.ProductID, body.Quantity)
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (cc *CartController) Update(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required,objectid"`
		Quantity  *int   `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		cc.badRequest(c, err)
		return
	}

	ctx, cancel := cc.ctx(c)
	defer cancel()

	cart, err := cc.carts.Update(ctx, cc.userID(c), body.ProductID, *body.Quantity)
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

// Remove deletes ?productId from the cart, or empties the cart without it.
func (cc *CartController) Remove(c *gin.Context) {
	ctx, cancel := cc.ctx(c)
	defer cancel()

	cart, err := cc.carts.Remove(ctx, cc.userID(c), c.Query("productId"))
	if err != nil {
		cc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}
