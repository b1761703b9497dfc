package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/services"
)

type OrderController struct {
	Base
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService, b Base) *OrderController {
	return &OrderController{Base: b, orders: orders}
}

func (oc *OrderController) Create(c *gin.Context) {
	var input services.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		oc.badRequest(c, err)
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.orders.PlaceOrder(ctx, oc.identity(c), input)
	if err != nil {
		oc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (oc *OrderController) List(c *gin.Context) {
	ctx, cancel := oc.ctx(c)
	defer cancel()

	orders, err := oc.orders.ListForUser(ctx, oc.identity(c))
	if err != nil {
		oc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order to its owner or to an admin.
func (oc *OrderController) Get(c *gin.Context) {
	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.orders.Get(ctx, oc.identity(c), c.Param("id"))
	if err != nil {
		oc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
