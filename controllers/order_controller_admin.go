package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/services"
)

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var input services.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		oc.badRequest(c, err)
		return
	}

	ctx, cancel := oc.ctx(c)
	defer cancel()

	order, err := oc.orders.UpdateStatus(ctx, c.Param("id"), input)
	if err != nil {
		oc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListAll serves the admin order list; ?status=all or no status means every order.
func (oc *OrderController) ListAll(c *gin.Context) {
	ctx, cancel := oc.ctx(c)
	defer cancel()

	orders, err := oc.orders.ListAll(ctx, c.Query("status"))
	if err != nil {
		oc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
