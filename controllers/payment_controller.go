package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/services"
)

type PaymentController struct {
	Base
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService, b Base) *PaymentController {
	return &PaymentController{Base: b, payments: payments}
}

func (pc *PaymentController) CreateOrder(c *gin.Context) {
	var body struct {
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		pc.badRequest(c, err)
		return
	}

	ctx, cancel := pc.ctx(c)
	defer cancel()

	order, err := pc.payments.CreateIntent(ctx, body.Amount, body.Currency)
	if err != nil {
		pc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (pc *PaymentController) Verify(c *gin.Context) {
	var body struct {
		OrderID   string `json:"razorpay_order_id" binding:"required"`
		PaymentID string `json:"razorpay_payment_id" binding:"required"`
		Signature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		pc.badRequest(c, err)
		return
	}

	if !pc.payments.Verify(body.OrderID, body.PaymentID, body.Signature) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Payment verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified successfully"})
}
