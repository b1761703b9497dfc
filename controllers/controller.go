package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/auth"
	"storefront/database"
	"storefront/middleware"
	"storefront/services"
)

const defaultTimeout = 5 * time.Second

// Base carries what every controller needs: the per-request timeout for
// storage calls and the logger for unexpected failures.
type Base struct {
	Timeout time.Duration
	Log     *slog.Logger
}

func (b Base) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (b Base) identity(c *gin.Context) auth.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

func (b Base) userID(c *gin.Context) primitive.ObjectID {
	return b.identity(c).UserID
}

func (b Base) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
}

// respondError is the single place service errors become HTTP statuses.
func (b Base) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if b.Log != nil {
			b.Log.Error("request failed",
				slog.String("method", c.Request.Method),
				slog.String("path", c.FullPath()),
				slog.Any("err", err),
			)
		}
		msg = "Internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
