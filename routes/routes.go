package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/auth"
	"storefront/controllers"
	"storefront/database"
	"storefront/middleware"
	"storefront/services"
)

// Deps holds everything the router wires into controllers.
type Deps struct {
	Store    *database.Store
	Tokens   *auth.TokenManager
	Users    *services.UserService
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Wishlist *services.WishlistService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Stats    *services.StatsService
	Metrics  *middleware.Metrics
	Log      *slog.Logger
	Timeout  time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	controllers.RegisterValidators()
	base := controllers.Base{Timeout: d.Timeout, Log: d.Log}
	authCtl := controllers.NewAuthController(d.Users, base)
	productCtl := controllers.NewProductController(d.Catalog, base)
	cartCtl := controllers.NewCartController(d.Carts, base)
	wishlistCtl := controllers.NewWishlistController(d.Wishlist, base)
	orderCtl := controllers.NewOrderController(d.Orders, base)
	paymentCtl := controllers.NewPaymentController(d.Payments, base)
	adminCtl := controllers.NewAdminController(d.Users, d.Stats, base)

	api := r.Group("/api")
	{
		api.POST("/register", authCtl.Register)
		api.POST("/login", authCtl.Login)
		api.POST("/logout", authCtl.Logout)

		api.GET("/products", productCtl.List)
		api.GET("/products/:id", productCtl.Get)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(d.Tokens, d.Store.Tokens))
		{
			protected.GET("/me", authCtl.Me)

			protected.GET("/cart", cartCtl.Get)
			protected.POST("/cart", cartCtl.Add)
			protected.PUT("/cart", cartCtl.Update)
			protected.DELETE("/cart", cartCtl.Remove)

			protected.GET("/wishlist", wishlistCtl.Get)
			protected.POST("/wishlist", wishlistCtl.Add)
			protected.DELETE("/wishlist", wishlistCtl.Remove)

			protected.POST("/orders", orderCtl.Create)
			protected.GET("/orders", orderCtl.List)
			protected.GET("/orders/:id", orderCtl.Get)
			protected.PUT("/orders/:id", middleware.AdminMiddleware(), orderCtl.UpdateStatus)

			protected.POST("/payment/create-order", paymentCtl.CreateOrder)
			protected.POST("/payment/verify", paymentCtl.Verify)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/products", productCtl.ListAll)
				admin.POST("/products", productCtl.Create)
				admin.PUT("/products/:id", productCtl.Update)
				admin.DELETE("/products/:id", productCtl.Delete)

				admin.GET("/orders", orderCtl.ListAll)
				admin.GET("/stats", adminCtl.Stats)
				admin.GET("/users", adminCtl.ListUsers)
				admin.PUT("/users/:id", adminCtl.UpdateUser)
			}
		}
	}
}
