package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amberlane-studio/amberlane-backend-go/handlers"
	customMiddleware "github.com/amberlane-studio/amberlane-backend-go/middleware"
)

func SetupRoutes(e *echo.Echo) {
	// Public routes
	e.POST("/register", handlers.Register)
	e.POST("/login", handlers.Login)
	e.POST("/contact", handlers.ContactForm)

	e.GET("/products", handlers.GetProducts)
	e.GET("/products/:id", handlers.GetProduct)
	e.GET("/products/:id/reviews", handlers.ListReviews)

	// Payment-link routes: authenticated by the bearer payment token, not a
	// session.
	e.GET("/orders/:id/verify", handlers.VerifyOrder)
	e.POST("/orders/:id/checkout-session", handlers.CreateCheckoutSession)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Signed-in customer routes
	api := e.Group("/api")
	api.Use(customMiddleware.AuthMiddleware())

	api.GET("/users/me", handlers.GetUserProfile)
	api.PUT("/users/me", handlers.UpdateUserProfile)

	api.GET("/cart", handlers.GetCart)
	api.POST("/cart/add", handlers.AddToCart)
	api.PUT("/cart/update", handlers.UpdateCartItem)
	api.DELETE("/cart/remove/:productId", handlers.RemoveFromCart)
	api.POST("/cart/clear", handlers.ClearCart)
	api.POST("/cart/sync", handlers.SyncCart)

	api.POST("/orders", handlers.CreateOrder)
	api.POST("/orders/custom", handlers.CreateCustomOrder)
	api.GET("/orders", handlers.ListMyOrders)
	api.GET("/orders/:id", handlers.GetMyOrder)

	api.POST("/products/:id/reviews", handlers.CreateReview)

	// Admin back office
	admin := api.Group("/admin")
	admin.Use(customMiddleware.RequireAdmin())

	admin.GET("/orders", handlers.ListOrders)
	admin.POST("/orders/:id/accept", handlers.AcceptOrder)
	admin.POST("/orders/:id/reject", handlers.RejectOrder)
	admin.POST("/orders/:id/approve", handlers.ApproveOrder)
	admin.POST("/orders/:id/mark-shipped", handlers.MarkShipped)
	admin.POST("/orders/:id/mark-delivered", handlers.MarkDelivered)
	admin.POST("/orders/:id/remove", handlers.RemoveOrder)
	admin.POST("/orders/:id/generate-payment-link", handlers.GeneratePaymentLink)
	admin.POST("/orders/:id/create-payment-link", handlers.CreatePaymentLink)
	admin.POST("/orders/:id/edit-tax", handlers.EditTax)
	admin.POST("/orders/:id/edit-custom-item", handlers.EditCustomItem)
	admin.POST("/orders/:id/update-shipping-details", handlers.UpdateShippingDetails)
	admin.POST("/orders/:id/shipping/rates", handlers.ShippingRates)
	admin.POST("/orders/:id/shipping/label", handlers.PurchaseShippingLabel)

	admin.POST("/products", handlers.CreateProduct)
	admin.PUT("/products/:id", handlers.UpdateProduct)
	admin.DELETE("/products/:id", handlers.DeleteProduct)
	admin.POST("/products/bulk-sale", handlers.BulkSale)

	admin.POST("/roles/assign", handlers.AssignRole)
}
