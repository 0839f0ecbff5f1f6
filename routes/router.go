package routes

import (
	"net/http"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/middlewares"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the REST surface under /api.
func RegisterRoutes(r *gin.Engine) {
	r.Use(middlewares.AuthMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", registerHandler)
		auth.POST("/login", loginHandler)
		auth.POST("/logout", middlewares.RequireAuth(), logoutHandler)
		auth.GET("/me", middlewares.RequireAuth(), meHandler)
	}

	protected := api.Group("", middlewares.RequireAuth())
	{
		customers := protected.Group("/customers")
		customers.GET("/stats", customerStatsHandler)
		customers.GET("/search", searchCustomersHandler)
		customers.GET("", listCustomersHandler)
		customers.POST("", createCustomerHandler)
		customers.GET("/:id", getCustomerHandler)
		customers.PUT("/:id", updateCustomerHandler)
		customers.DELETE("/:id", deleteCustomerHandler)
		customers.GET("/:id/ledger", customerLedgerHandler)
		customers.GET("/:id/ledger/export", customerLedgerExportHandler)

		products := protected.Group("/products")
		products.GET("/search", searchProductsHandler)
		products.GET("/catalog", productCatalogHandler)
		products.GET("", listProductsHandler)
		products.POST("", createProductHandler)
		products.GET("/:id", getProductHandler)
		products.PUT("/:id", updateProductHandler)
		products.DELETE("/:id", archiveProductHandler)

		bills := protected.Group("/bills")
		bills.GET("/stats", billStatsHandler)
		bills.GET("/next-number", nextBillNumberHandler)
		bills.GET("", listBillsHandler)
		bills.POST("", createBillHandler)
		bills.GET("/:id", getBillHandler)
		bills.PUT("/:id", updateBillHandler)
		bills.DELETE("/:id", deleteBillHandler)

		payments := protected.Group("/payments")
		payments.GET("", listPaymentsHandler)
		payments.POST("", createPaymentHandler)
		payments.GET("/customer/:customerId", customerPaymentsHandler)
		payments.GET("/:id", getPaymentHandler)
		payments.DELETE("/:id", deletePaymentHandler)

		company := protected.Group("/company")
		company.GET("", getCompanyHandler)
		company.POST("", upsertCompanyHandler)

		protected.GET("/backup", backupHandler)
	}
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	logger := config.GetLogger()
	switch {
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case utils.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case utils.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		config.LogError(logger, "routes", c.HandlerName(), c.Request.URL.Path, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
	}
}
