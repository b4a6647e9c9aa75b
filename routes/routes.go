package routes

import (
	"os"
	"strings"

	"tradestack-backend/config"
	"tradestack-backend/controllers"
	"tradestack-backend/services"
	"tradestack-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	allowedOrigins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.RequestLogger())

	// Service wiring
	notifier := services.NewTwilioNotifier()
	invoiceSvc := services.NewInvoiceService(config.DB, notifier)
	processor := services.NewStripeProcessor(os.Getenv("STRIPE_SECRET_KEY"))
	paymentSvc := services.NewPaymentService(config.DB, processor)
	reconciler := services.NewReconcileService(config.DB, processor)

	invoiceController := controllers.NewInvoiceController(invoiceSvc)
	paymentController := controllers.NewPaymentController(paymentSvc, reconciler, invoiceSvc)
	reportController := controllers.ReportController{}

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Redirect landing endpoints hit by the paying client after
	// checkout; no merchant auth. Outcomes are re-verified with the
	// processor before anything changes.
	public := r.Group("/public")
	{
		public.GET("/payments/confirm", paymentController.ConfirmPayment)
		public.GET("/payments/cancelled", paymentController.CancelPayment)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Lead routes
		leads := api.Group("/leads")
		{
			leads.POST("", controllers.CreateLead)
			leads.GET("", controllers.GetLeads)
			leads.GET("/:id", controllers.GetLead)
			leads.PUT("/:id", controllers.UpdateLead)
			leads.DELETE("/:id", controllers.DeleteLead)
		}

		// Offering routes
		offerings := api.Group("/offerings")
		{
			offerings.POST("", controllers.CreateOffering)
			offerings.GET("", controllers.GetOfferings)
			offerings.GET("/:id", controllers.GetOffering)
			offerings.PUT("/:id", controllers.UpdateOffering)
			offerings.DELETE("/:id", controllers.DeleteOffering)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoiceController.Create)
			invoices.GET("", invoiceController.List)
			invoices.GET("/:id", invoiceController.Get)
			invoices.PUT("/:id", invoiceController.Update)
			invoices.DELETE("/:id", invoiceController.Delete)
			invoices.POST("/:id/send", invoiceController.Send)
			invoices.POST("/:id/cancel", invoiceController.Cancel)
			invoices.POST("/:id/checkout", paymentController.CreateCheckout)
		}

		// Payment account routes
		payments := api.Group("/payments")
		{
			payments.GET("/account", paymentController.GetAccount)
			payments.POST("/account", paymentController.LinkAccount)
		}

		// Reports routes
		api.GET("/reports", reportController.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Settings routes
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
		}
	}

	return r
}
