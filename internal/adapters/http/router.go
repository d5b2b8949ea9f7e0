package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasvieira/inventory/internal/adapters/config"
	"github.com/lucasvieira/inventory/internal/adapters/http/controllers"
	"github.com/lucasvieira/inventory/internal/adapters/http/middleware"
)

type Router struct {
	healthController      *controllers.HealthController
	productController     *controllers.ProductController
	transactionController *controllers.TransactionController
	rateLimiter           middleware.RateLimiter
}

func NewRouter(
	healthController *controllers.HealthController,
	productController *controllers.ProductController,
	transactionController *controllers.TransactionController,
	rateLimiter middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:      healthController,
		productController:     productController,
		transactionController: transactionController,
		rateLimiter:           rateLimiter,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	rl := r.rateLimiter

	apiGroup := router.Group("/api")
	v1Group := apiGroup.Group("/v1")
	{
		v1Group.Use(middleware.LogRequest())
		v1Group.GET("/health", r.healthController.Health)

		v1Group.POST("/products", r.productController.CreateProduct)
		v1Group.GET("/products", r.productController.GetAll)
		v1Group.GET("/products/:id", r.productController.GetByID)
		v1Group.PATCH("/products/:id", r.productController.UpdateProduct)
		v1Group.DELETE("/products/:id", r.productController.DeactivateProduct)

		v1Group.POST("/products/:id/purchase", middleware.RateLimit(rl, 30, 1*time.Minute), r.transactionController.Purchase)
		v1Group.POST("/products/:id/sale", middleware.RateLimit(rl, 30, 1*time.Minute), r.transactionController.Sale)
	}
}

func (r *Router) ListenAndServe(ctx context.Context, config config.HTTPConfig) error {
	engine := gin.Default()
	r.SetupRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", config.BindInterface, config.Port),
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
