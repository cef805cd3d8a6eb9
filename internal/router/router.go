package router

import (
	"fmt"
	"strings"

	"github.com/mara-shop/internal/cache"
	"github.com/mara-shop/internal/config"
	adminhandlers "github.com/mara-shop/internal/http/handlers/admin"
	publichandlers "github.com/mara-shop/internal/http/handlers/public"
	"github.com/mara-shop/internal/http/response"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mara"
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Order.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Order.CheckoutRateLimit.MaxRequests,
		Message:       "too many checkout attempts, retry in %d seconds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{
			"status":        "ok",
			"cart_store":    c.CartStoreName,
			"cart_sessions": c.CartService.CachedSessions(),
			"redis":         cache.Enabled(),
			"queue":         c.QueueClient.Enabled(),
		})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/orders/track", publicHandler.TrackOrder)
		}

		// 购物车与结算（匿名会话）
		shop := apiV1.Group("")
		shop.Use(CartSessionMiddleware(c.SessionManager))
		{
			shop.GET("/cart", publicHandler.GetCart)
			shop.GET("/cart/count", publicHandler.GetCartCount)
			shop.POST("/cart/items", publicHandler.AddCartItem)
			shop.POST("/cart/items/:product_id/increment", publicHandler.IncrementCartItem)
			shop.POST("/cart/items/:product_id/decrement", publicHandler.DecrementCartItem)
			shop.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			shop.DELETE("/cart", publicHandler.ClearCart)
			shop.POST("/checkout", RateLimitMiddleware(cache.Client(), checkoutRule, KeyByIPAndJSONField("email")), publicHandler.Checkout)
			shop.GET("/orders", publicHandler.ListSessionOrders)
		}

		// 后台接口
		admin := apiV1.Group("/admin")
		admin.Use(AdminKeyMiddleware(cfg.Admin.APIKey))
		{
			admin.GET("/products", adminHandler.ListProducts)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
		}
	}

	return r
}
