package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/dal"
	"launcx-order-api/internal/handler"
	"launcx-order-api/internal/idgen"
	"launcx-order-api/internal/middleware"
	"launcx-order-api/internal/mq"
	"launcx-order-api/internal/queue"
	"launcx-order-api/internal/settlement"
	"launcx-order-api/internal/system"
)

func main() {
	_ = godotenv.Load()
	config.Init()

	dal.InitDB()
	dal.InitRedis()
	dal.InitRabbitMQ()
	idgen.InitFromEnv()
	system.Init()

	pub := mq.NewPublisher()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settlement.NewReconciler(pub).StartLoops(ctx)
	queue.NewDrainer().Start(ctx)

	if config.C.Server.Mode != "" {
		gin.SetMode(config.C.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.Recover())

	txnHandler := handler.NewTransactionHandler(pub)
	wdHandler := handler.NewWithdrawalHandler()
	cbHandler := handler.NewCallbackHandler(pub)

	r.GET("/healthz", handler.Healthz)

	api := r.Group("/api/v1")
	{
		// Provider webhooks authenticate by signature, not partner key.
		api.POST("/transactions/callback", cbHandler.Hilogate)
		api.POST("/transaction/callback/oy", cbHandler.OY)
		api.POST("/transaction/callback/gidi", cbHandler.Gidi)
		api.POST("/withdrawals/callback", cbHandler.Withdrawal)

		api.GET("/payment/:id/qr", txnHandler.QR)

		api.POST("/system/refresh", middleware.InternalOnly(), handler.RefreshSettings)

		authed := api.Group("", middleware.PartnerAuth())
		{
			authed.POST("/transactions", txnHandler.Create)
			authed.POST("/withdrawals", wdHandler.Create)
			authed.GET("/banks", wdHandler.Banks)
		}
	}

	addr := ":" + config.C.Server.Port
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
