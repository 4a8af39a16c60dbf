package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"lunchbox-be/internal/checkout"
	"lunchbox-be/internal/children"
	"lunchbox-be/internal/config"
	"lunchbox-be/internal/db"
	"lunchbox-be/internal/logger"
	"lunchbox-be/internal/menu"
	"lunchbox-be/internal/order"
	"lunchbox-be/internal/payment"
	"lunchbox-be/internal/payment/webhook"
	"lunchbox-be/internal/pricing"
	transporthttp "lunchbox-be/internal/transport/http"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	gateway := payment.NewHostedGateway(payment.GatewayConfig{
		BaseURL:       cfg.ProcessorBaseURL,
		APIKey:        cfg.ProcessorAPIKey,
		WebhookSecret: cfg.WebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	})

	menuRepo := menu.NewRepository(database)
	childrenRepo := children.NewRepository(database)
	paymentRepo := payment.NewRepository(database)

	checkoutRepo := checkout.NewRepository(database)
	checkoutSvc := checkout.NewService(checkoutRepo, childrenRepo, gateway, checkout.Config{
		Pricing: pricing.Config{
			TaxRate:                 cfg.TaxRate,
			ServiceFeeRate:          cfg.ServiceFeeRate,
			PassThroughProcessorFee: cfg.PassThroughProcessorFee,
			ProcessorPercentFee:     cfg.ProcessorPercentFee,
			ProcessorFixedFee:       cfg.ProcessorFixedFee,
		},
		MinChargeAmount: cfg.MinChargeAmount,
		IntentTTL:       cfg.IntentTTL,
	})

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, childrenRepo, menuRepo, gateway, order.Config{
		ReorderUseCurrentPrice: cfg.ReorderUseCurrentPrice,
	})

	webhookHandler := webhook.NewHandler(checkoutSvc, gateway, paymentRepo)
	handler := transporthttp.NewHandler(checkoutSvc, orderSvc, webhookHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := checkout.NewSweeper(checkoutSvc, cfg.SweepInterval)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: handler.Router(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("server running at http://localhost:%s/", cfg.AppPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
