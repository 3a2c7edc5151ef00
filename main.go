package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"

	"soalku_backend/internals/configs"
	database "soalku_backend/internals/databases"
	attemptService "soalku_backend/internals/features/exams/attempts/service"
	subScheduler "soalku_backend/internals/features/finance/subscriptions/scheduler"
	transactionService "soalku_backend/internals/features/finance/transactions/service"
	authScheduler "soalku_backend/internals/features/users/auth/scheduler"
	authService "soalku_backend/internals/features/users/auth/service"
	helper "soalku_backend/internals/helpers"
	"soalku_backend/internals/helpers/mailer"
	"soalku_backend/internals/helpers/rabbitmq"
	"soalku_backend/internals/helpers/upload"
	middlewares "soalku_backend/internals/middlewares"
	routes "soalku_backend/internals/route"
	"soalku_backend/internals/seeds"
)

func main() {
	cfg := configs.LoadEnv()
	loc := cfg.Location()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               int(cfg.UploadMaxBytes) + 1<<20, // file + field form lain
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"}, // sesuaikan dengan CIDR Cloudflare jika perlu
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB(cfg)
	database.TunePool(cfg.DBDriver)
	database.WarmUpQueries()

	if cfg.SeedOnStart {
		seeds.RunAllSeeds(database.DB, cfg.SeedDir)
	}

	// 📦 Upload (local / OSS)
	uploader, err := upload.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("❌ Upload storage: %v", err)
	}

	// ✉️ Invoice: lewat RabbitMQ kalau AMQP_URL ada, selain itu langsung SMTP
	invoiceMailer := mailer.NewInvoiceMailer(mailer.NewSenderFromConfig(cfg))
	var notifier transactionService.InvoiceNotifier = invoiceMailer
	var (
		producer *rabbitmq.Producer
		consumer *rabbitmq.Consumer
	)
	if cfg.AMQPURL != "" {
		if producer, err = rabbitmq.NewProducer(cfg.AMQPURL); err != nil {
			log.Printf("⚠️ RabbitMQ producer: %v (invoice dikirim langsung)", err)
		} else {
			notifier = rabbitmq.NewInvoicePublisher(producer, invoiceMailer)
			if consumer, err = rabbitmq.NewConsumer(cfg.AMQPURL); err != nil {
				log.Printf("⚠️ RabbitMQ consumer: %v", err)
			} else if err := rabbitmq.StartInvoiceConsumer(consumer, invoiceMailer); err != nil {
				log.Printf("⚠️ Invoice consumer: %v", err)
			}
		}
	}

	// ✅ MIDTRANS
	var snapCreator transactionService.SnapCreator
	if cfg.MidtransServerKey != "" {
		snapCreator = transactionService.InitMidtrans(cfg.MidtransServerKey, cfg.MidtransUseProd)
	}
	if cfg.MidtransBypassSignature != "" && cfg.IsProduction() {
		log.Println("⚠️ MIDTRANS_BYPASS_SIGNATURE diabaikan di production")
	}

	trxSvc := transactionService.NewTransactionService(database.DB, transactionService.Options{
		Snap:            snapCreator,
		Notifier:        notifier,
		Location:        loc,
		ServerKey:       cfg.MidtransServerKey,
		BypassSignature: cfg.MidtransBypassSignature,
		Production:      cfg.IsProduction(),
	})

	googleVerifier := authService.FuturendaVerifier{ClientID: cfg.GoogleClientID}
	authSvc := authService.NewAuthService(database.DB, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, googleVerifier)

	// ⏱ scheduler setelah DB siap
	c := cron.New(cron.WithLocation(loc))
	if _, err := authScheduler.RegisterBlacklistCleanup(c, database.DB, cfg.BlacklistCleanupSchedule, cfg.TokenBlacklistTTLDays); err != nil {
		log.Fatalf("❌ Jadwal cleanup blacklist: %v", err)
	}
	if _, err := subScheduler.RegisterExpirySweep(c, database.DB, cfg.SubscriptionExpirySchedule, loc); err != nil {
		log.Fatalf("❌ Jadwal expiry langganan: %v", err)
	}
	c.Start()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, routes.Deps{
		Config:       cfg,
		Uploader:     uploader,
		Auth:         authSvc,
		Attempts:     attemptService.NewAttemptService(database.DB, loc),
		Transactions: trxSvc,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := cfg.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: fiber -> cron -> invoice yang masih jalan -> AMQP -> DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	<-c.Stop().Done()
	trxSvc.Wait()

	if consumer != nil {
		consumer.Close()
	}
	if producer != nil {
		producer.Close()
	}
	database.Close(database.DB)
}
