package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.LockWaitSeconds)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is absent; cache and limiter degrade

	eventRepo := repository.NewEventRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)

	var gateway payment.Gateway
	if cfg.KhaltiSecretKey != "" {
		gateway = payment.NewKhaltiClient(cfg.KhaltiBaseURL, cfg.KhaltiSecretKey, cfg.PaymentReturnURL, cfg.WebsiteURL)
	} else {
		log.Println("no KHALTI_SECRET_KEY set, using mock payment gateway")
		gateway = payment.NewMockGateway()
	}

	bookingSvc := service.NewBookingService(eventRepo, seatRepo, bookingRepo, paymentRepo,
		database.NewTxRunner(db), queue.NewPublisher())
	paymentSvc := service.NewPaymentService(bookingRepo, eventRepo, paymentRepo, gateway, cfg.PaymentProvider)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Health:  handler.NewHealthHandler(db),
		Event:   handler.NewEventHandler(eventRepo, seatRepo),
		Booking: handler.NewBookingHandler(bookingSvc),
		Payment: handler.NewPaymentHandler(paymentSvc),
	}, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
