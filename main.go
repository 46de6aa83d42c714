package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/retreathub/booking-service/config"
	"github.com/retreathub/booking-service/internal/handler"
	"github.com/retreathub/booking-service/internal/middleware"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/internal/service"
	"github.com/retreathub/booking-service/internal/worker"
	"github.com/retreathub/booking-service/pkg/database"
	"github.com/retreathub/booking-service/pkg/mailer"
	"github.com/retreathub/booking-service/pkg/payments"
	"github.com/retreathub/booking-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db := database.NewPostgresDB(cfg.DSN())

	// Event publishing is optional; without a broker the service runs
	// standalone.
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
	}

	var provider payments.Provider
	if cfg.StripeKey != "" {
		provider = payments.NewStripeProvider(cfg.StripeKey)
	}

	// Repositories
	retreatRepo := repository.NewRetreatRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// Notifications
	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	dispatcher := notification.NewEmailDispatcher(notificationRepo, sender, cfg, logger)

	// Services
	bookingSvc := service.NewBookingService(bookingRepo, retreatRepo, roomRepo, paymentRepo, dispatcher, publisher, logger)
	paymentSvc := service.NewPaymentService(bookingRepo, paymentRepo, bookingSvc, dispatcher, publisher, logger)
	refundSvc := service.NewRefundService(bookingRepo, paymentRepo, roomRepo, provider, dispatcher, publisher, logger)
	waitlistSvc := service.NewWaitlistService(waitlistRepo, retreatRepo, roomRepo, bookingSvc, dispatcher, cfg, logger)
	retreatSvc := service.NewRetreatService(retreatRepo, roomRepo, bookingRepo, logger)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, bookingRepo)

	// Freed seats flow back to the waitlist from cancellations, refunds and
	// capacity increases.
	bookingSvc.SetPromoter(waitlistSvc)
	refundSvc.SetPromoter(waitlistSvc)
	retreatSvc.SetPromoter(waitlistSvc)

	sweeper := worker.NewSweeper(paymentSvc, waitlistSvc, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("failed to start sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-service"})
	})

	handler.NewBookingHandler(bookingSvc, refundSvc, paymentSvc).RegisterRoutes(e)
	handler.NewWebhookHandler(paymentSvc, logger).RegisterRoutes(e)
	handler.NewWaitlistHandler(waitlistSvc).RegisterRoutes(e)
	handler.NewAdminHandler(retreatSvc, feedbackSvc).RegisterRoutes(e)

	logger.Info("booking service starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
