package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retreathub/booking-service/internal/dto"
	"github.com/retreathub/booking-service/internal/service"
)

type WebhookHandler struct {
	paymentSvc service.PaymentService
	logger     *zap.Logger
}

func NewWebhookHandler(paymentSvc service.PaymentService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{paymentSvc: paymentSvc, logger: logger}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/webhooks/payment", h.HandlePaymentEvent)
}

// HandlePaymentEvent ingests processor webhook events. Unrecognized event
// types and replayed event ids are acknowledged with 200 so the processor
// stops retrying.
func (h *WebhookHandler) HandlePaymentEvent(c echo.Context) error {
	var req dto.WebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}
	if req.ID == "" || req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event id and type are required")
	}

	if req.Type != service.EventPaymentSucceeded && req.Type != service.EventPaymentFailed {
		h.logger.Debug("ignoring webhook event", zap.String("event_type", req.Type))
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	ev := service.ProcessorEvent{
		EventID:       req.ID,
		EventType:     req.Type,
		IntentID:      req.Data.Object.ID,
		BookingNumber: req.Data.Object.Metadata["booking_number"],
		AmountCents:   req.Data.Object.Amount,
	}

	duplicate, err := h.paymentSvc.HandleProcessorEvent(c.Request().Context(), ev)
	if err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("event_id", req.ID),
			zap.String("event_type", req.Type),
			zap.Error(err),
		)
		return mapServiceError(err)
	}

	if duplicate {
		return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "processed"})
}
