package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/retreathub/booking-service/internal/dto"
	"github.com/retreathub/booking-service/internal/lifecycle"
	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
	refundSvc  service.RefundService
	paymentSvc service.PaymentService
}

func NewBookingHandler(bookingSvc service.BookingService, refundSvc service.RefundService, paymentSvc service.PaymentService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, refundSvc: refundSvc, paymentSvc: paymentSvc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/retreats/:id/bookings", h.CreateBooking)
	e.GET("/api/v1/bookings", h.ListBookings)
	e.GET("/api/v1/bookings/export", h.ExportBookings)
	e.GET("/api/v1/bookings/:id", h.GetBooking)
	e.GET("/api/v1/bookings/:id/payments", h.ListPayments)
	e.GET("/api/v1/bookings/:id/schedule", h.ListSchedule)
	e.POST("/api/v1/bookings/:id/confirm", h.Confirm)
	e.POST("/api/v1/bookings/:id/complete", h.Complete)
	e.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	e.POST("/api/v1/bookings/:id/refund", h.Refund)
	e.POST("/api/v1/bookings/:id/room", h.AssignRoom)
	e.POST("/api/v1/bookings/:id/restore-schedule", h.RestoreSchedule)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	retreatID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.GuestName == "" || req.GuestEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "guest_name and guest_email are required")
	}
	if req.RoomID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "room_id is required")
	}

	booking, err := h.bookingSvc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		RetreatID:   retreatID,
		RoomID:      req.RoomID,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		GuestPhone:  req.GuestPhone,
		GuestsCount: req.GuestsCount,
		Language:    req.Language,
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingSvc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	filter := repository.BookingFilter{}
	if v := c.QueryParam("retreat_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat_id")
		}
		filter.RetreatID = uint(id)
	}
	if v := c.QueryParam("status"); v != "" {
		filter.Status = models.BookingStatus(v)
	}
	if v := c.QueryParam("payment_status"); v != "" {
		filter.PaymentStatus = models.PaymentState(v)
	}

	bookings, err := h.bookingSvc.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}
	return c.JSON(http.StatusOK, resp)
}

// ExportBookings streams the current booking list as CSV.
func (h *BookingHandler) ExportBookings(c echo.Context) error {
	bookings, err := h.bookingSvc.ListBookings(c.Request().Context(), repository.BookingFilter{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	_ = w.Write([]string{"booking_number", "guest_name", "guest_email", "status", "payment_status", "total_eur", "balance_due_eur", "check_in", "check_out"})
	for _, b := range bookings {
		_ = w.Write([]string{
			b.BookingNumber,
			b.GuestName,
			b.GuestEmail,
			string(b.Status),
			string(b.PaymentStatus),
			fmt.Sprintf("%.2f", float64(b.TotalAmountCents)/100),
			fmt.Sprintf("%.2f", float64(b.BalanceDueCents)/100),
			b.CheckInDate.Format("2006-01-02"),
			b.CheckOutDate.Format("2006-01-02"),
		})
	}
	w.Flush()
	return nil
}

func (h *BookingHandler) Confirm(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingSvc.Confirm(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Complete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.bookingSvc.Complete(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.bookingSvc.Cancel(c.Request().Context(), id, req.Reason, req.SendEmail)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Refund(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.RefundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	refund, err := h.refundSvc.Refund(c.Request().Context(), id, req.AmountCents, req.Reason)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, refund)
}

func (h *BookingHandler) AssignRoom(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.AssignRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RoomID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "room_id is required")
	}

	booking, err := h.bookingSvc.AssignRoom(c.Request().Context(), id, req.RoomID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) RestoreSchedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.RestoreScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.paymentSvc.RestoreSchedule(c.Request().Context(), id, req.ShiftDays); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) ListPayments(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	payments, err := h.paymentSvc.ListPayments(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *BookingHandler) ListSchedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	entries, err := h.paymentSvc.ListSchedule(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// mapServiceError translates service sentinel errors to HTTP status codes.
func mapServiceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrRetreatNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrWaitlistNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientInventory):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrOfferNotActive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidRefundAmount),
		errors.Is(err, service.ErrRoomRetreatMismatch),
		errors.Is(err, service.ErrInvalidFeedback):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
