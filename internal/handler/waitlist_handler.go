package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retreathub/booking-service/internal/dto"
	"github.com/retreathub/booking-service/internal/service"
)

type WaitlistHandler struct {
	waitlistSvc service.WaitlistService
}

func NewWaitlistHandler(waitlistSvc service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistSvc: waitlistSvc}
}

func (h *WaitlistHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/retreats/:id/waitlist", h.Join)
	// Accept and decline are GET because they are followed from email links.
	e.GET("/api/v1/waitlist/:token/accept", h.Accept)
	e.GET("/api/v1/waitlist/:token/decline", h.Decline)
}

func (h *WaitlistHandler) Join(c echo.Context) error {
	retreatID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	var req dto.JoinWaitlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.GuestName == "" || req.GuestEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "guest_name and guest_email are required")
	}

	entry, err := h.waitlistSvc.Join(c.Request().Context(), service.JoinWaitlistInput{
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

	return c.JSON(http.StatusCreated, dto.ToWaitlistResponse(entry))
}

func (h *WaitlistHandler) Accept(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token")
	}

	booking, err := h.waitlistSvc.Accept(c.Request().Context(), token)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *WaitlistHandler) Decline(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token")
	}

	entry, err := h.waitlistSvc.Decline(c.Request().Context(), token)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToWaitlistResponse(entry))
}
