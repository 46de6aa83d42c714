package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retreathub/booking-service/internal/dto"
	"github.com/retreathub/booking-service/internal/service"
)

// AdminHandler covers the back-office surface: retreat and room management
// plus the post-retreat feedback views.
type AdminHandler struct {
	retreatSvc  service.RetreatService
	feedbackSvc service.FeedbackService
}

func NewAdminHandler(retreatSvc service.RetreatService, feedbackSvc service.FeedbackService) *AdminHandler {
	return &AdminHandler{retreatSvc: retreatSvc, feedbackSvc: feedbackSvc}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/retreats", h.CreateRetreat)
	e.GET("/api/v1/retreats/:id", h.GetRetreat)
	e.POST("/api/v1/retreats/:id/rooms", h.CreateRoom)
	e.GET("/api/v1/retreats/:id/rooms", h.ListRooms)
	e.PUT("/api/v1/rooms/:id/capacity", h.UpdateRoomCapacity)
	e.POST("/api/v1/bookings/:id/feedback", h.SubmitFeedback)
	e.GET("/api/v1/retreats/:id/feedback/stats", h.FeedbackStats)
	e.GET("/api/v1/retreats/:id/feedback", h.ListFeedback)
}

func (h *AdminHandler) CreateRetreat(c echo.Context) error {
	var req dto.CreateRetreatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	retreat, err := h.retreatSvc.CreateRetreat(c.Request().Context(), service.CreateRetreatInput{
		Title:               req.Title,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		PriceCents:          req.PriceCents,
		DepositCents:        req.DepositCents,
		EarlyBirdPriceCents: req.EarlyBirdPriceCents,
		EarlyBirdUntil:      req.EarlyBirdUntil,
		InstallmentCount:    req.InstallmentCount,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, retreat)
}

func (h *AdminHandler) GetRetreat(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	retreat, err := h.retreatSvc.GetRetreat(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, retreat)
}

func (h *AdminHandler) CreateRoom(c echo.Context) error {
	retreatID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	var req dto.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	room, err := h.retreatSvc.CreateRoom(c.Request().Context(), retreatID, req.Name, req.Capacity)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToRoomResponse(room))
}

func (h *AdminHandler) ListRooms(c echo.Context) error {
	retreatID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	rooms, err := h.retreatSvc.ListRooms(c.Request().Context(), retreatID)
	if err != nil {
		return mapServiceError(err)
	}

	resp := make([]dto.RoomResponse, len(rooms))
	for i := range rooms {
		resp[i] = dto.ToRoomResponse(&rooms[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) UpdateRoomCapacity(c echo.Context) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}

	var req dto.UpdateRoomCapacityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	room, err := h.retreatSvc.UpdateRoomCapacity(c.Request().Context(), roomID, req.Capacity)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}

func (h *AdminHandler) SubmitFeedback(c echo.Context) error {
	bookingID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	fb, err := h.feedbackSvc.Submit(c.Request().Context(), service.SubmitFeedbackInput{
		BookingID:      bookingID,
		Rating:         req.Rating,
		RecommendScore: req.RecommendScore,
		Comment:        req.Comment,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, fb)
}

func (h *AdminHandler) FeedbackStats(c echo.Context) error {
	retreatID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	stats, err := h.feedbackSvc.Stats(c.Request().Context(), retreatID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListFeedback(c echo.Context) error {
	retreatID, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid retreat id")
	}

	band := c.QueryParam("band")
	list, err := h.feedbackSvc.ListByBand(c.Request().Context(), retreatID, band)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, list)
}
