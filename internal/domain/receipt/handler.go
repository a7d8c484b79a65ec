package receipt

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/auth"
	"github.com/duardo10/EndoData-backend-sub000/pkg/pagination"
)

// Handler exposes receipt endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints: all clinic roles
	readGroup := api.Group("/receipts", auth.RequireRole("admin", "professional", "assistant"))
	readGroup.GET("", h.List)
	readGroup.GET("/reports/monthly", h.MonthlyReport)
	readGroup.GET("/:id", h.Get)

	// Write endpoints: professionals only
	writeGroup := api.Group("/receipts", auth.RequireRole("admin", "professional"))
	writeGroup.POST("", h.Create)
	writeGroup.PUT("/:id", h.Update)
	writeGroup.DELETE("/:id", h.Delete)
}

// -- Receipt Handlers --

func (h *Handler) Create(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var rc Receipt
	if err := c.Bind(&rc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rc.UserID = owner
	if err := h.svc.Create(c.Request().Context(), &rc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rc)
}

func (h *Handler) Get(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rc, err := h.svc.Get(c.Request().Context(), id, owner)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rc)
}

func (h *Handler) List(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var patientID uuid.UUID
	if raw := c.QueryParam("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
		}
		patientID = id
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), owner, patientID,
		c.QueryParam("status"), pg.Limit(), pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var rc Receipt
	if err := c.Bind(&rc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rc.ID = id
	rc.UserID = owner
	if err := h.svc.Update(c.Request().Context(), &rc); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rc)
}

func (h *Handler) Delete(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, owner); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Report Handlers --

// MonthlyReport serves GET /receipts/reports/monthly?month=M&year=Y. Both
// parameters are required integers; validation failures return 400 before
// any aggregation runs.
func (h *Handler) MonthlyReport(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be an integer")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}
	report, err := h.svc.MonthlyReport(c.Request().Context(), owner, month, year)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
