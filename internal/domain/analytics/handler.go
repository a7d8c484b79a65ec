package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/auth"
)

// Query parameter defaults. Only absence applies them; out-of-range values
// are rejected, never clamped.
const (
	defaultWeeks  = 8
	defaultLimit  = 10
	defaultPeriod = 6
)

// Handler exposes the dashboard endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Dashboards are read-only; every clinic role can view them.
	g := api.Group("/dashboard", auth.RequireRole("admin", "professional", "assistant"))
	g.GET("/summary", h.Summary)
	g.GET("/metrics", h.Metrics)
	g.GET("/weekly-patients", h.WeeklyPatients)
	g.GET("/top-medications", h.TopMedications)
	g.GET("/monthly-revenue-comparison", h.MonthlyComparison)
}

// intParam reads an integer query parameter, applying def when absent.
func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func (h *Handler) Summary(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	sum, err := h.svc.Summary(c.Request().Context(), owner)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) Metrics(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	m, err := h.svc.AdvancedMetrics(c.Request().Context(), owner)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) WeeklyPatients(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	weeks, err := intParam(c, "weeks", defaultWeeks)
	if err != nil {
		return err
	}
	series, err := h.svc.WeeklyPatients(c.Request().Context(), owner, weeks)
	if err != nil {
		if errors.Is(err, ErrInvalidParam) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, series)
}

func (h *Handler) TopMedications(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	limit, err := intParam(c, "limit", defaultLimit)
	if err != nil {
		return err
	}
	period, err := intParam(c, "period", defaultPeriod)
	if err != nil {
		return err
	}
	list, err := h.svc.TopMedications(c.Request().Context(), owner, limit, period)
	if err != nil {
		if errors.Is(err, ErrInvalidParam) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) MonthlyComparison(c echo.Context) error {
	owner, ok := auth.OwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	cmp, err := h.svc.MonthlyComparison(c.Request().Context(), owner)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cmp)
}
