package adjudication

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/adjudications", h.Adjudicate)
	api.GET("/adjudications/:id", h.Get)
	api.GET("/adjudications/:id/report", h.Report)
	api.GET("/claims/:id/decisions", h.ListByClaim)
}

type adjudicateRequest struct {
	ClaimID       string `json:"claim_id,omitempty"`
	Document      string `json:"document,omitempty"`
	MedicalReport string `json:"medical_report,omitempty"`
	PolicyNumber  string `json:"policy_number,omitempty"`
}

// Adjudicate runs the pipeline either on a stored claim (claim_id) or on an
// inline document plus policy number.
func (h *Handler) Adjudicate(c echo.Context) error {
	var req adjudicateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	switch {
	case req.ClaimID != "":
		rec, err := h.svc.AdjudicateStored(ctx, req.ClaimID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(http.StatusCreated, rec)
	case req.Document != "" && req.PolicyNumber != "":
		rec, err := h.svc.AdjudicateDocument(ctx, req.Document, req.MedicalReport, req.PolicyNumber)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(http.StatusCreated, rec)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "claim_id or document+policy_number required")
	}
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid adjudication id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "adjudication not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Report(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid adjudication id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "adjudication not found")
	}
	if rec.Report == "" {
		return echo.NewHTTPError(http.StatusNotFound, "no report for this adjudication")
	}
	return c.String(http.StatusOK, rec.Report)
}

func (h *Handler) ListByClaim(c echo.Context) error {
	records, err := h.svc.ListByClaim(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}
