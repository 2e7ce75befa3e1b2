package report

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labms/labms/internal/platform/response"
)

// Handler exposes the report store over HTTP with the standard envelope.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the report endpoints on g. The static /health and
// /stats routes take precedence over the :patientId parameter, as does
// /:patientId/list over /:patientId/:filename.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Upload)
	g.GET("/health", h.Health)
	g.GET("/stats", h.Stats)
	g.GET("/:patientId", h.DownloadLatest)
	g.GET("/:patientId/list", h.List)
	g.GET("/:patientId/:filename", h.Download)
	g.DELETE("/:patientId/:filename", h.Delete)
}

// Upload handles POST /reports with multipart fields "file" and "patient_id".
func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(nil, "No file part in request"))
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, response.Error(nil, "Unable to read uploaded file"))
	}
	defer f.Close()

	stored, err := h.svc.Upload(c.Request().Context(), c.FormValue("patient_id"), fh.Filename, f)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, response.Success(stored, "Report uploaded successfully",
		map[string]interface{}{"patient_id": stored.PatientID}))
}

// DownloadLatest handles GET /reports/:patientId.
func (h *Handler) DownloadLatest(c echo.Context) error {
	stored, err := h.svc.Download(c.Request().Context(), c.Param("patientId"), "")
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Attachment(stored.Path, stored.FileName)
}

// Download handles GET /reports/:patientId/:filename.
func (h *Handler) Download(c echo.Context) error {
	stored, err := h.svc.Download(c.Request().Context(), c.Param("patientId"), c.Param("filename"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Attachment(stored.Path, stored.FileName)
}

// List handles GET /reports/:patientId/list. No reports is a success with
// count 0, not an error.
func (h *Handler) List(c echo.Context) error {
	reports, err := h.svc.List(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, response.Success(reports, "Reports retrieved successfully",
		map[string]interface{}{"count": len(reports)}))
}

// Delete handles DELETE /reports/:patientId/:filename.
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("patientId"), c.Param("filename")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, response.Success(nil, "Report deleted successfully", nil))
}

// Health handles GET /reports/health.
func (h *Handler) Health(c echo.Context) error {
	st := h.svc.Health()
	if !st.Healthy {
		return c.JSON(http.StatusServiceUnavailable, response.Error(nil, "Report store unhealthy"))
	}
	return c.JSON(http.StatusOK, response.Success(st, "Report store healthy", nil))
}

// Stats handles GET /reports/stats.
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Info(h.svc.Stats(), "Report store statistics"))
}

func (h *Handler) respondError(c echo.Context, err error) error {
	if msgs, ok := IsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, response.Error(msgs, "Validation failed"))
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, response.Error(nil, "Report not found"))
	case errors.Is(err, ErrTimeout):
		return c.JSON(http.StatusGatewayTimeout, response.Error(nil, "Request timed out"))
	default:
		return c.JSON(http.StatusInternalServerError, response.Error(nil, "Internal server error"))
	}
}
