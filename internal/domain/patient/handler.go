package patient

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/labms/labms/internal/platform/auth"
	"github.com/labms/labms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts patient endpoints on the given group. Reads are open
// to all staff roles; writes require the receptionist role (admins bypass the
// role check).
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleReceptionist, auth.RoleTechnician))
	write := api.Group("", auth.RequireRole(auth.RoleReceptionist))

	write.POST("", h.Register)
	read.GET("", h.List)
	read.GET("/stats", h.Stats)
	read.GET("/:mrNo", h.Get)
	write.PUT("/:mrNo", h.Update)
	write.DELETE("/:mrNo", h.Delete)
	read.GET("/:mrNo/receipt", h.Receipt)
	read.GET("/:mrNo/lab-report", h.LabReport)
}

func mrNoParam(c echo.Context) (int, error) {
	mrNo, err := strconv.Atoi(c.Param("mrNo"))
	if err != nil || mrNo <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid mr_no")
	}
	return mrNo, nil
}

func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errs := p.Validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  errs,
		})
	}
	if err := h.svc.Register(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	mrNo, err := mrNoParam(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), mrNo)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	mrNo, err := mrNoParam(c)
	if err != nil {
		return err
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errs := p.Validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"errors":  errs,
		})
	}
	p.MrNo = mrNo
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	mrNo, err := mrNoParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), mrNo); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Receipt(c echo.Context) error {
	return h.renderPDF(c, h.svc.Receipt, "receipt")
}

func (h *Handler) LabReport(c echo.Context) error {
	return h.renderPDF(c, h.svc.LabReport, "lab-report")
}

func (h *Handler) renderPDF(c echo.Context, render func(ctx context.Context, mrNo int) ([]byte, error), name string) error {
	mrNo, err := mrNoParam(c)
	if err != nil {
		return err
	}
	pdf, err := render(c.Request().Context(), mrNo)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`inline; filename="`+name+`_`+strconv.Itoa(mrNo)+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
