package facility

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/internal/domain/directory"
	"github.com/carebook/carebook/pkg/pagination"
)

// DoctorLister is the slice of the directory the facility endpoints need to
// render a facility's staff.
type DoctorLister interface {
	ListDoctors(ctx context.Context, f directory.DoctorFilter, limit, offset int) ([]*directory.Doctor, int, error)
}

type Handler struct {
	svc     *Service
	doctors DoctorLister
}

func NewHandler(svc *Service, doctors DoctorLister) *Handler {
	return &Handler{svc: svc, doctors: doctors}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/hospitals", h.ListHospitals)
	api.POST("/hospitals", h.CreateHospital)
	api.GET("/hospitals/:id", h.GetHospital)
	api.PUT("/hospitals/:id", h.UpdateHospital)
	api.DELETE("/hospitals/:id", h.DeleteHospital)
	api.GET("/hospitals/:id/doctors", h.HospitalDoctors)
	api.GET("/hospitals/:id/statistics", h.HospitalStatistics)

	api.GET("/clinics", h.ListClinics)
	api.POST("/clinics", h.CreateClinic)
	api.GET("/clinics/:id", h.GetClinic)
	api.PUT("/clinics/:id", h.UpdateClinic)
	api.DELETE("/clinics/:id", h.DeleteClinic)
	api.GET("/clinics/:id/doctors", h.ClinicDoctors)
}

func httpError(err error) error {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "validation failed", "details": verrs,
		})
	case errors.Is(err, ErrHasDoctors):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Hospitals --

func (h *Handler) CreateHospital(c echo.Context) error {
	var hospital Hospital
	if err := c.Bind(&hospital); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateHospital(c.Request().Context(), &hospital); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, hospital)
}

func (h *Handler) GetHospital(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	hospital, err := h.svc.GetHospital(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hospital)
}

func (h *Handler) UpdateHospital(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var hospital Hospital
	if err := c.Bind(&hospital); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hospital.ID = id
	if err := h.svc.UpdateHospital(c.Request().Context(), &hospital); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, hospital)
}

func (h *Handler) DeleteHospital(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteHospital(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHospitals(c echo.Context) error {
	var f HospitalFilter
	f.City = c.QueryParam("city")
	f.CareType = c.QueryParam("care_type")
	f.Search = c.QueryParam("search")
	if v := c.QueryParam("emergency_services"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid emergency_services, expected true or false")
		}
		f.EmergencyServices = &b
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListHospitals(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) HospitalDoctors(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ok, err := h.svc.HospitalExists(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "hospital not found")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.doctors.ListDoctors(c.Request().Context(),
		directory.DoctorFilter{HospitalID: &id}, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) HospitalStatistics(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.HospitalStatistics(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// -- Clinics --

func (h *Handler) CreateClinic(c echo.Context) error {
	var clinic Clinic
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateClinic(c.Request().Context(), &clinic); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, clinic)
}

func (h *Handler) GetClinic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	clinic, err := h.svc.GetClinic(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) UpdateClinic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var clinic Clinic
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	clinic.ID = id
	if err := h.svc.UpdateClinic(c.Request().Context(), &clinic); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) DeleteClinic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteClinic(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListClinics(c echo.Context) error {
	var f ClinicFilter
	f.City = c.QueryParam("city")
	f.CareType = c.QueryParam("care_type")
	f.Search = c.QueryParam("search")
	if v := c.QueryParam("accepts_walk_ins"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid accepts_walk_ins, expected true or false")
		}
		f.AcceptsWalkIns = &b
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClinics(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ClinicDoctors(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ok, err := h.svc.ClinicExists(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "clinic not found")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.doctors.ListDoctors(c.Request().Context(),
		directory.DoctorFilter{ClinicID: &id}, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
