package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebook/carebook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.List)
	api.POST("/appointments", h.Create)
	api.GET("/appointments/today", h.Today)
	api.GET("/appointments/upcoming", h.Upcoming)
	api.GET("/appointments/calendar", h.Calendar)
	api.GET("/appointments/statistics", h.Statistics)
	api.GET("/appointments/available-slots", h.AvailableSlots)
	api.GET("/appointments/doctor-schedule", h.DoctorSchedule)
	api.GET("/appointments/patient-history", h.PatientHistory)
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id", h.Update)
	api.DELETE("/appointments/:id", h.Delete)
	api.POST("/appointments/:id/confirm", h.Confirm)
	api.POST("/appointments/:id/cancel", h.Cancel)
	api.POST("/appointments/:id/complete", h.Complete)
	api.POST("/appointments/:id/no-show", h.NoShow)
	api.POST("/appointments/:id/reschedule", h.Reschedule)
	api.GET("/appointments/:id/conflicts", h.Conflicts)
}

// httpError maps domain errors onto transport status codes: validation and
// transition failures are 422, conflicts 409, missing records 404.
func httpError(err error) error {
	var verrs ValidationErrors
	var verr *ValidationError
	var cerr *ConflictError
	var terr *TransitionError
	switch {
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "validation failed", "details": verrs,
		})
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "validation failed", "details": ValidationErrors{verr},
		})
	case errors.As(err, &cerr):
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"error": cerr.Error(),
			"doctor_conflicts": cerr.DoctorConflicts,
			"patient_conflicts": cerr.PatientConflicts,
		})
	case errors.As(err, &terr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": terr.Error(), "op": terr.Op, "status": terr.Status,
		})
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

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// filterFromQuery builds a listing filter from the request's query string.
func filterFromQuery(c echo.Context) (Filter, error) {
	var f Filter

	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &id
	}
	f.Status = c.QueryParam("status")
	f.Type = c.QueryParam("appointment_type")
	f.Search = c.QueryParam("search")

	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
		f.Date = &d
	}
	if v := c.QueryParam("start_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		}
		f.StartDate = &d
	}
	if v := c.QueryParam("end_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		}
		// end_date is inclusive in the query string, exclusive in the filter
		end := d.AddDate(0, 0, 1)
		f.EndDate = &end
	}
	if v := c.QueryParam("min_duration"); v != "" {
		f.MinDuration, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("max_duration"); v != "" {
		f.MaxDuration, _ = strconv.Atoi(v)
	}
	return f, nil
}

func (h *Handler) List(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.Update(c.Request().Context(), &a); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Confirm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Confirm(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Complete(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) NoShow(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.MarkNoShow(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type rescheduleRequest struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, req.StartTime, req.DurationMinutes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Conflicts(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	report, err := h.svc.Conflicts(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) Today(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Today(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Upcoming(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Upcoming(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Calendar(c echo.Context) error {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if v := c.QueryParam("start"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		}
		from = d
	}
	if v := c.QueryParam("end"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		}
		to = d.AddDate(0, 0, 1)
	}

	events, err := h.svc.Calendar(c.Request().Context(), from, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *Handler) Statistics(c echo.Context) error {
	var doctorID *uuid.UUID
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = &id
	}
	stats, err := h.svc.Statistics(c.Request().Context(), doctorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id query parameter is required")
	}
	date := time.Now()
	if v := c.QueryParam("date"); v != "" {
		date, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"available_slots": slots})
}

func (h *Handler) DoctorSchedule(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id query parameter is required")
	}
	date := time.Now()
	if v := c.QueryParam("date"); v != "" {
		date, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		}
	}
	items, err := h.svc.DoctorSchedule(c.Request().Context(), doctorID, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) PatientHistory(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id query parameter is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PatientHistory(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
