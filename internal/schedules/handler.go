package schedules

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/schedules", h.ListSchedules)
	r.POST("/schedules", h.CreateSchedule)
	r.GET("/schedules/today", h.TodaySchedules)
	r.PUT("/schedules/places/:place_id/days/:day", h.UpsertForDay)
	r.PATCH("/schedules/:id", h.UpdateSchedule)
	r.DELETE("/schedules/:id", h.DeleteSchedule)
}

// GET /schedules?place_id=&day=
func (h *Handler) ListSchedules(c *gin.Context) {
	q := ListQuery{PlaceID: c.Query("place_id")}
	if v := c.Query("day"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			apierr.Respond(c, apierr.ErrInvalid("day must be an integer 0-6"))
			return
		}
		q.DayOfWeek = &d
	}
	c.JSON(http.StatusOK, h.svc.List(q))
}

func (h *Handler) TodaySchedules(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ActiveForToday())
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	sc, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

// PUT /schedules/places/:place_id/days/:day
func (h *Handler) UpsertForDay(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		apierr.Respond(c, apierr.ErrInvalid("day must be an integer 0-6"))
		return
	}
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	sc, created, err := h.svc.UpsertForDay(c.Request.Context(), c.Param("place_id"), day, req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, sc)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	sc, found, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if !found {
		apierr.Respond(c, apierr.ErrNotFound("schedule not found"))
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if !found {
		apierr.Respond(c, apierr.ErrNotFound("schedule not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
