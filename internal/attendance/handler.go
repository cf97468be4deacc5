package attendance

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// manual entries
	r.GET("/attendance", h.ListAttendance)
	r.GET("/attendance/today", h.TodayAttendance)
	r.POST("/attendance", h.AddAttendance)
	r.PUT("/attendance/dates/:date", h.UpsertForDate)
	r.GET("/attendance/:id", h.GetAttendance)
	r.PATCH("/attendance/:id", h.UpdateAttendance)
	r.DELETE("/attendance/:id", h.DeleteAttendance)

	// checked-time entries
	r.POST("/attendance/check-in", h.CheckIn)
	r.POST("/attendance/:id/check-out", h.CheckOut)
}

// GET /attendance?date= | ?from=&to= | ?year=&month=
func (h *Handler) ListAttendance(c *gin.Context) {
	q := ListQuery{
		Date: c.Query("date"),
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apierr.Respond(c, apierr.ErrInvalid("year must be an integer"))
			return
		}
		q.Year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apierr.Respond(c, apierr.ErrInvalid("month must be an integer"))
			return
		}
		q.Month = n
	}
	res, err := h.svc.List(q)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) TodayAttendance(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.TodayRecords())
}

func (h *Handler) GetAttendance(c *gin.Context) {
	rec, ok := h.svc.FindByID(c.Param("id"))
	if !ok {
		apierr.Respond(c, apierr.ErrNotFound("attendance record not found"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// POST /attendance
func (h *Handler) AddAttendance(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	rec, err := h.svc.AddForDate(c.Request.Context(), req.Date, req.EntryRequest)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/attendance/"+rec.ID)
	c.JSON(http.StatusCreated, rec)
}

// PUT /attendance/dates/:date
func (h *Handler) UpsertForDate(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	rec, created, err := h.svc.UpsertForDate(c.Request.Context(), c.Param("date"), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, rec)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) UpdateAttendance(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteAttendance(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if !found {
		apierr.Respond(c, apierr.ErrNotFound("attendance record not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /attendance/check-in
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	rec, err := h.svc.CheckIn(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/attendance/"+rec.ID)
	c.JSON(http.StatusCreated, rec)
}

// POST /attendance/:id/check-out (body optional)
func (h *Handler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		switch err := c.ShouldBindJSON(&req); {
		case errors.Is(err, io.EOF):
			// empty body
		case err != nil:
			apierr.Respond(c, apierr.ErrInvalid("invalid json"))
			return
		default:
			if err := apierr.Validate(req); err != nil {
				apierr.Respond(c, err)
				return
			}
		}
	}
	rec, err := h.svc.CheckOut(c.Request.Context(), c.Param("id"), req.HourlyRate)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
