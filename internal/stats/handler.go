package stats

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/platform/apierr"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/stats/week", h.Week)
	r.GET("/stats/month", h.Month)
	r.GET("/stats/month-totals", h.MonthTotals)
	r.GET("/stats/range", h.Range)
	r.GET("/calendar", h.Calendar)
	r.GET("/reports/monthly.txt", h.MonthlyText)
	r.GET("/reports/monthly.xlsx", h.MonthlyXLSX)
}

func (h *Handler) Week(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Week())
}

// GET /stats/month?year=&month=
func (h *Handler) Month(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	res, err := h.svc.Month(year, month)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /stats/month-totals?year=&month=; both parameters are required.
func (h *Handler) MonthTotals(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if year == 0 || month == 0 {
		apierr.Respond(c, apierr.ErrInvalid("year and month are required"))
		return
	}
	res, err := h.svc.Month(year, month)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /stats/range?from=&to=
func (h *Handler) Range(c *gin.Context) {
	res, err := h.svc.Range(c.Query("from"), c.Query("to"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Calendar(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	res, err := h.svc.Calendar(year, month)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MonthlyText(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	txt, err := h.svc.MonthlyReportText(year, month)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.String(http.StatusOK, txt)
}

func (h *Handler) MonthlyXLSX(c *gin.Context) {
	year, month, err := yearMonth(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	body, err := h.svc.MonthlyReportXLSX(year, month)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err, "failed to build report"))
		return
	}
	ms, _ := h.svc.Month(year, month)
	name := fmt.Sprintf("attendance_%04d-%02d.xlsx", ms.Year, ms.Month)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, body)
}

// yearMonth reads ?year=&month=; missing values are 0 (current month).
func yearMonth(c *gin.Context) (int, int, error) {
	var year, month int
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, apierr.ErrInvalid("year must be an integer")
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, apierr.ErrInvalid("month must be an integer")
		}
		month = n
	}
	return year, month, nil
}
