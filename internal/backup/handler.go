package backup

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/platform/apierr"
)

// maxImportSize caps the accepted backup body.
const maxImportSize = 32 << 20

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/backup/export", h.Export)
	r.POST("/backup/import", h.Import)
	r.POST("/backup/reset", h.Reset)
}

func (h *Handler) Export(c *gin.Context) {
	doc, err := h.svc.Export(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		apierr.Respond(c, apierr.Internal(err, "failed to encode backup"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+h.svc.Filename()+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// POST /backup/import accepts the export document as the raw body.
func (h *Handler) Import(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		apierr.Respond(c, apierr.ErrInvalid("failed to read body"))
		return
	}
	if len(body) > maxImportSize {
		apierr.Respond(c, apierr.ErrInvalid("backup is too large"))
		return
	}
	res, err := h.svc.Import(c.Request.Context(), body)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /backup/reset?confirm=true
func (h *Handler) Reset(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.svc.Reset(c.Request.Context(), confirm); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
