package places

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/places", h.ListPlaces)
	r.POST("/places", h.CreatePlace)
	r.GET("/places/:id", h.GetPlace)
	r.PATCH("/places/:id", h.UpdatePlace)
	r.DELETE("/places/:id", h.DeletePlace)
}

func (h *Handler) ListPlaces(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List())
}

func (h *Handler) GetPlace(c *gin.Context) {
	p, err := h.svc.Get(c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePlace(c *gin.Context) {
	var req CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	p, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/places/"+p.ID)
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePlace(c *gin.Context) {
	var req UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json"))
		return
	}
	p, found, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if !found {
		apierr.Respond(c, apierr.ErrNotFound("place not found"))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePlace(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	if !found {
		apierr.Respond(c, apierr.ErrNotFound("place not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
