package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"care-attendance/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/login", h.Login)
}

type LoginRequest struct {
	Passcode string `json:"passcode" validate:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid request body"))
		return
	}
	if err := apierr.Validate(req); err != nil {
		apierr.Respond(c, err)
		return
	}

	tok, err := h.svc.Login(c.Request.Context(), req.Passcode)
	if errors.Is(err, ErrBadPasscode) {
		log.Printf("[WARN] failed login from %s", c.ClientIP())
		apierr.Respond(c, apierr.ErrUnauthenticated("passcode does not match"))
		return
	}
	if err != nil {
		apierr.Respond(c, apierr.Internal(err, "failed to issue token"))
		return
	}
	c.JSON(http.StatusOK, tok)
}
