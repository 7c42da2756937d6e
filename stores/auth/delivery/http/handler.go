package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/delivery"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

type authHandler struct {
	auth domain.AuthUsecase
}

func New(e *echo.Echo, auth domain.AuthUsecase) {
	handler := &authHandler{
		auth: auth,
	}
	g := e.Group("/auth")
	g.POST("/sign", handler.sign)
}

func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address domain.Address `json:"address" validate:"required"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}

	if tkn, err := h.auth.SignToken(ctx, p.Address); err != nil {
		ctx.WithField("err", err).Error("auth.SignToken failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
	}
}
