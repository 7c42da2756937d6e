package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/delivery"
	"github.com/czConstant/constant-pawn-protocol/domain"
	"github.com/czConstant/constant-pawn-protocol/middleware"
)

type handler struct {
	currency domain.CurrencyUseCase
}

// New registers the settlement currency routes
func New(e *echo.Echo, currency domain.CurrencyUseCase) {
	h := &handler{currency}

	e.GET("/currencies", h.getCurrencies, middleware.CacheHttp(time.Minute))
}

func (h *handler) getCurrencies(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	type params struct {
		ChainId domain.ChainId `query:"chainId"`
	}
	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	currencies, err := h.currency.FindAll(ctx, p.ChainId)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, currencies)
}
