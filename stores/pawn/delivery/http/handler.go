package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/delivery"
	"github.com/czConstant/constant-pawn-protocol/domain"
	dPawn "github.com/czConstant/constant-pawn-protocol/domain/pawn"
	"github.com/czConstant/constant-pawn-protocol/middleware"
)

type handler struct {
	pawn dPawn.UseCase
}

// New registers the marketplace routes. authMw guards owner/lender
// operations, escrowMw guards the escrow service's deposit callbacks.
func New(e *echo.Echo, pawn dPawn.UseCase, authMw echo.MiddlewareFunc, escrowMw echo.MiddlewareFunc) {
	h := &handler{pawn}

	e.GET("/pawns", h.getPawns, middleware.CacheHttp(15*time.Second))
	e.GET("/pawn/:contract/:tokenId", h.getPawn)
	e.GET("/pawn/:contract/:tokenId/estimate", h.estimateOwed)

	e.POST("/pawn/:contract/:tokenId/accept/:offerId", h.acceptOffer, authMw)
	e.POST("/pawn/:contract/:tokenId/cancel", h.cancelListing, authMw)
	e.POST("/pawn/:contract/:tokenId/offers/:offerId/cancel", h.cancelOffer, authMw)
	e.POST("/pawn/:contract/:tokenId/liquidate", h.liquidate, authMw)

	g := e.Group("/escrow", escrowMw)
	g.POST("/nft-deposit", h.nftDeposit)
	g.POST("/deposit", h.deposit)
}

func (h *handler) getPawns(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId            *domain.ChainId `query:"chainId"`
		Owner              *domain.Address `query:"owner"`
		Lender             *domain.Address `query:"lender"`
		CollateralContract *domain.Address `query:"collateralContract"`
		Status             *dPawn.Status   `query:"status"`
		SortBy             *string         `query:"sortBy"`
		SortDir            *domain.SortDir `query:"sortDir"`
		Offset             int32           `query:"offset"`
		Limit              int32           `query:"limit"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	opts := []dPawn.FindAllOptionsFunc{
		dPawn.WithPagination(p.Offset, p.Limit),
	}
	if p.ChainId != nil {
		opts = append(opts, dPawn.WithChainId(*p.ChainId))
	}
	if p.Owner != nil {
		opts = append(opts, dPawn.WithOwner(*p.Owner))
	}
	if p.Lender != nil {
		opts = append(opts, dPawn.WithLender(*p.Lender))
	}
	if p.CollateralContract != nil {
		opts = append(opts, dPawn.WithCollateralContract(*p.CollateralContract))
	}
	if p.Status != nil {
		opts = append(opts, dPawn.WithStatus(*p.Status))
	}
	if p.SortBy != nil && p.SortDir != nil {
		opts = append(opts, dPawn.WithSort(*p.SortBy, *p.SortDir))
	}

	sales, count, err := h.pawn.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}

	res := struct {
		Items []*dPawn.Sale `json:"items"`
		Count int           `json:"count"`
	}{sales, count}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) saleId(_ctx echo.Context) (dPawn.SaleId, error) {
	type params struct {
		ChainId  domain.ChainId `query:"chainId"`
		Contract domain.Address `param:"contract"`
		TokenId  domain.TokenId `param:"tokenId"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return dPawn.SaleId{}, err
	}
	if p.ChainId == 0 || p.Contract.IsEmpty() || len(p.TokenId) == 0 {
		return dPawn.SaleId{}, domain.ErrBadParamInput
	}

	return dPawn.SaleId{
		ChainId:            p.ChainId,
		CollateralContract: p.Contract,
		TokenId:            p.TokenId,
	}, nil
}

func (h *handler) getPawn(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	id, err := h.saleId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	sale, err := h.pawn.FindOne(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, sale)
}

func (h *handler) estimateOwed(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	id, err := h.saleId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	type params struct {
		SettleAt int64 `query:"settleAt"`
	}
	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	quote, err := h.pawn.EstimateOwed(ctx, id, p.SettleAt)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, quote)
}

func (h *handler) acceptOffer(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	address := _ctx.Get("address").(domain.Address)

	id, err := h.saleId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	type params struct {
		OfferId int `param:"offerId"`
	}
	p := &params{}
	if err := _ctx.Bind(p); err != nil || p.OfferId <= 0 {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	sale, err := h.pawn.AcceptOffer(ctx, id, address, p.OfferId)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, sale)
}

func (h *handler) cancelListing(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	address := _ctx.Get("address").(domain.Address)

	id, err := h.saleId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	sale, err := h.pawn.CancelListing(ctx, id, address)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, sale)
}

func (h *handler) cancelOffer(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	address := _ctx.Get("address").(domain.Address)

	id, err := h.saleId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	type params struct {
		OfferId int `param:"offerId"`
	}
	p := &params{}
	if err := _ctx.Bind(p); err != nil || p.OfferId <= 0 {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	sale, err := h.pawn.CancelOffer(ctx, id, address, p.OfferId)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, sale)
}

func (h *handler) liquidate(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	address := _ctx.Get("address").(domain.Address)

	id, err := h.saleId(_ctx)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	sale, err := h.pawn.Liquidate(ctx, id, address)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, sale)
}

func (h *handler) nftDeposit(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	p := &dPawn.Listing{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	if err := _ctx.Validate(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err.Error())
	}

	sale, err := h.pawn.ListCollateral(ctx, p)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, sale)
}

func (h *handler) deposit(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	p := &dPawn.Deposit{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	if err := _ctx.Validate(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err.Error())
	}

	sale, err := h.pawn.HandleDeposit(ctx, p)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, sale)
}
