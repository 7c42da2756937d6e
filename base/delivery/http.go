package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/czConstant/constant-pawn-protocol/domain"
	"github.com/czConstant/constant-pawn-protocol/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		switch {
		case errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrOfferNotFound) ||
			errors.Is(err, query.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, domain.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidStatus) ||
			errors.Is(err, domain.ErrAmountMismatch) ||
			errors.Is(err, domain.ErrZeroAmount) ||
			errors.Is(err, domain.ErrInvalidListing) ||
			errors.Is(err, domain.ErrOfferUnavailable) ||
			errors.Is(err, domain.ErrRepaymentWindowClosed) ||
			errors.Is(err, domain.ErrLoanNotYetExpired) ||
			errors.Is(err, domain.ErrUnknownAction) ||
			errors.Is(err, domain.ErrInvalidCurrency) ||
			errors.Is(err, domain.ErrInvalidNumberFormat) ||
			errors.Is(err, domain.ErrBadParamInput):
			status = http.StatusBadRequest
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
