package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the item was modified by a concurrent request
	ErrConflict = errors.New("Your Item was modified concurrently")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidChainId      = errors.New("invalid chain id")
	ErrInvalidCurrency     = errors.New("invalid currency")

	// request error
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")
	ErrUnauthorized     = errors.New("Unauthorized")

	// lending lifecycle errors
	ErrInvalidStatus         = errors.New("sale status does not allow this action")
	ErrInvalidListing        = errors.New("invalid listing")
	ErrOfferNotFound         = errors.New("offer not found")
	ErrOfferUnavailable      = errors.New("offer no longer available")
	ErrAmountMismatch        = errors.New("attached amount does not match")
	ErrZeroAmount            = errors.New("amount must be greater than zero")
	ErrRepaymentWindowClosed = errors.New("repayment window closed")
	ErrLoanNotYetExpired     = errors.New("loan has not expired yet")
	ErrEscrowFailure         = errors.New("escrow transfer failed")
	ErrUnknownAction         = errors.New("unknown deposit action")
)
