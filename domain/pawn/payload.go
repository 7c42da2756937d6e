package pawn

import (
	"golang.org/x/xerrors"

	"github.com/czConstant/constant-pawn-protocol/domain"
)

// DepositAction is the closed set of actions a currency deposit can
// carry. Anything else is rejected up front so funds are never accepted
// without an effect.
type DepositAction string

const (
	DepositActionOffer       DepositAction = "offer"
	DepositActionOfferNow    DepositAction = "offer_now"
	DepositActionPayBackLoan DepositAction = "pay_back_loan"
)

func (a DepositAction) IsValid() bool {
	switch a {
	case DepositActionOffer, DepositActionOfferNow, DepositActionPayBackLoan:
		return true
	}
	return false
}

// Deposit is the decoded message of a currency deposit-with-message
// callback. Amount is the attached amount held in escrow.
type Deposit struct {
	ChainId            domain.ChainId `json:"chainId" validate:"required"`
	Sender             domain.Address `json:"sender" validate:"required"`
	Currency           domain.Address `json:"currency" validate:"required"`
	Amount             string         `json:"amount" validate:"required"`
	Action             DepositAction  `json:"action" validate:"required"`
	CollateralContract domain.Address `json:"collateralContract" validate:"required"`
	TokenId            domain.TokenId `json:"tokenId" validate:"required"`

	// offer terms, only meaningful for action=offer
	Duration     int64 `json:"duration"`
	InterestRate int64 `json:"interestRate"`
	AvailableAt  int64 `json:"availableAt"`
}

func (d *Deposit) ToSaleId() SaleId {
	return SaleId{
		ChainId:            d.ChainId,
		CollateralContract: d.CollateralContract,
		TokenId:            d.TokenId,
	}
}

func (d *Deposit) Validate() error {
	if !d.Action.IsValid() {
		return xerrors.Errorf("action %q: %w", d.Action, domain.ErrUnknownAction)
	}
	amount, err := domain.ParseAmount(d.Amount)
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return domain.ErrZeroAmount
	}
	return nil
}

// Listing is the decoded message of an NFT deposit-with-message
// callback. The collateral is already in escrow custody when the
// lifecycle engine sees it.
type Listing struct {
	ChainId            domain.ChainId `json:"chainId" validate:"required"`
	Owner              domain.Address `json:"owner" validate:"required"`
	CollateralContract domain.Address `json:"collateralContract" validate:"required"`
	TokenId            domain.TokenId `json:"tokenId" validate:"required"`
	Currency           domain.Address `json:"currency" validate:"required"`
	Principal          string         `json:"principal" validate:"required"`
	Duration           int64          `json:"duration" validate:"required"`
	InterestRate       int64          `json:"interestRate"`
	AvailableAt        int64          `json:"availableAt"`
}

func (l *Listing) ToSaleId() SaleId {
	return SaleId{
		ChainId:            l.ChainId,
		CollateralContract: l.CollateralContract,
		TokenId:            l.TokenId,
	}
}

func (l *Listing) Validate() error {
	if l.Currency.IsEmpty() {
		return xerrors.Errorf("missing currency: %w", domain.ErrInvalidListing)
	}
	if l.Duration <= 0 {
		return xerrors.Errorf("non-positive duration: %w", domain.ErrInvalidListing)
	}
	principal, err := domain.ParseAmount(l.Principal)
	if err != nil {
		return err
	}
	if principal.Sign() == 0 {
		return domain.ErrZeroAmount
	}
	return nil
}
