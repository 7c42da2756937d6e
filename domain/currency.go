package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
)

type CurrencyId struct {
	ChainId ChainId `bson:"chainId"`
	Address Address `bson:"address"`
}

// Currency describes a fungible token accepted as loan principal.
// The native coin is registered under NativeCurrency.
type Currency struct {
	Name      string  `json:"name" bson:"name"`
	Symbol    string  `json:"symbol" bson:"symbol"`
	Decimals  int32   `json:"decimals" bson:"decimals"`
	ChainId   ChainId `json:"chainId" bson:"chainId"`
	Address   Address `json:"address" bson:"address"`
	IsMainnet bool    `json:"isMainnet" bson:"isMainnet"`
}

func (c *Currency) ToId() *CurrencyId {
	return &CurrencyId{
		ChainId: c.ChainId,
		Address: c.Address,
	}
}

// DisplayAmount converts a raw integer amount into its human readable
// form using the currency's decimals.
func (c *Currency) DisplayAmount(raw *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -c.Decimals)
}

type CurrencyUseCase interface {
	FindAll(ctx.Ctx, ChainId) ([]*Currency, error)
}

type CurrencyRepo interface {
	FindOne(ctx.Ctx, ChainId, Address) (*Currency, error)
	FindAll(ctx.Ctx, ChainId) ([]*Currency, error)
	Create(ctx.Ctx, *Currency) error
	Upsert(ctx.Ctx, *Currency) error
}
