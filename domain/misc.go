package domain

import (
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

type ChainId int32

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

// NativeCurrency marks a loan denominated in the chain's native coin
// instead of a fungible token contract.
const NativeCurrency = Address("near")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

func (a Address) IsNative() bool {
	return a.Equals(NativeCurrency)
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

type TxHash string

type Table string

const (
	TableSales      Table = "sales"
	TableCurrencies Table = "currencies"
)

func ToBigInt(nums []string) ([]*big.Int, error) {
	var bns []*big.Int
	for _, n := range nums {
		bn, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, ErrInvalidNumberFormat
		}
		bns = append(bns, bn)
	}
	return bns, nil
}

// ParseAmount parses a decimal string amount into a big.Int,
// rejecting malformed or negative values.
func ParseAmount(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("parse amount %q: %w", s, ErrInvalidNumberFormat)
	}
	if n.Sign() < 0 {
		return nil, xerrors.Errorf("negative amount %q: %w", s, ErrInvalidNumberFormat)
	}
	return n, nil
}
