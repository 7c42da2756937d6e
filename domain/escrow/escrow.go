package escrow

import (
	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

// Service moves assets held in custody. All calls are synchronous,
// a nil error means the transfer settled, so lifecycle transitions
// can order their state writes after the outcome is known.
//
// Transfers are submitted under a request id derived from their
// content, so resubmitting the same logical transfer dedupes on the
// custody side. Callers must make the memo unique per logical transfer.
type Service interface {
	// TransferFungible pays amount of a token out of custody to the recipient
	TransferFungible(c ctx.Ctx, chainId domain.ChainId, currency domain.Address, to domain.Address, amount string, memo string) error

	// TransferNative pays amount of the chain's native coin out of custody
	TransferNative(c ctx.Ctx, chainId domain.ChainId, to domain.Address, amount string, memo string) error

	// TransferNFT releases an escrowed collateral token to the recipient
	TransferNFT(c ctx.Ctx, chainId domain.ChainId, contract domain.Address, tokenId domain.TokenId, to domain.Address) error
}
