package usecase

import (
	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/log"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

type impl struct {
	repo domain.CurrencyRepo
}

func New(repo domain.CurrencyRepo) domain.CurrencyUseCase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) FindAll(c ctx.Ctx, chainId domain.ChainId) ([]*domain.Currency, error) {
	currencies, err := im.repo.FindAll(c, chainId)
	if err != nil {
		c.WithFields(log.Fields{
			"chainId": chainId,
			"err":     err,
		}).Error("repo.FindAll failed")
		return nil, err
	}
	return currencies, nil
}
