package repository

import (
	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/database/mongoclient"
	"github.com/czConstant/constant-pawn-protocol/base/log"
	"github.com/czConstant/constant-pawn-protocol/domain"
	"github.com/czConstant/constant-pawn-protocol/service/query"
)

type currencyMongoRepo struct {
	q query.Mongo
}

func NewCurrencyRepo(q query.Mongo) domain.CurrencyRepo {
	return &currencyMongoRepo{
		q: q,
	}
}

func (r *currencyMongoRepo) FindOne(ctx bCtx.Ctx, chainId domain.ChainId, address domain.Address) (*domain.Currency, error) {
	currency := &domain.Currency{}
	qry, err := mongoclient.MakeBsonM(&domain.CurrencyId{ChainId: chainId, Address: address.ToLower()})
	if err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if err := r.q.FindOne(ctx, domain.TableCurrencies, qry, currency); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return currency, nil
}

func (r *currencyMongoRepo) FindAll(ctx bCtx.Ctx, chainId domain.ChainId) ([]*domain.Currency, error) {
	res := []*domain.Currency{}
	qry, err := mongoclient.MakeBsonM(&domain.CurrencyId{ChainId: chainId})
	if err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if err := r.q.Search(ctx, domain.TableCurrencies, 0, 0, "symbol", qry, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"chainId": chainId,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *currencyMongoRepo) Create(ctx bCtx.Ctx, currency *domain.Currency) error {
	currency.Address = currency.Address.ToLower()
	if err := r.q.Insert(ctx, domain.TableCurrencies, currency); err != nil {
		ctx.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *currencyMongoRepo) Upsert(ctx bCtx.Ctx, currency *domain.Currency) error {
	currency.Address = currency.Address.ToLower()
	selector, err := mongoclient.MakeBsonM(currency.ToId())
	if err != nil {
		ctx.WithField("err", err).Error("failed to make bson.M")
		return err
	}
	if err := r.q.Upsert(ctx, domain.TableCurrencies, selector, currency); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  currency.ToId(),
		}).Error("failed to upsert")
		return err
	}
	return nil
}
