package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/database/mongoclient"
	"github.com/czConstant/constant-pawn-protocol/base/log"
	"github.com/czConstant/constant-pawn-protocol/domain"
	"github.com/czConstant/constant-pawn-protocol/domain/pawn"
	"github.com/czConstant/constant-pawn-protocol/service/query"
)

type saleRepoImpl struct {
	q query.Mongo
}

func NewSaleRepo(q query.Mongo) pawn.Repo {
	return &saleRepoImpl{q}
}

func (im *saleRepoImpl) makeQuery(opts ...pawn.FindAllOptionsFunc) (bson.M, error) {
	options, err := pawn.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	query := bson.M{}

	if options.ChainId != nil {
		query["chainId"] = *options.ChainId
	}

	if options.Owner != nil {
		query["owner"] = *options.Owner
	}

	if options.Lender != nil {
		query["lender"] = *options.Lender
	}

	if options.CollateralContract != nil {
		query["collateralContract"] = *options.CollateralContract
	}

	if options.Status != nil {
		query["status"] = *options.Status
	}

	return query, nil
}

func (im *saleRepoImpl) FindAll(ctx ctx.Ctx, opts ...pawn.FindAllOptionsFunc) ([]*pawn.Sale, error) {
	options, err := pawn.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("pawn.GetFindAllOptions failed")
		return nil, err
	}

	qry, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery failed")
		return nil, err
	}

	offset := 0
	limit := 0
	sort := "_id"

	if options.Offset != nil {
		offset = int(*options.Offset)
	}

	if options.Limit != nil {
		limit = int(*options.Limit)
	}

	if options.SortBy != nil {
		sort = *options.SortBy
		if options.SortDir != nil && *options.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}

	res := []*pawn.Sale{}
	err = im.q.Search(ctx, domain.TableSales, offset, limit, sort, qry, &res)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.Search")
		return nil, err
	}

	return res, nil
}

func (im *saleRepoImpl) Count(ctx ctx.Ctx, opts ...pawn.FindAllOptionsFunc) (int, error) {
	qry, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery failed")
		return 0, err
	}

	cnt, err := im.q.Count(ctx, domain.TableSales, qry)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.Count")
		return 0, err
	}

	return cnt, nil
}

func (im *saleRepoImpl) FindOne(ctx ctx.Ctx, id pawn.SaleId) (*pawn.Sale, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to mongoclient.MakeBsonM")
		return nil, err
	}

	res := pawn.Sale{}
	err = im.q.FindOne(ctx, domain.TableSales, qry, &res)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.FindOne")
		return nil, err
	}

	return &res, nil
}

func (im *saleRepoImpl) Create(ctx ctx.Ctx, sale *pawn.Sale) error {
	now := time.Now()
	sale.CreatedAt = now
	sale.UpdatedAt = now
	sale.Version = 1
	sale.SchemaVersion = pawn.CurrentSchemaVersion
	sale.LowerCase()

	err := im.q.Insert(ctx, domain.TableSales, sale)
	if err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"sale": *sale,
		}).Error("failed to q.Insert")
		return err
	}
	return nil
}

// Replace stores the whole mutated record back. The selector carries the
// version the caller loaded, so a concurrent writer makes the match fail
// and the caller gets domain.ErrConflict instead of silently clobbering.
func (im *saleRepoImpl) Replace(ctx ctx.Ctx, sale *pawn.Sale) error {
	id := sale.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to mongoclient.MakeBsonM")
		return err
	}
	selector["version"] = sale.Version

	replacement := *sale
	replacement.Version = sale.Version + 1
	replacement.UpdatedAt = time.Now()
	replacement.LowerCase()

	err = im.q.Replace(ctx, domain.TableSales, selector, &replacement)
	if err == query.ErrNotFound {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("failed to q.Replace")
		return err
	}

	*sale = replacement
	return nil
}

func (im *saleRepoImpl) Delete(ctx ctx.Ctx, id pawn.SaleId) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to mongoclient.MakeBsonM")
		return err
	}

	err = im.q.Remove(ctx, domain.TableSales, selector)
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("failed to q.Remove")
		return err
	}
	return nil
}
