package usecase

import (
	"fmt"
	"math/big"
	"time"

	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/log"
	"github.com/czConstant/constant-pawn-protocol/domain"
	"github.com/czConstant/constant-pawn-protocol/domain/escrow"
	"github.com/czConstant/constant-pawn-protocol/domain/pawn"
)

// DefaultGracePeriod extends the repayment window past nominal maturity.
// Liquidation only becomes possible once the grace period has passed too.
const DefaultGracePeriod = 2 * 24 * time.Hour

const refundConcurrency = 4

type PawnUseCaseCfg struct {
	SaleRepo     pawn.Repo
	CurrencyRepo domain.CurrencyRepo
	Escrow       escrow.Service

	// GracePeriod overrides DefaultGracePeriod. Zero selects the
	// default, a negative value disables the grace window.
	GracePeriod time.Duration
}

type impl struct {
	saleRepo     pawn.Repo
	currencyRepo domain.CurrencyRepo
	escrow       escrow.Service
	graceSeconds int64
}

func New(cfg *PawnUseCaseCfg) pawn.UseCase {
	grace := cfg.GracePeriod
	if grace == 0 {
		grace = DefaultGracePeriod
	} else if grace < 0 {
		grace = 0
	}
	return &impl{
		saleRepo:     cfg.SaleRepo,
		currencyRepo: cfg.CurrencyRepo,
		escrow:       cfg.Escrow,
		graceSeconds: int64(grace / time.Second),
	}
}

func (im *impl) FindOne(c ctx.Ctx, id pawn.SaleId) (*pawn.Sale, error) {
	sale, err := im.saleRepo.FindOne(c, id.LowerCase())
	if err != nil {
		if err != domain.ErrNotFound {
			c.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("saleRepo.FindOne failed")
		}
		return nil, err
	}
	return sale, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...pawn.FindAllOptionsFunc) ([]*pawn.Sale, int, error) {
	sales, err := im.saleRepo.FindAll(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("saleRepo.FindAll failed")
		return nil, 0, err
	}

	cnt, err := im.saleRepo.Count(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{
			"err": err,
		}).Error("saleRepo.Count failed")
		return nil, 0, err
	}

	return sales, cnt, nil
}

// ListCollateral creates an Open sale for an NFT the escrow service has
// just taken into custody.
func (im *impl) ListCollateral(c ctx.Ctx, listing *pawn.Listing) (*pawn.Sale, error) {
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if _, err := im.currencyRepo.FindOne(c, listing.ChainId, listing.Currency); err != nil {
		if err == domain.ErrNotFound {
			return nil, xerrors.Errorf("currency %s: %w", listing.Currency, domain.ErrInvalidCurrency)
		}
		c.WithFields(log.Fields{
			"err":      err,
			"currency": listing.Currency,
		}).Error("currencyRepo.FindOne failed")
		return nil, err
	}

	principal, err := domain.ParseAmount(listing.Principal)
	if err != nil {
		return nil, err
	}

	sale := &pawn.Sale{
		ChainId:            listing.ChainId,
		Owner:              listing.Owner,
		CollateralContract: listing.CollateralContract,
		TokenId:            listing.TokenId,
		Currency:           listing.Currency,
		Principal:          listing.Principal,
		Duration:           listing.Duration,
		InterestRate:       listing.InterestRate,
		AvailableAt:        listing.AvailableAt,
		EstimatedOwed:      pawn.FullTermOwed(principal, listing.Duration, listing.InterestRate).String(),
		Status:             pawn.StatusOpen,
		Offers:             []pawn.Offer{},
	}

	if err := im.saleRepo.Create(c, sale); err != nil {
		if err == domain.ErrConflict {
			return nil, xerrors.Errorf("sale %s already exists: %w", sale.ToId().Key(), domain.ErrInvalidListing)
		}
		c.WithFields(log.Fields{
			"err":  err,
			"sale": *sale,
		}).Error("saleRepo.Create failed")
		return nil, err
	}

	return sale, nil
}

// HandleDeposit dispatches a currency deposit held by the escrow service
// to the action carried in its payload. A non-nil error tells the escrow
// layer the deposit was not consumed and must be returned to the sender.
func (im *impl) HandleDeposit(c ctx.Ctx, d *pawn.Deposit) (*pawn.Sale, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	sale, err := im.saleRepo.FindOne(c, d.ToSaleId().LowerCase())
	if err != nil {
		if err != domain.ErrNotFound {
			c.WithFields(log.Fields{
				"err": err,
				"id":  d.ToSaleId(),
			}).Error("saleRepo.FindOne failed")
		}
		return nil, err
	}

	switch d.Action {
	case pawn.DepositActionOffer:
		return im.submitOffer(c, sale, d)
	case pawn.DepositActionOfferNow:
		return im.buyNow(c, sale, d)
	case pawn.DepositActionPayBackLoan:
		return im.repayLoan(c, sale, d)
	}
	return nil, xerrors.Errorf("action %q: %w", d.Action, domain.ErrUnknownAction)
}

func (im *impl) submitOffer(c ctx.Ctx, sale *pawn.Sale, d *pawn.Deposit) (*pawn.Sale, error) {
	if sale.Status != pawn.StatusOpen {
		return nil, domain.ErrInvalidStatus
	}
	if d.Sender.Equals(sale.Owner) {
		return nil, xerrors.Errorf("owner cannot lend against own collateral: %w", domain.ErrBadParamInput)
	}
	if !d.Currency.Equals(sale.Currency) {
		return nil, xerrors.Errorf("expected currency %s got %s: %w", sale.Currency, d.Currency, domain.ErrInvalidCurrency)
	}
	if d.Duration <= 0 {
		return nil, xerrors.Errorf("non-positive duration: %w", domain.ErrBadParamInput)
	}

	now := time.Now()
	if !sale.IsAvailableAt(now.Unix()) {
		return nil, xerrors.Errorf("listing expired: %w", domain.ErrInvalidListing)
	}
	sale.Offers = append(sale.Offers, pawn.Offer{
		OfferId:      sale.NextOfferId(),
		Lender:       d.Sender.ToLower(),
		Principal:    d.Amount,
		Duration:     d.Duration,
		InterestRate: d.InterestRate,
		AvailableAt:  d.AvailableAt,
		Status:       pawn.StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  sale.ToId(),
		}).Error("saleRepo.Replace failed")
		return nil, err
	}
	return sale, nil
}

func (im *impl) buyNow(c ctx.Ctx, sale *pawn.Sale, d *pawn.Deposit) (*pawn.Sale, error) {
	if sale.Status != pawn.StatusOpen {
		return nil, domain.ErrInvalidStatus
	}
	if d.Sender.Equals(sale.Owner) {
		return nil, xerrors.Errorf("owner cannot lend against own collateral: %w", domain.ErrBadParamInput)
	}
	if !d.Currency.Equals(sale.Currency) {
		return nil, xerrors.Errorf("expected currency %s got %s: %w", sale.Currency, d.Currency, domain.ErrInvalidCurrency)
	}
	if !sale.IsAvailableAt(time.Now().Unix()) {
		return nil, xerrors.Errorf("listing expired: %w", domain.ErrInvalidListing)
	}

	nums, err := domain.ToBigInt([]string{d.Amount, sale.Principal})
	if err != nil {
		return nil, err
	}
	if nums[0].Cmp(nums[1]) != 0 {
		return nil, xerrors.Errorf("expected %s got %s: %w", sale.Principal, d.Amount, domain.ErrAmountMismatch)
	}

	// the lender's deposit funds the loan, pay the ask out to the
	// borrower before committing the status
	memo := fmt.Sprintf("loan principal %s#%d", sale.ToId().Key(), sale.NextOfferId())
	if err := im.payOut(c, sale.ChainId, sale.Currency, sale.Owner, sale.Principal, memo); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  sale.ToId(),
		}).Error("principal payout failed")
		return nil, err
	}

	now := time.Now()
	offer := pawn.Offer{
		OfferId:      sale.NextOfferId(),
		Lender:       d.Sender.ToLower(),
		Principal:    sale.Principal,
		Duration:     sale.Duration,
		InterestRate: sale.InterestRate,
		Status:       pawn.StatusProcessing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sale.Offers = append(sale.Offers, offer)
	sale.Lender = offer.Lender
	sale.ActiveOfferId = offer.OfferId
	sale.StartedAt = now.Unix()
	sale.Status = pawn.StatusProcessing

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  sale.ToId(),
		}).Error("saleRepo.Replace failed after principal payout")
		return nil, err
	}
	return sale, nil
}

func (im *impl) repayLoan(c ctx.Ctx, sale *pawn.Sale, d *pawn.Deposit) (*pawn.Sale, error) {
	if sale.Status != pawn.StatusProcessing {
		return nil, domain.ErrInvalidStatus
	}
	if !d.Sender.Equals(sale.Owner) {
		return nil, domain.ErrUnauthorized
	}
	if !d.Currency.Equals(sale.Currency) {
		return nil, xerrors.Errorf("expected currency %s got %s: %w", sale.Currency, d.Currency, domain.ErrInvalidCurrency)
	}

	now := time.Now().Unix()
	if now > sale.StartedAt+sale.Duration+im.graceSeconds {
		return nil, domain.ErrRepaymentWindowClosed
	}

	principal, err := domain.ParseAmount(sale.Principal)
	if err != nil {
		return nil, err
	}
	owed, fee, _ := pawn.CalculateOwed(principal, sale.Duration, sale.InterestRate, sale.StartedAt, now)

	amount, err := domain.ParseAmount(d.Amount)
	if err != nil {
		return nil, err
	}
	if amount.Cmp(owed) != 0 {
		return nil, xerrors.Errorf("owed %s got %s: %w", owed, d.Amount, domain.ErrAmountMismatch)
	}

	// lender receives owed minus the protocol fee, the fee stays with
	// the treasury inside escrow custody
	lenderShare := new(big.Int).Sub(owed, fee)
	memo := fmt.Sprintf("loan repayment %s#%d", sale.ToId().Key(), sale.ActiveOfferId)
	if err := im.payOut(c, sale.ChainId, sale.Currency, sale.Lender, lenderShare.String(), memo); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  sale.ToId(),
		}).Error("repayment payout failed")
		return nil, err
	}
	if err := im.escrow.TransferNFT(c, sale.ChainId, sale.CollateralContract, sale.TokenId, sale.Owner); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  sale.ToId(),
		}).Error("collateral return failed after repayment payout")
		return nil, err
	}

	if active := sale.ActiveOffer(); active != nil {
		active.Status = pawn.StatusDone
		active.UpdatedAt = time.Now()
	}
	sale.Status = pawn.StatusDone
	sale.PaidAt = now
	sale.PaidAmount = d.Amount

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  sale.ToId(),
		}).Error("saleRepo.Replace failed after repayment transfers")
		return nil, err
	}
	return sale, nil
}

func (im *impl) AcceptOffer(c ctx.Ctx, id pawn.SaleId, owner domain.Address, offerId int) (*pawn.Sale, error) {
	sale, err := im.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if !owner.Equals(sale.Owner) {
		return nil, domain.ErrUnauthorized
	}
	if sale.Status != pawn.StatusOpen {
		return nil, domain.ErrInvalidStatus
	}

	offer := sale.FindOffer(offerId)
	if offer == nil {
		return nil, domain.ErrOfferNotFound
	}
	if offer.Status != pawn.StatusOpen {
		return nil, domain.ErrOfferUnavailable
	}
	now := time.Now()
	if !offer.IsAvailableAt(now.Unix()) {
		return nil, xerrors.Errorf("offer %d expired: %w", offerId, domain.ErrOfferUnavailable)
	}

	memo := fmt.Sprintf("loan principal %s#%d", sale.ToId().Key(), offerId)
	if err := im.payOut(c, sale.ChainId, sale.Currency, sale.Owner, offer.Principal, memo); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"id":      id,
			"offerId": offerId,
		}).Error("principal payout failed")
		return nil, err
	}

	im.refundOpenOffers(c, sale, offerId)

	principal, err := domain.ParseAmount(offer.Principal)
	if err != nil {
		return nil, err
	}

	offer.Status = pawn.StatusProcessing
	offer.UpdatedAt = now
	sale.Principal = offer.Principal
	sale.Duration = offer.Duration
	sale.InterestRate = offer.InterestRate
	sale.EstimatedOwed = pawn.FullTermOwed(principal, offer.Duration, offer.InterestRate).String()
	sale.Lender = offer.Lender
	sale.ActiveOfferId = offer.OfferId
	sale.StartedAt = now.Unix()
	sale.Status = pawn.StatusProcessing

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("saleRepo.Replace failed after accept transfers")
		return nil, err
	}
	return sale, nil
}

func (im *impl) CancelListing(c ctx.Ctx, id pawn.SaleId, owner domain.Address) (*pawn.Sale, error) {
	sale, err := im.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if !owner.Equals(sale.Owner) {
		return nil, domain.ErrUnauthorized
	}
	if sale.Status != pawn.StatusOpen {
		return nil, domain.ErrInvalidStatus
	}

	im.refundOpenOffers(c, sale, 0)

	if err := im.escrow.TransferNFT(c, sale.ChainId, sale.CollateralContract, sale.TokenId, sale.Owner); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("collateral return failed")
		return nil, err
	}

	sale.Status = pawn.StatusCanceled

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("saleRepo.Replace failed after cancel transfers")
		return nil, err
	}
	return sale, nil
}

func (im *impl) CancelOffer(c ctx.Ctx, id pawn.SaleId, lender domain.Address, offerId int) (*pawn.Sale, error) {
	sale, err := im.FindOne(c, id)
	if err != nil {
		return nil, err
	}

	offer := sale.FindOffer(offerId)
	if offer == nil {
		return nil, domain.ErrOfferNotFound
	}
	if !lender.Equals(offer.Lender) {
		return nil, domain.ErrUnauthorized
	}
	if offer.Status != pawn.StatusOpen {
		return nil, xerrors.Errorf("cannot cancel a non-open offer: %w", domain.ErrInvalidStatus)
	}

	// same memo as the fan-out refund so a refund that already settled
	// before a lost replace is not paid a second time here
	if err := im.payOut(c, sale.ChainId, sale.Currency, offer.Lender, offer.Principal, refundMemo(sale, offerId)); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"id":      id,
			"offerId": offerId,
		}).Error("offer refund failed")
		return nil, err
	}

	offer.Status = pawn.StatusCanceled
	offer.UpdatedAt = time.Now()

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("saleRepo.Replace failed after offer refund")
		return nil, err
	}
	return sale, nil
}

func (im *impl) Liquidate(c ctx.Ctx, id pawn.SaleId, caller domain.Address) (*pawn.Sale, error) {
	sale, err := im.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != pawn.StatusProcessing {
		return nil, domain.ErrInvalidStatus
	}

	now := time.Now().Unix()
	if now <= sale.StartedAt+sale.Duration+im.graceSeconds {
		return nil, domain.ErrLoanNotYetExpired
	}

	// no funds move, the lender takes the collateral in place of the debt
	if err := im.escrow.TransferNFT(c, sale.ChainId, sale.CollateralContract, sale.TokenId, sale.Lender); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"id":     id,
			"caller": caller,
		}).Error("collateral transfer failed")
		return nil, err
	}

	if active := sale.ActiveOffer(); active != nil {
		active.Status = pawn.StatusLiquidated
		active.UpdatedAt = time.Now()
	}
	sale.Status = pawn.StatusLiquidated

	c.WithFields(log.Fields{
		"id":     id,
		"caller": caller,
		"lender": sale.Lender,
	}).Info("loan liquidated")

	if err := im.saleRepo.Replace(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("saleRepo.Replace failed after liquidation transfer")
		return nil, err
	}
	return sale, nil
}

func (im *impl) EstimateOwed(c ctx.Ctx, id pawn.SaleId, settleAt int64) (*pawn.OwedQuote, error) {
	sale, err := im.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	if sale.Status != pawn.StatusProcessing {
		return nil, domain.ErrInvalidStatus
	}
	if settleAt == 0 {
		settleAt = time.Now().Unix()
	}

	principal, err := domain.ParseAmount(sale.Principal)
	if err != nil {
		return nil, err
	}
	owed, fee, interest := pawn.CalculateOwed(principal, sale.Duration, sale.InterestRate, sale.StartedAt, settleAt)

	quote := &pawn.OwedQuote{
		Principal:  sale.Principal,
		Fee:        fee.String(),
		Interest:   interest.String(),
		Owed:       owed.String(),
		SettleAt:   settleAt,
		MaturityAt: sale.StartedAt + sale.Duration,
	}

	currency, err := im.currencyRepo.FindOne(c, sale.ChainId, sale.Currency)
	if err != nil {
		// a raw quote is still useful
		c.WithFields(log.Fields{
			"chainId":  sale.ChainId,
			"currency": sale.Currency,
			"err":      err,
		}).Warn("currencyRepo.FindOne failed")
		return quote, nil
	}
	quote.OwedDisplay = currency.DisplayAmount(owed).String()

	return quote, nil
}

// refundOpenOffers pays every open offer's escrowed principal back to
// its lender, skipping excludeOfferId. An offer is marked Refunded only
// when its transfer settled, failed ones stay Open so the lender keeps a
// refund path through the cancel call.
func (im *impl) refundOpenOffers(c ctx.Ctx, sale *pawn.Sale, excludeOfferId int) {
	ids := []int{}
	for _, oid := range sale.OpenOffers() {
		if oid != excludeOfferId {
			ids = append(ids, oid)
		}
	}
	if len(ids) == 0 {
		return
	}

	b := goroutines.NewBatch(refundConcurrency, goroutines.WithBatchSize(len(ids)))
	defer b.Close()
	for _, oid := range ids {
		oid := oid
		offer := sale.FindOffer(oid)
		b.Queue(func() (interface{}, error) {
			err := im.payOut(c, sale.ChainId, sale.Currency, offer.Lender, offer.Principal, refundMemo(sale, oid))
			return oid, err
		})
	}
	b.QueueComplete()

	now := time.Now()
	for ret := range b.Results() {
		oid := ret.Value().(int)
		if ret.Error() != nil {
			c.WithFields(log.Fields{
				"err":     ret.Error(),
				"id":      sale.ToId(),
				"offerId": oid,
			}).Error("offer refund failed, offer left open")
			continue
		}
		offer := sale.FindOffer(oid)
		offer.Status = pawn.StatusRefunded
		offer.UpdatedAt = now
	}
}

// payOut releases escrowed funds. The memo doubles as the transfer's
// logical identity, callers keep it unique per transfer so the custody
// side can deduplicate retries.
func (im *impl) payOut(c ctx.Ctx, chainId domain.ChainId, currency, to domain.Address, amount, memo string) error {
	if currency.IsNative() {
		return im.escrow.TransferNative(c, chainId, to, amount, memo)
	}
	return im.escrow.TransferFungible(c, chainId, currency, to, amount, memo)
}

// refundMemo identifies one offer's refund regardless of whether it is
// paid by the accept/cancel fan-out or by the lender's own cancel.
func refundMemo(sale *pawn.Sale, offerId int) string {
	return fmt.Sprintf("offer refund %s#%d", sale.ToId().Key(), offerId)
}
