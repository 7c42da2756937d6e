package pawn

import (
	"time"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

// KeyDelimiter separates collateral contract and token id inside a sale
// key. Two characters on purpose, a single pipe may appear in token ids.
const KeyDelimiter = "||"

type Status string

const (
	StatusOpen       Status = "open"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusLiquidated Status = "liquidated"
	StatusRefunded   Status = "refunded"
	StatusCanceled   Status = "canceled"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusLiquidated, StatusCanceled:
		return true
	}
	return false
}

type SaleId struct {
	ChainId            domain.ChainId `json:"chainId" bson:"chainId"`
	CollateralContract domain.Address `json:"collateralContract" bson:"collateralContract"`
	TokenId            domain.TokenId `json:"tokenId" bson:"tokenID"`
}

func (id SaleId) LowerCase() SaleId {
	id.CollateralContract = id.CollateralContract.ToLower()
	return id
}

func (id SaleId) Key() string {
	return id.CollateralContract.ToLowerStr() + KeyDelimiter + id.TokenId.String()
}

// Offer is one lender's proposed terms against a listing. Principal is
// a raw integer amount in the sale's currency.
type Offer struct {
	OfferId      int            `json:"offerId" bson:"offerId"`
	Lender       domain.Address `json:"lender" bson:"lender"`
	Principal    string         `json:"principal" bson:"principal"`
	Duration     int64          `json:"duration" bson:"duration"`
	InterestRate int64          `json:"interestRate" bson:"interestRate"`
	// AvailableAt is a unix timestamp after which the offer can no longer
	// be accepted. Zero means no expiry.
	AvailableAt int64     `json:"availableAt" bson:"availableAt"`
	Status      Status    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (o *Offer) IsAvailableAt(now int64) bool {
	return o.AvailableAt == 0 || now <= o.AvailableAt
}

// Sale is the per-listing aggregate holding loan terms, lifecycle status
// and the competing offers. Lifecycle transitions load the whole record,
// mutate it and replace it, there are no field-level updates.
type Sale struct {
	ChainId            domain.ChainId `json:"chainId" bson:"chainId"`
	Owner              domain.Address `json:"owner" bson:"owner"`
	CollateralContract domain.Address `json:"collateralContract" bson:"collateralContract"`
	TokenId            domain.TokenId `json:"tokenId" bson:"tokenID"`
	Currency           domain.Address `json:"currency" bson:"currency"`
	Principal          string         `json:"principal" bson:"principal"`
	Duration           int64          `json:"duration" bson:"duration"`
	InterestRate       int64          `json:"interestRate" bson:"interestRate"`
	AvailableAt        int64          `json:"availableAt" bson:"availableAt"`
	Status             Status         `json:"status" bson:"status"`

	// EstimatedOwed is the full-term repayment quote for the current
	// terms, recomputed whenever the terms change.
	EstimatedOwed string `json:"estimatedOwed" bson:"estimatedOwed"`

	// set once an offer is accepted or a buy-now fills the ask
	Lender        domain.Address `json:"lender" bson:"lender"`
	ActiveOfferId int            `json:"activeOfferId" bson:"activeOfferId"`
	StartedAt     int64          `json:"startedAt" bson:"startedAt"`

	// repayment audit trail
	PaidAt     int64  `json:"paidAt" bson:"paidAt"`
	PaidAmount string `json:"paidAmount" bson:"paidAmount"`

	Offers []Offer `json:"offers" bson:"offers"`

	// Version is matched on replace to detect concurrent writers
	Version       int64     `json:"version" bson:"version"`
	SchemaVersion int       `json:"schemaVersion" bson:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

const CurrentSchemaVersion = 2

func (s *Sale) ToId() SaleId {
	return SaleId{
		ChainId:            s.ChainId,
		CollateralContract: s.CollateralContract,
		TokenId:            s.TokenId,
	}
}

func (s *Sale) LowerCase() {
	s.Owner = s.Owner.ToLower()
	s.CollateralContract = s.CollateralContract.ToLower()
	s.Currency = s.Currency.ToLower()
	s.Lender = s.Lender.ToLower()
	for i := range s.Offers {
		s.Offers[i].Lender = s.Offers[i].Lender.ToLower()
	}
}

// NextOfferId returns the id the next appended offer will take. Offer
// ids are one-based and never reused within a sale.
// IsAvailableAt reports whether the listing still accepts offers and
// buy-nows. Zero means the listing never expires.
func (s *Sale) IsAvailableAt(now int64) bool {
	return s.AvailableAt == 0 || now <= s.AvailableAt
}

func (s *Sale) NextOfferId() int {
	return len(s.Offers) + 1
}

// FindOffer returns a pointer into the sale's offer slice, so mutations
// through it stick to the sale.
func (s *Sale) FindOffer(offerId int) *Offer {
	for i := range s.Offers {
		if s.Offers[i].OfferId == offerId {
			return &s.Offers[i]
		}
	}
	return nil
}

// ActiveOffer returns the offer accepted into Processing, if any.
func (s *Sale) ActiveOffer() *Offer {
	if s.ActiveOfferId == 0 {
		return nil
	}
	return s.FindOffer(s.ActiveOfferId)
}

// OpenOffers returns the ids of offers still waiting for acceptance.
func (s *Sale) OpenOffers() []int {
	ids := []int{}
	for i := range s.Offers {
		if s.Offers[i].Status == StatusOpen {
			ids = append(ids, s.Offers[i].OfferId)
		}
	}
	return ids
}

type FindAllOptions struct {
	ChainId            *domain.ChainId
	Owner              *domain.Address
	Lender             *domain.Address
	CollateralContract *domain.Address
	Status             *Status
	Offset             *int32
	Limit              *int32
	SortBy             *string
	SortDir            *domain.SortDir
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithChainId(chainId domain.ChainId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func WithOwner(owner domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		owner = owner.ToLower()
		options.Owner = &owner
		return nil
	}
}

func WithLender(lender domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		lender = lender.ToLower()
		options.Lender = &lender
		return nil
	}
}

func WithCollateralContract(contract domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		contract = contract.ToLower()
		options.CollateralContract = &contract
		return nil
	}
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Status = &status
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sortBy string, sortDir domain.SortDir) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SortBy = &sortBy
		options.SortDir = &sortDir
		return nil
	}
}

// Repo is repository layer of sale records. Replace matches the stored
// Version and returns domain.ErrConflict when another writer got there
// first.
type Repo interface {
	FindOne(ctx.Ctx, SaleId) (*Sale, error)
	FindAll(ctx.Ctx, ...FindAllOptionsFunc) ([]*Sale, error)
	Count(ctx.Ctx, ...FindAllOptionsFunc) (int, error)
	Create(ctx.Ctx, *Sale) error
	Replace(ctx.Ctx, *Sale) error
	Delete(ctx.Ctx, SaleId) error
}

// OwedQuote is the repayment figure for a loan at a settlement time.
// Amounts are raw integer strings in the sale's currency, OwedDisplay
// is scaled by the currency's decimals for rendering.
type OwedQuote struct {
	Principal   string `json:"principal"`
	Fee         string `json:"fee"`
	Interest    string `json:"interest"`
	Owed        string `json:"owed"`
	OwedDisplay string `json:"owedDisplay,omitempty"`
	SettleAt    int64  `json:"settleAt"`
	MaturityAt  int64  `json:"maturityAt"`
}

// UseCase represents the lending lifecycle's usecases
type UseCase interface {
	FindOne(ctx.Ctx, SaleId) (*Sale, error)
	FindAll(ctx.Ctx, ...FindAllOptionsFunc) ([]*Sale, int, error)

	// ListCollateral creates an Open sale from an escrowed NFT deposit
	ListCollateral(ctx.Ctx, *Listing) (*Sale, error)

	// HandleDeposit dispatches a currency deposit to the action carried
	// in its payload: submit offer, buy now or repay.
	HandleDeposit(ctx.Ctx, *Deposit) (*Sale, error)

	AcceptOffer(c ctx.Ctx, id SaleId, owner domain.Address, offerId int) (*Sale, error)
	CancelListing(c ctx.Ctx, id SaleId, owner domain.Address) (*Sale, error)
	CancelOffer(c ctx.Ctx, id SaleId, lender domain.Address, offerId int) (*Sale, error)
	Liquidate(c ctx.Ctx, id SaleId, caller domain.Address) (*Sale, error)

	EstimateOwed(c ctx.Ctx, id SaleId, settleAt int64) (*OwedQuote, error)
}
