package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/domain"
	mEscrow "github.com/czConstant/constant-pawn-protocol/domain/escrow/mocks"
	mDomain "github.com/czConstant/constant-pawn-protocol/domain/mocks"
	"github.com/czConstant/constant-pawn-protocol/domain/pawn"
	mPawn "github.com/czConstant/constant-pawn-protocol/domain/pawn/mocks"
)

const (
	testOwner  = domain.Address("alice.near")
	testLender = domain.Address("carol.near")
	testToken  = domain.Address("usdt.near")
	testNft    = domain.Address("nft.near")

	graceSeconds = int64(DefaultGracePeriod / time.Second)
)

type pawnUseCaseTestSuite struct {
	suite.Suite

	saleRepo     *mPawn.Repo
	currencyRepo *mDomain.CurrencyRepo
	escrow       *mEscrow.Service
	im           pawn.UseCase
}

func TestPawnUseCase(t *testing.T) {
	suite.Run(t, new(pawnUseCaseTestSuite))
}

func (s *pawnUseCaseTestSuite) SetupTest() {
	s.saleRepo = &mPawn.Repo{}
	s.currencyRepo = &mDomain.CurrencyRepo{}
	s.escrow = &mEscrow.Service{}
	s.im = New(&PawnUseCaseCfg{
		SaleRepo:     s.saleRepo,
		CurrencyRepo: s.currencyRepo,
		Escrow:       s.escrow,
	})
}

func (s *pawnUseCaseTestSuite) openSale() *pawn.Sale {
	return &pawn.Sale{
		ChainId:            1,
		Owner:              testOwner,
		CollateralContract: testNft,
		TokenId:            "42",
		Currency:           testToken,
		Principal:          "1000",
		Duration:           864000,
		InterestRate:       1000,
		Status:             pawn.StatusOpen,
		Offers:             []pawn.Offer{},
		Version:            1,
	}
}

func (s *pawnUseCaseTestSuite) processingSale(startedAt int64) *pawn.Sale {
	sale := s.openSale()
	now := time.Now()
	sale.Offers = append(sale.Offers, pawn.Offer{
		OfferId:      1,
		Lender:       testLender,
		Principal:    "1000",
		Duration:     864000,
		InterestRate: 1000,
		Status:       pawn.StatusProcessing,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	sale.Lender = testLender
	sale.ActiveOfferId = 1
	sale.StartedAt = startedAt
	sale.Status = pawn.StatusProcessing
	return sale
}

func (s *pawnUseCaseTestSuite) TestListCollateral() {
	listing := &pawn.Listing{
		ChainId:            1,
		Owner:              testOwner,
		CollateralContract: testNft,
		TokenId:            "42",
		Currency:           testToken,
		Principal:          "1000",
		Duration:           864000,
		InterestRate:       1000,
	}

	s.currencyRepo.On("FindOne", mock.Anything, domain.ChainId(1), testToken).
		Return(&domain.Currency{ChainId: 1, Address: testToken, Decimals: 6}, nil)
	s.saleRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	sale, err := s.im.ListCollateral(bCtx.Background(), listing)
	s.NoError(err)
	s.Equal(pawn.StatusOpen, sale.Status)
	s.Empty(sale.Offers)
	s.Equal("1012", sale.EstimatedOwed)
}

func (s *pawnUseCaseTestSuite) TestListCollateralDuplicateKey() {
	listing := &pawn.Listing{
		ChainId:            1,
		Owner:              testOwner,
		CollateralContract: testNft,
		TokenId:            "42",
		Currency:           testToken,
		Principal:          "1000",
		Duration:           864000,
	}

	s.currencyRepo.On("FindOne", mock.Anything, domain.ChainId(1), testToken).
		Return(&domain.Currency{ChainId: 1, Address: testToken}, nil)
	s.saleRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := s.im.ListCollateral(bCtx.Background(), listing)
	s.True(errors.Is(err, domain.ErrInvalidListing))
}

func (s *pawnUseCaseTestSuite) TestListCollateralUnknownCurrency() {
	listing := &pawn.Listing{
		ChainId:            1,
		Owner:              testOwner,
		CollateralContract: testNft,
		TokenId:            "42",
		Currency:           "shady.near",
		Principal:          "1000",
		Duration:           864000,
	}

	s.currencyRepo.On("FindOne", mock.Anything, domain.ChainId(1), domain.Address("shady.near")).
		Return(nil, domain.ErrNotFound)

	_, err := s.im.ListCollateral(bCtx.Background(), listing)
	s.True(errors.Is(err, domain.ErrInvalidCurrency))
	s.saleRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestHandleDepositUnknownAction() {
	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "1000",
		Action:             "withdraw_everything",
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.True(errors.Is(err, domain.ErrUnknownAction))
	s.saleRepo.AssertNotCalled(s.T(), "FindOne", mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestSubmitOffer() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)

	res, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "900",
		Action:             pawn.DepositActionOffer,
		CollateralContract: testNft,
		TokenId:            "42",
		Duration:           432000,
		InterestRate:       800,
	})
	s.NoError(err)
	s.Equal(pawn.StatusOpen, res.Status)
	s.Len(res.Offers, 1)
	s.Equal(1, res.Offers[0].OfferId)
	s.Equal(testLender, res.Offers[0].Lender)
	s.Equal("900", res.Offers[0].Principal)
	s.Equal(pawn.StatusOpen, res.Offers[0].Status)
}

func (s *pawnUseCaseTestSuite) TestSubmitOfferByOwner() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testOwner,
		Currency:           testToken,
		Amount:             "900",
		Action:             pawn.DepositActionOffer,
		CollateralContract: testNft,
		TokenId:            "42",
		Duration:           432000,
	})
	s.True(errors.Is(err, domain.ErrBadParamInput))
}

func (s *pawnUseCaseTestSuite) TestSubmitOfferWrongCurrency() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           "othertoken.near",
		Amount:             "900",
		Action:             pawn.DepositActionOffer,
		CollateralContract: testNft,
		TokenId:            "42",
		Duration:           432000,
	})
	s.True(errors.Is(err, domain.ErrInvalidCurrency))
}

func (s *pawnUseCaseTestSuite) TestSubmitOfferWrongStatus() {
	sale := s.processingSale(time.Now().Unix())
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             "dave.near",
		Currency:           testToken,
		Amount:             "900",
		Action:             pawn.DepositActionOffer,
		CollateralContract: testNft,
		TokenId:            "42",
		Duration:           432000,
	})
	s.Equal(domain.ErrInvalidStatus, err)
}

func (s *pawnUseCaseTestSuite) TestSubmitOfferListingExpired() {
	sale := s.openSale()
	sale.AvailableAt = time.Now().Unix() - 60
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "900",
		Action:             pawn.DepositActionOffer,
		CollateralContract: testNft,
		TokenId:            "42",
		Duration:           432000,
	})
	s.True(errors.Is(err, domain.ErrInvalidListing))
	s.saleRepo.AssertNotCalled(s.T(), "Replace", mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestBuyNowListingExpired() {
	sale := s.openSale()
	sale.AvailableAt = time.Now().Unix() - 60
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "1000",
		Action:             pawn.DepositActionOfferNow,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.True(errors.Is(err, domain.ErrInvalidListing))
	s.escrow.AssertNotCalled(s.T(), "TransferFungible", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.saleRepo.AssertNotCalled(s.T(), "Replace", mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestBuyNow() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testOwner, "1000", "loan principal nft.near||42#1").
		Return(nil)

	res, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "1000",
		Action:             pawn.DepositActionOfferNow,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.NoError(err)
	s.Equal(pawn.StatusProcessing, res.Status)
	s.Equal(testLender, res.Lender)
	s.Equal(1, res.ActiveOfferId)
	s.NotZero(res.StartedAt)
	s.Len(res.Offers, 1)
	s.Equal(pawn.StatusProcessing, res.Offers[0].Status)
	s.Equal("1000", res.Offers[0].Principal)
	s.escrow.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestBuyNowAmountMismatch() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "999",
		Action:             pawn.DepositActionOfferNow,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.True(errors.Is(err, domain.ErrAmountMismatch))
	s.Equal(pawn.StatusOpen, sale.Status)
	s.escrow.AssertNotCalled(s.T(), "TransferFungible", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.saleRepo.AssertNotCalled(s.T(), "Replace", mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestBuyNowEscrowFailure() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testOwner, "1000", "loan principal nft.near||42#1").
		Return(domain.ErrEscrowFailure)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "1000",
		Action:             pawn.DepositActionOfferNow,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.True(errors.Is(err, domain.ErrEscrowFailure))
	s.saleRepo.AssertNotCalled(s.T(), "Replace", mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestRepayLoan() {
	// settled within the first day, one elapsed day plus nine half-rate
	// remainder days on a 10% ten day loan of 1000 owes 1011
	sale := s.processingSale(time.Now().Unix() - 10)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testLender, "1001", "loan repayment nft.near||42#1").
		Return(nil)
	s.escrow.On("TransferNFT", mock.Anything, domain.ChainId(1), testNft, domain.TokenId("42"), testOwner).
		Return(nil)

	res, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testOwner,
		Currency:           testToken,
		Amount:             "1011",
		Action:             pawn.DepositActionPayBackLoan,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.NoError(err)
	s.Equal(pawn.StatusDone, res.Status)
	s.Equal(pawn.StatusDone, res.Offers[0].Status)
	s.Equal("1011", res.PaidAmount)
	s.NotZero(res.PaidAt)
	s.escrow.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestRepayLoanNotBorrower() {
	sale := s.processingSale(time.Now().Unix() - 10)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testLender,
		Currency:           testToken,
		Amount:             "1011",
		Action:             pawn.DepositActionPayBackLoan,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.Equal(domain.ErrUnauthorized, err)
}

func (s *pawnUseCaseTestSuite) TestRepayLoanAmountMismatch() {
	sale := s.processingSale(time.Now().Unix() - 10)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testOwner,
		Currency:           testToken,
		Amount:             "1000",
		Action:             pawn.DepositActionPayBackLoan,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.True(errors.Is(err, domain.ErrAmountMismatch))
	s.escrow.AssertNotCalled(s.T(), "TransferFungible", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestRepayLoanWindowClosed() {
	sale := s.processingSale(time.Now().Unix() - 864000 - graceSeconds - 100)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.HandleDeposit(bCtx.Background(), &pawn.Deposit{
		ChainId:            1,
		Sender:             testOwner,
		Currency:           testToken,
		Amount:             "1012",
		Action:             pawn.DepositActionPayBackLoan,
		CollateralContract: testNft,
		TokenId:            "42",
	})
	s.Equal(domain.ErrRepaymentWindowClosed, err)
}

func (s *pawnUseCaseTestSuite) TestAcceptOffer() {
	sale := s.openSale()
	now := time.Now()
	for i, lender := range []domain.Address{"carol.near", "dave.near", "erin.near"} {
		sale.Offers = append(sale.Offers, pawn.Offer{
			OfferId:      i + 1,
			Lender:       lender,
			Principal:    "900",
			Duration:     432000,
			InterestRate: 800,
			Status:       pawn.StatusOpen,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testOwner, "900", "loan principal nft.near||42#2").
		Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, domain.Address("carol.near"), "900", "offer refund nft.near||42#1").
		Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, domain.Address("erin.near"), "900", "offer refund nft.near||42#3").
		Return(nil)

	res, err := s.im.AcceptOffer(bCtx.Background(), sale.ToId(), testOwner, 2)
	s.NoError(err)
	s.Equal(pawn.StatusProcessing, res.Status)
	s.Equal(domain.Address("dave.near"), res.Lender)
	s.Equal(2, res.ActiveOfferId)
	s.Equal("900", res.Principal)
	s.Equal(int64(432000), res.Duration)
	s.Equal(int64(800), res.InterestRate)
	s.Equal(pawn.StatusProcessing, res.Offers[1].Status)
	s.Equal(pawn.StatusRefunded, res.Offers[0].Status)
	s.Equal(pawn.StatusRefunded, res.Offers[2].Status)
	s.escrow.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestAcceptOfferNotOwner() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.AcceptOffer(bCtx.Background(), sale.ToId(), testLender, 1)
	s.Equal(domain.ErrUnauthorized, err)
}

func (s *pawnUseCaseTestSuite) TestAcceptOfferWrongStatus() {
	sale := s.processingSale(time.Now().Unix())
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.AcceptOffer(bCtx.Background(), sale.ToId(), testOwner, 1)
	s.Equal(domain.ErrInvalidStatus, err)
}

func (s *pawnUseCaseTestSuite) TestAcceptOfferNotFound() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.AcceptOffer(bCtx.Background(), sale.ToId(), testOwner, 7)
	s.Equal(domain.ErrOfferNotFound, err)
}

func (s *pawnUseCaseTestSuite) TestAcceptOfferExpired() {
	sale := s.openSale()
	now := time.Now()
	sale.Offers = append(sale.Offers, pawn.Offer{
		OfferId:      1,
		Lender:       testLender,
		Principal:    "900",
		Duration:     432000,
		InterestRate: 800,
		AvailableAt:  now.Unix() - 100,
		Status:       pawn.StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.AcceptOffer(bCtx.Background(), sale.ToId(), testOwner, 1)
	s.True(errors.Is(err, domain.ErrOfferUnavailable))
	s.escrow.AssertNotCalled(s.T(), "TransferFungible", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestAcceptOfferRefundFailureLeavesOfferOpen() {
	sale := s.openSale()
	now := time.Now()
	for i, lender := range []domain.Address{"carol.near", "dave.near"} {
		sale.Offers = append(sale.Offers, pawn.Offer{
			OfferId:      i + 1,
			Lender:       lender,
			Principal:    "900",
			Duration:     432000,
			InterestRate: 800,
			Status:       pawn.StatusOpen,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testOwner, "900", "loan principal nft.near||42#2").
		Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, domain.Address("carol.near"), "900", "offer refund nft.near||42#1").
		Return(domain.ErrEscrowFailure)

	res, err := s.im.AcceptOffer(bCtx.Background(), sale.ToId(), testOwner, 2)
	s.NoError(err)
	s.Equal(pawn.StatusProcessing, res.Status)
	s.Equal(pawn.StatusOpen, res.Offers[0].Status)
}

func (s *pawnUseCaseTestSuite) TestCancelListing() {
	sale := s.openSale()
	now := time.Now()
	sale.Offers = append(sale.Offers, pawn.Offer{
		OfferId:      1,
		Lender:       testLender,
		Principal:    "900",
		Duration:     432000,
		InterestRate: 800,
		Status:       pawn.StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testLender, "900", "offer refund nft.near||42#1").
		Return(nil)
	s.escrow.On("TransferNFT", mock.Anything, domain.ChainId(1), testNft, domain.TokenId("42"), testOwner).
		Return(nil)

	res, err := s.im.CancelListing(bCtx.Background(), sale.ToId(), testOwner)
	s.NoError(err)
	s.Equal(pawn.StatusCanceled, res.Status)
	s.Equal(pawn.StatusRefunded, res.Offers[0].Status)
	s.escrow.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestCancelListingNotOwner() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.CancelListing(bCtx.Background(), sale.ToId(), testLender)
	s.Equal(domain.ErrUnauthorized, err)
}

func (s *pawnUseCaseTestSuite) TestCancelOffer() {
	sale := s.openSale()
	sale.Currency = domain.NativeCurrency
	now := time.Now()
	sale.Offers = append(sale.Offers, pawn.Offer{
		OfferId:      1,
		Lender:       testLender,
		Principal:    "900",
		Duration:     432000,
		InterestRate: 800,
		Status:       pawn.StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferNative", mock.Anything, domain.ChainId(1), testLender, "900", "offer refund nft.near||42#1").Return(nil)

	res, err := s.im.CancelOffer(bCtx.Background(), sale.ToId(), testLender, 1)
	s.NoError(err)
	s.Equal(pawn.StatusOpen, res.Status)
	s.Equal(pawn.StatusCanceled, res.Offers[0].Status)
	s.escrow.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestCancelOfferNotLender() {
	sale := s.openSale()
	now := time.Now()
	sale.Offers = append(sale.Offers, pawn.Offer{
		OfferId:   1,
		Lender:    testLender,
		Principal: "900",
		Status:    pawn.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.CancelOffer(bCtx.Background(), sale.ToId(), "mallory.near", 1)
	s.Equal(domain.ErrUnauthorized, err)
}

func (s *pawnUseCaseTestSuite) TestCancelOfferNotOpen() {
	sale := s.processingSale(time.Now().Unix())
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.CancelOffer(bCtx.Background(), sale.ToId(), testLender, 1)
	s.True(errors.Is(err, domain.ErrInvalidStatus))
	s.escrow.AssertNotCalled(s.T(), "TransferFungible", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// When the refund settles but the optimistic replace loses the version
// race, the lender's retry must resubmit the refund as the identical
// logical transfer so the custody side can deduplicate it.
func (s *pawnUseCaseTestSuite) TestCancelOfferRetryAfterConflictRepeatsSameTransfer() {
	withOffer := func(version int64) *pawn.Sale {
		sale := s.openSale()
		sale.Version = version
		sale.Offers = append(sale.Offers, pawn.Offer{
			OfferId:      1,
			Lender:       testLender,
			Principal:    "900",
			Duration:     432000,
			InterestRate: 800,
			Status:       pawn.StatusOpen,
		})
		return sale
	}
	first := withOffer(1)
	second := withOffer(2)

	s.saleRepo.On("FindOne", mock.Anything, first.ToId()).Return(first, nil).Once()
	s.saleRepo.On("FindOne", mock.Anything, second.ToId()).Return(second, nil).Once()
	s.saleRepo.On("Replace", mock.Anything, first).Return(domain.ErrConflict).Once()
	s.saleRepo.On("Replace", mock.Anything, second).Return(nil).Once()
	s.escrow.On("TransferFungible", mock.Anything, domain.ChainId(1), testToken, testLender, "900", "offer refund nft.near||42#1").
		Return(nil).Twice()

	_, err := s.im.CancelOffer(bCtx.Background(), first.ToId(), testLender, 1)
	s.Equal(domain.ErrConflict, err)

	res, err := s.im.CancelOffer(bCtx.Background(), second.ToId(), testLender, 1)
	s.NoError(err)
	s.Equal(pawn.StatusCanceled, res.Offers[0].Status)
	s.escrow.AssertExpectations(s.T())
	s.saleRepo.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestLiquidate() {
	sale := s.processingSale(time.Now().Unix() - 864000 - graceSeconds - 100)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.saleRepo.On("Replace", mock.Anything, sale).Return(nil)
	s.escrow.On("TransferNFT", mock.Anything, domain.ChainId(1), testNft, domain.TokenId("42"), testLender).
		Return(nil)

	res, err := s.im.Liquidate(bCtx.Background(), sale.ToId(), testLender)
	s.NoError(err)
	s.Equal(pawn.StatusLiquidated, res.Status)
	s.Equal(pawn.StatusLiquidated, res.Offers[0].Status)
	s.escrow.AssertExpectations(s.T())
}

func (s *pawnUseCaseTestSuite) TestLiquidateNotYetExpired() {
	sale := s.processingSale(time.Now().Unix() - 864000 + 100)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.Liquidate(bCtx.Background(), sale.ToId(), testLender)
	s.Equal(domain.ErrLoanNotYetExpired, err)
	s.escrow.AssertNotCalled(s.T(), "TransferNFT", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *pawnUseCaseTestSuite) TestLiquidateWrongStatus() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.Liquidate(bCtx.Background(), sale.ToId(), testLender)
	s.Equal(domain.ErrInvalidStatus, err)
}

func (s *pawnUseCaseTestSuite) TestEstimateOwed() {
	startedAt := time.Now().Unix() - 10
	sale := s.processingSale(startedAt)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.currencyRepo.On("FindOne", mock.Anything, domain.ChainId(1), testToken).
		Return(&domain.Currency{Symbol: "USDT", Decimals: 2, ChainId: 1, Address: testToken}, nil)

	quote, err := s.im.EstimateOwed(bCtx.Background(), sale.ToId(), startedAt+5*86400)
	s.NoError(err)
	s.Equal("1000", quote.Principal)
	s.Equal("10", quote.Fee)
	s.Equal("1", quote.Interest)
	s.Equal("1011", quote.Owed)
	s.Equal("10.11", quote.OwedDisplay)
	s.Equal(startedAt+864000, quote.MaturityAt)
}

func (s *pawnUseCaseTestSuite) TestEstimateOwedUnknownCurrency() {
	startedAt := time.Now().Unix() - 10
	sale := s.processingSale(startedAt)
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)
	s.currencyRepo.On("FindOne", mock.Anything, domain.ChainId(1), testToken).
		Return(nil, domain.ErrNotFound)

	quote, err := s.im.EstimateOwed(bCtx.Background(), sale.ToId(), startedAt+5*86400)
	s.NoError(err)
	s.Equal("1011", quote.Owed)
	s.Empty(quote.OwedDisplay)
}

func (s *pawnUseCaseTestSuite) TestEstimateOwedWrongStatus() {
	sale := s.openSale()
	s.saleRepo.On("FindOne", mock.Anything, sale.ToId()).Return(sale, nil)

	_, err := s.im.EstimateOwed(bCtx.Background(), sale.ToId(), 0)
	s.Equal(domain.ErrInvalidStatus, err)
}
