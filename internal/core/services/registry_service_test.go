package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/core/services"
	"github.com/ketsolab/ketoan/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListChildren(ctx context.Context, code string) ([]domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockLedgerRepository is a mock type for the LedgerRepositoryFacade interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockLedgerRepository) ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, accountCode, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockLedgerRepository) HasLinesForAccount(ctx context.Context, accountCode string) (bool, error) {
	args := m.Called(ctx, accountCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) SumByAccount(ctx context.Context, from, to time.Time) (map[string]domain.Movement, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Movement), args.Error(1)
}

// --- Test Suite Setup ---

type RegistryServiceTestSuite struct {
	suite.Suite
	mockAccounts *MockAccountRepository
	mockLedger   *MockLedgerRepository
	service      portssvc.RegistrySvcFacade
}

func (suite *RegistryServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockLedger = new(MockLedgerRepository)
	suite.service = services.NewRegistryService(suite.mockAccounts, suite.mockLedger)
}

// --- Test Cases ---

func (suite *RegistryServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	parent := &domain.Account{Code: "156", Name: "Hang hoa", Nature: domain.NatureDebit, Status: domain.AccountActive, IsParent: true}
	req := dto.CreateAccountRequest{
		Code:   "1562",
		Name:   "Chi phi thu mua hang hoa",
		Nature: domain.NatureDebit,
	}

	suite.mockAccounts.On("FindAccountByCode", ctx, "156").Return(parent, nil)
	suite.mockAccounts.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.Register(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal("1562", account.Code)
	suite.Equal(domain.AccountActive, account.Status)
	suite.Equal("user-1", account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)

	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *RegistryServiceTestSuite) TestRegister_MarksParentAsGroup() {
	ctx := context.Background()
	parent := &domain.Account{Code: "642", Name: "Chi phi quan ly", Nature: domain.NatureDebit, Status: domain.AccountActive}
	req := dto.CreateAccountRequest{Code: "6423", Name: "Chi phi do dung", Nature: domain.NatureDebit}

	suite.mockAccounts.On("FindAccountByCode", ctx, "642").Return(parent, nil)
	suite.mockAccounts.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockAccounts.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "642" && a.IsParent
	})).Return(nil).Once()

	_, err := suite.service.Register(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *RegistryServiceTestSuite) TestRegister_InvalidCode() {
	ctx := context.Background()

	for _, code := range []string{"", "12", "912", "123456", "15a1"} {
		_, err := suite.service.Register(ctx, dto.CreateAccountRequest{Code: code, Name: "x", Nature: domain.NatureDebit}, "user-1")
		suite.Require().Error(err, code)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.mockAccounts.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *RegistryServiceTestSuite) TestRegister_ParentMismatch() {
	ctx := context.Background()
	wrongParent := "131"
	req := dto.CreateAccountRequest{Code: "1562", Name: "x", Nature: domain.NatureDebit, ParentCode: &wrongParent}

	_, err := suite.service.Register(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccounts.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *RegistryServiceTestSuite) TestRegister_UnknownParent() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "1562", Name: "x", Nature: domain.NatureDebit}

	suite.mockAccounts.On("FindAccountByCode", ctx, "156").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Register(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *RegistryServiceTestSuite) TestRegister_TopLevelNeedsNoParent() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "711", Name: "Thu nhap khac", Nature: domain.NatureCredit}

	suite.mockAccounts.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.Register(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal("711", account.Code)
	suite.mockAccounts.AssertNotCalled(suite.T(), "FindAccountByCode", mock.Anything, mock.Anything)
}

func (suite *RegistryServiceTestSuite) TestRegister_Duplicate() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "711", Name: "Thu nhap khac", Nature: domain.NatureCredit}

	suite.mockAccounts.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.Register(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *RegistryServiceTestSuite) TestDeactivate_Success() {
	ctx := context.Background()
	account := &domain.Account{Code: "6423", Status: domain.AccountActive}

	suite.mockAccounts.On("FindAccountByCode", ctx, "6423").Return(account, nil).Once()
	suite.mockAccounts.On("ListChildren", ctx, "6423").Return([]domain.Account{}, nil).Once()
	suite.mockLedger.On("HasLinesForAccount", ctx, "6423").Return(false, nil).Once()
	suite.mockAccounts.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "6423" && a.Status == domain.AccountInactive
	})).Return(nil).Once()

	err := suite.service.Deactivate(ctx, "6423", "user-1")

	suite.Require().NoError(err)
	suite.mockAccounts.AssertExpectations(suite.T())
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *RegistryServiceTestSuite) TestDeactivate_SystemAccount() {
	ctx := context.Background()
	account := &domain.Account{Code: "111", Status: domain.AccountSystem}

	suite.mockAccounts.On("FindAccountByCode", ctx, "111").Return(account, nil).Once()

	err := suite.service.Deactivate(ctx, "111", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccounts.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *RegistryServiceTestSuite) TestDeactivate_HasChildren() {
	ctx := context.Background()
	account := &domain.Account{Code: "1562", Status: domain.AccountActive}

	suite.mockAccounts.On("FindAccountByCode", ctx, "1562").Return(account, nil).Once()
	suite.mockAccounts.On("ListChildren", ctx, "1562").Return([]domain.Account{{Code: "15621"}}, nil).Once()

	err := suite.service.Deactivate(ctx, "1562", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccounts.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *RegistryServiceTestSuite) TestDeactivate_HasPostings() {
	ctx := context.Background()
	account := &domain.Account{Code: "6423", Status: domain.AccountActive}

	suite.mockAccounts.On("FindAccountByCode", ctx, "6423").Return(account, nil).Once()
	suite.mockAccounts.On("ListChildren", ctx, "6423").Return([]domain.Account{}, nil).Once()
	suite.mockLedger.On("HasLinesForAccount", ctx, "6423").Return(true, nil).Once()

	err := suite.service.Deactivate(ctx, "6423", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccounts.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *RegistryServiceTestSuite) TestValidateForPosting() {
	ctx := context.Background()

	suite.mockAccounts.On("FindAccountByCode", ctx, "5111").
		Return(&domain.Account{Code: "5111", Status: domain.AccountSystem}, nil).Once()
	suite.Require().NoError(suite.service.ValidateForPosting(ctx, "5111"))

	suite.mockAccounts.On("FindAccountByCode", ctx, "999").Return(nil, apperrors.ErrNotFound).Once()
	suite.ErrorIs(suite.service.ValidateForPosting(ctx, "999"), apperrors.ErrNotFound)

	suite.mockAccounts.On("FindAccountByCode", ctx, "6423").
		Return(&domain.Account{Code: "6423", Status: domain.AccountInactive}, nil).Once()
	suite.ErrorIs(suite.service.ValidateForPosting(ctx, "6423"), apperrors.ErrValidation)

	suite.mockAccounts.On("FindAccountByCode", ctx, "3331").
		Return(&domain.Account{Code: "3331", Status: domain.AccountSystem, IsParent: true}, nil).Once()
	suite.ErrorIs(suite.service.ValidateForPosting(ctx, "3331"), apperrors.ErrValidation)

	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *RegistryServiceTestSuite) TestLookupAndChildren() {
	ctx := context.Background()
	account := &domain.Account{Code: "156", IsParent: true, Status: domain.AccountSystem}

	suite.mockAccounts.On("FindAccountByCode", ctx, "156").Return(account, nil)
	suite.mockAccounts.On("ListChildren", ctx, "156").
		Return([]domain.Account{{Code: "1561"}, {Code: "1562"}}, nil).Once()

	got, err := suite.service.Lookup(ctx, "156")
	suite.Require().NoError(err)
	suite.Equal(account, got)

	children, err := suite.service.Children(ctx, "156")
	suite.Require().NoError(err)
	suite.Len(children, 2)

	suite.mockAccounts.AssertExpectations(suite.T())
}

func TestRegistryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceTestSuite))
}
