package directory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	svc, err := NewService(s.store)
	s.Require().NoError(err)
	s.service = svc
	s.now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.Require().NoError(svc.Seed(s.ctx, []*Customer{
		{ID: "cust_001", Name: "Acme Corporation", Email: "contact@acme.com", AccountNumber: "ACC-789123456",
			Status: StatusActive, CreditLimit: d("50000"), CurrentBalance: d("12500")},
		{ID: "cust_002", Name: "Tech Solutions Ltd", Email: "billing@techsolutions.com", AccountNumber: "ACC-456789123",
			Status: StatusActive, CreditLimit: d("25000"), CurrentBalance: d("8750")},
		{ID: "cust_003", Name: "Global Manufacturing Inc", Email: "accounts@globalmanuf.com", AccountNumber: "ACC-123456789",
			Status: StatusSuspended, CreditLimit: d("75000"), CurrentBalance: d("45000")},
	}))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *ServiceSuite) TestNewService() {
	_, err := NewService(nil)
	s.Error(err)
}

func (s *ServiceSuite) TestList() {
	s.Run("all customers ordered by id", func() {
		got, err := s.service.List(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.Equal("cust_001", got[0].ID)
	})

	s.Run("search matches name or email case-insensitively", func() {
		got, err := s.service.List(s.ctx, Filter{Search: "TECHSOL"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("cust_002", got[0].ID)
	})

	s.Run("status filter", func() {
		got, err := s.service.List(s.ctx, Filter{Status: StatusSuspended})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("cust_003", got[0].ID)
	})
}

func (s *ServiceSuite) TestLookups() {
	s.Run("by account number", func() {
		c, err := s.service.GetByAccountNumber(s.ctx, "ACC-456789123")
		s.Require().NoError(err)
		s.Equal("cust_002", c.ID)
	})

	s.Run("unknown account is not found", func() {
		_, err := s.service.GetByAccountNumber(s.ctx, "ACC-999888777")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("blank account is a validation error", func() {
		_, err := s.service.GetByAccountNumber(s.ctx, " ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.Get(s.ctx, "cust_404")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCreditCheck() {
	s.Run("active customer within headroom is approved", func() {
		res, err := s.service.CreditCheck(s.ctx, "cust_001", d("37500"))
		s.Require().NoError(err)
		s.True(res.AvailableCredit.Equal(d("37500")))
		s.True(res.Approved)
	})

	s.Run("amount above headroom is declined", func() {
		res, err := s.service.CreditCheck(s.ctx, "cust_001", d("37500.01"))
		s.Require().NoError(err)
		s.False(res.Approved)
	})

	s.Run("suspended customer is never approved", func() {
		res, err := s.service.CreditCheck(s.ctx, "cust_003", d("1"))
		s.Require().NoError(err)
		s.False(res.Approved)
		s.Equal(StatusSuspended, res.Status)
	})

	s.Run("negative amount is rejected", func() {
		_, err := s.service.CreditCheck(s.ctx, "cust_001", d("-1"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestUpdateBalance() {
	s.Run("payment reduces the balance and is logged", func() {
		txn, c, err := s.service.UpdateBalance(s.ctx, "cust_001", BalanceUpdate{Amount: d("2500"), Type: ChangePayment, Reference: "INV-2025-001"})
		s.Require().NoError(err)
		s.True(c.CurrentBalance.Equal(d("10000")))
		s.True(txn.OldBalance.Equal(d("12500")))
		s.True(txn.NewBalance.Equal(d("10000")))
		s.Require().NotNil(c.LastPaymentDate)
		s.Equal(s.now, *c.LastPaymentDate)

		log, err := s.service.Transactions(s.ctx, "cust_001")
		s.Require().NoError(err)
		s.Len(log, 1)
	})

	s.Run("charge increases the balance", func() {
		_, c, err := s.service.UpdateBalance(s.ctx, "cust_002", BalanceUpdate{Amount: d("250"), Type: ChangeCharge})
		s.Require().NoError(err)
		s.True(c.CurrentBalance.Equal(d("9000")))
	})

	s.Run("credit beyond the limit is refused and nothing changes", func() {
		_, _, err := s.service.UpdateBalance(s.ctx, "cust_002", BalanceUpdate{Amount: d("40000"), Type: ChangePayment})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		c, err := s.service.Get(s.ctx, "cust_002")
		s.Require().NoError(err)
		s.True(c.CurrentBalance.Equal(d("9000")))
		log, err := s.service.Transactions(s.ctx, "cust_002")
		s.Require().NoError(err)
		s.Len(log, 1)
	})

	s.Run("invalid type", func() {
		_, _, err := s.service.UpdateBalance(s.ctx, "cust_001", BalanceUpdate{Amount: d("1"), Type: "refund"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown customer", func() {
		_, _, err := s.service.UpdateBalance(s.ctx, "cust_404", BalanceUpdate{Amount: d("1"), Type: ChangePayment})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
