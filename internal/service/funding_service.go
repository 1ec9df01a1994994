package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/config"
	"github.com/GTDGit/vtu_api/internal/models"
	"github.com/GTDGit/vtu_api/internal/utils"
)

// FundingService builds offline wallet funding instructions.
type FundingService struct {
	catalog *catalog.Store
	deposit config.DepositConfig
	now     func() time.Time
}

// NewFundingService creates a FundingService.
func NewFundingService(store *catalog.Store, deposit config.DepositConfig) *FundingService {
	return &FundingService{
		catalog: store,
		deposit: deposit,
		now:     time.Now,
	}
}

// Instructions returns how to pay amount with method through bankKey.
// An empty bankKey selects the first listed bank. USSD codes carry the amount,
// or 0000 when no valid amount is given; bank and transfer return the deposit account.
func (s *FundingService) Instructions(method models.PaymentMethod, bankKey, amount string) (*models.FundingInstructions, error) {
	if method != models.PaymentUSSD && method != models.PaymentBank && method != models.PaymentTransfer {
		return nil, utils.ErrUnsupportedMethod
	}

	bank, err := s.resolveBank(bankKey)
	if err != nil {
		return nil, err
	}

	out := &models.FundingInstructions{
		Method: method,
		Bank:   bank,
	}
	switch method {
	case models.PaymentUSSD:
		out.USSD = strings.Replace(bank.USSDCode, "Amount", ussdAmount(amount), 1)
	default:
		out.Deposit = &models.DepositAccount{
			BankName:      bank.Name,
			AccountNumber: s.deposit.AccountNumber,
			AccountName:   s.deposit.AccountName,
			Reference:     utils.GenerateDepositReference(s.now()),
		}
	}
	return out, nil
}

func (s *FundingService) resolveBank(key string) (*models.Bank, error) {
	c := s.catalog.Current()
	if key == "" {
		if len(c.Banks) == 0 {
			return nil, utils.ErrUnknownBank
		}
		b := c.Banks[0]
		return &b, nil
	}
	return c.Bank(key)
}

func ussdAmount(raw string) string {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return strconv.Itoa(n)
	}
	return "0000"
}
