package domain_test

import (
	"testing"

	"github.com/ketsolab/ketoan/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestBankTxnTypeCreditsBank(t *testing.T) {
	credits := []domain.BankTxnType{domain.BankDeposit, domain.BankInterest, domain.BankCashDeposit}
	for _, txnType := range credits {
		assert.True(t, txnType.CreditsBank(), string(txnType))
	}

	debits := []domain.BankTxnType{
		domain.BankPayment, domain.BankSalary, domain.BankTaxPayment,
		domain.BankFee, domain.BankCashWithdrawal,
	}
	for _, txnType := range debits {
		assert.False(t, txnType.CreditsBank(), string(txnType))
	}
}
