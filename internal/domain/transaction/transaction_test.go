package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
)

func validTransaction() *Transaction {
	return &Transaction{
		TransactionID:     "TXN_001",
		CustomerID:        "C_001",
		AccountAgeDays:    120,
		TransactionAmount: 250,
		Channel:           ChannelWeb,
		KYCVerifiedFlag:   1,
		Hour:              14,
		Weekday:           3,
	}
}

func TestNormalizeChannel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"web", "web"},
		{"Web", "web"},
		{"  WEB  ", "web"},
		{"Mobile Browser", "mobile_browser"},
		{"  mobile   browser ", "mobile_browser"},
		{"mobile_browser", "mobile_browser"},
		{"ATM", "atm"},
		{"", ""},
		{"pos terminal", "pos_terminal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeChannel(tt.in), "input %q", tt.in)
	}
}

func TestNew(t *testing.T) {
	tx, err := New("TXN_001", "C_001", 120, 250, "  Mobile Browser ", 1, 14, 3)
	require.NoError(t, err)
	assert.Equal(t, "mobile_browser", tx.Channel)
	assert.True(t, tx.KYCVerified())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		code   string
	}{
		{"valid", func(tx *Transaction) {}, ""},
		{"missing transaction id", func(tx *Transaction) { tx.TransactionID = "" }, "MISSING_TRANSACTION_ID"},
		{"missing customer id", func(tx *Transaction) { tx.CustomerID = "" }, "MISSING_CUSTOMER_ID"},
		{"negative account age", func(tx *Transaction) { tx.AccountAgeDays = -1 }, "INVALID_ACCOUNT_AGE"},
		{"negative amount", func(tx *Transaction) { tx.TransactionAmount = -0.01 }, "INVALID_AMOUNT"},
		{"zero amount ok", func(tx *Transaction) { tx.TransactionAmount = 0 }, ""},
		{"missing channel", func(tx *Transaction) { tx.Channel = "" }, "MISSING_CHANNEL"},
		{"bad kyc flag", func(tx *Transaction) { tx.KYCVerifiedFlag = 2 }, "INVALID_KYC_FLAG"},
		{"hour too high", func(tx *Transaction) { tx.Hour = 24 }, "INVALID_HOUR"},
		{"hour negative", func(tx *Transaction) { tx.Hour = -1 }, "INVALID_HOUR"},
		{"hour boundaries ok", func(tx *Transaction) { tx.Hour = 0 }, ""},
		{"weekday too high", func(tx *Transaction) { tx.Weekday = 7 }, "INVALID_WEEKDAY"},
		{"weekday boundaries ok", func(tx *Transaction) { tx.Weekday = 6 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(tx)

			err := tx.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			var appErr *errors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestFeatures(t *testing.T) {
	tx := validTransaction()
	features, err := tx.Features()
	require.NoError(t, err)

	assert.Equal(t, tx.AccountAgeDays, features.AccountAgeDays)
	assert.Equal(t, tx.TransactionAmount, features.TransactionAmount)
	assert.Equal(t, tx.Channel, features.Channel)
	assert.Equal(t, tx.KYCVerifiedFlag, features.KYCVerifiedFlag)
	assert.Equal(t, tx.Hour, features.Hour)
	assert.Equal(t, tx.Weekday, features.Weekday)
}

func TestFeatures_InvalidTransaction(t *testing.T) {
	tx := validTransaction()
	tx.Hour = 99

	_, err := tx.Features()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestKYCVerified(t *testing.T) {
	tx := validTransaction()
	assert.True(t, tx.KYCVerified())

	tx.KYCVerifiedFlag = 0
	assert.False(t, tx.KYCVerified())
}
