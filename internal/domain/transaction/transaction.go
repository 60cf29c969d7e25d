package transaction

import (
	"strings"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
)

// Channel values considered already normalized. Anything else passes through
// NormalizeChannel and is kept as-is; the scorer's one-hot encoding ignores
// channels outside its vocabulary.
const (
	ChannelWeb           = "web"
	ChannelMobileBrowser = "mobile_browser"
	ChannelMobileApp     = "mobile_app"
	ChannelATM           = "atm"
	ChannelBranch        = "branch"
	ChannelUnknown       = "unknown"
)

// Transaction is a single incoming payment event. Immutable once received;
// TransactionID is the natural key across all persisted records.
type Transaction struct {
	TransactionID     string  `json:"transaction_id"`
	CustomerID        string  `json:"customer_id"`
	AccountAgeDays    float64 `json:"account_age_days"`
	TransactionAmount float64 `json:"transaction_amount"`
	Channel           string  `json:"channel"`
	KYCVerifiedFlag   int     `json:"kyc_verified_flag"`
	Hour              int     `json:"hour"`
	Weekday           int     `json:"weekday"`
}

// FeatureVector is the fixed-order snapshot the scorer consumes. Field order
// and JSON keys are stable: the persisted features_json layout and the model
// artifact both key off them.
type FeatureVector struct {
	AccountAgeDays    float64 `json:"account_age_days"`
	TransactionAmount float64 `json:"transaction_amount"`
	Channel           string  `json:"channel"`
	KYCVerifiedFlag   int     `json:"kyc_verified_flag"`
	Hour              int     `json:"hour"`
	Weekday           int     `json:"weekday"`
}

// NormalizeChannel lowercases, trims and collapses inner whitespace so that
// "Mobile Browser" and "mobile_browser" land on the same categorical value.
func NormalizeChannel(channel string) string {
	c := strings.ToLower(strings.TrimSpace(channel))
	c = strings.Join(strings.Fields(c), "_")
	return c
}

// New validates the raw fields and returns a normalized transaction.
func New(transactionID, customerID string, accountAgeDays, amount float64, channel string, kycVerified, hour, weekday int) (*Transaction, error) {
	t := &Transaction{
		TransactionID:     transactionID,
		CustomerID:        customerID,
		AccountAgeDays:    accountAgeDays,
		TransactionAmount: amount,
		Channel:           NormalizeChannel(channel),
		KYCVerifiedFlag:   kycVerified,
		Hour:              hour,
		Weekday:           weekday,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that identifiers are present, monetary fields are
// non-negative and flag and calendar fields are in range.
func (t *Transaction) Validate() error {
	if t.TransactionID == "" {
		return errors.NewValidationError("MISSING_TRANSACTION_ID", "transaction_id is required")
	}
	if t.CustomerID == "" {
		return errors.NewValidationError("MISSING_CUSTOMER_ID", "customer_id is required")
	}
	if t.AccountAgeDays < 0 {
		return errors.NewValidationError("INVALID_ACCOUNT_AGE", "account_age_days cannot be negative")
	}
	if t.TransactionAmount < 0 {
		return errors.NewValidationError("INVALID_AMOUNT", "transaction_amount cannot be negative")
	}
	if t.Channel == "" {
		return errors.NewValidationError("MISSING_CHANNEL", "channel is required")
	}
	if t.KYCVerifiedFlag != 0 && t.KYCVerifiedFlag != 1 {
		return errors.NewValidationError("INVALID_KYC_FLAG", "kyc_verified_flag must be 0 or 1")
	}
	if t.Hour < 0 || t.Hour > 23 {
		return errors.NewValidationError("INVALID_HOUR", "hour must be between 0 and 23")
	}
	if t.Weekday < 0 || t.Weekday > 6 {
		return errors.NewValidationError("INVALID_WEEKDAY", "weekday must be between 0 and 6")
	}
	return nil
}

// Features maps the transaction into the fixed feature vector the scorer
// expects. It re-validates so malformed input fails before it can reach the
// scorer or the rule evaluation.
func (t *Transaction) Features() (FeatureVector, error) {
	if err := t.Validate(); err != nil {
		return FeatureVector{}, err
	}
	return FeatureVector{
		AccountAgeDays:    t.AccountAgeDays,
		TransactionAmount: t.TransactionAmount,
		Channel:           NormalizeChannel(t.Channel),
		KYCVerifiedFlag:   t.KYCVerifiedFlag,
		Hour:              t.Hour,
		Weekday:           t.Weekday,
	}, nil
}

// KYCVerified reports the binary flag as a bool for rule evaluation.
func (t *Transaction) KYCVerified() bool {
	return t.KYCVerifiedFlag == 1
}
