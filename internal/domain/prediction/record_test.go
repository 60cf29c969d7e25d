package prediction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
)

func testFeatures() transaction.FeatureVector {
	return transaction.FeatureVector{
		AccountAgeDays:    120,
		TransactionAmount: 250,
		Channel:           transaction.ChannelWeb,
		KYCVerifiedFlag:   1,
		Hour:              14,
		Weekday:           3,
	}
}

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord("TXN_001", "C_001", testFeatures(), 0.42, 0)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, "TXN_001", rec.TransactionID)
	assert.Equal(t, "C_001", rec.CustomerID)
	assert.Equal(t, 0.42, rec.RiskScore)
	assert.Equal(t, 0, rec.Prediction)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestNewRecord_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		transactionID string
		customerID    string
		riskScore     float64
		prediction    int
	}{
		{"missing transaction id", "", "C_001", 0.5, 0},
		{"missing customer id", "TXN_001", "", 0.5, 0},
		{"risk score below range", "TXN_001", "C_001", -0.1, 0},
		{"risk score above range", "TXN_001", "C_001", 1.1, 0},
		{"bad prediction", "TXN_001", "C_001", 0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.transactionID, tt.customerID, testFeatures(), tt.riskScore, tt.prediction)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestNewAlert(t *testing.T) {
	alert := NewAlert("TXN_001", "C_001", 0.93, "Odd Hours (02:00-04:00)", "flagged for review")

	assert.NotEqual(t, uuid.Nil, alert.ID)
	assert.Equal(t, "TXN_001", alert.TransactionID)
	assert.Equal(t, 0.93, alert.RiskScore)
	assert.Equal(t, "Odd Hours (02:00-04:00)", alert.Reason)
	assert.False(t, alert.CreatedAt.IsZero())
}
