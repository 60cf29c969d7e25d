package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
)

// alertRepository stores the compliance-facing fraud alert trail.
type alertRepository struct {
	db queryable
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *sql.DB) *alertRepository {
	return &alertRepository{db: db}
}

// Save inserts one fraud alert.
func (r *alertRepository) Save(ctx context.Context, alert *prediction.Alert) error {
	if alert == nil {
		return errors.NewValidationError("MISSING_ALERT", "alert is required")
	}

	query := `
		INSERT INTO fraud_alerts (
			id, transaction_id, customer_id, risk_score,
			reason, explanation, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.TransactionID, alert.CustomerID, alert.RiskScore,
		alert.Reason, alert.Explanation, alert.CreatedAt,
	)
	if err != nil {
		return errors.NewHistoryUnavailableError("saving fraud alert").WithCause(err)
	}
	return nil
}

// Recent returns the newest fraud alerts, most recent first.
func (r *alertRepository) Recent(ctx context.Context, limit int) ([]*prediction.Alert, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, transaction_id, customer_id, risk_score,
		       reason, explanation, created_at
		FROM fraud_alerts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewHistoryUnavailableError("listing fraud alerts").WithCause(err)
	}
	defer rows.Close()

	var alerts []*prediction.Alert
	for rows.Next() {
		var a prediction.Alert
		if err := rows.Scan(
			&a.ID, &a.TransactionID, &a.CustomerID, &a.RiskScore,
			&a.Reason, &a.Explanation, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning fraud alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryUnavailableError("iterating fraud alerts").WithCause(err)
	}

	return alerts, nil
}
