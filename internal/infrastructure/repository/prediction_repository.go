package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/prediction"
)

// queryable is the database/sql surface the repositories need, satisfied by
// both *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// predictionRepository implements the history store contract on PostgreSQL.
// The model_predictions table is both the audit log and the source the
// customer baseline is read from.
type predictionRepository struct {
	db queryable
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db *sql.DB) *predictionRepository {
	return &predictionRepository{db: db}
}

// NewPredictionRepositoryWithTx creates a prediction repository bound to a
// transaction.
func NewPredictionRepositoryWithTx(tx *sql.Tx) *predictionRepository {
	return &predictionRepository{db: tx}
}

// Append inserts one prediction record. Duplicate transaction_ids hit the
// unique constraint and surface as a conflict; deduplication is the
// caller's concern.
func (r *predictionRepository) Append(ctx context.Context, record *prediction.Record) error {
	if record == nil {
		return errors.NewValidationError("MISSING_RECORD", "record is required")
	}

	featuresJSON, err := json.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("marshaling features snapshot: %w", err)
	}

	query := `
		INSERT INTO model_predictions (
			id, transaction_id, customer_id, features_json,
			risk_score, prediction, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.TransactionID, record.CustomerID, featuresJSON,
		record.RiskScore, record.Prediction, record.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return errors.NewConflictError(
				fmt.Sprintf("prediction for transaction %s already exists", record.TransactionID)).WithCause(err)
		}
		return errors.NewHistoryUnavailableError("appending prediction record").WithCause(err)
	}

	return nil
}

// AverageAmount returns the mean transaction_amount over the customer's
// previously committed records, 0 when no history exists. The amount is
// read back out of the features_json snapshot, the same field future rule
// evaluations will see.
func (r *predictionRepository) AverageAmount(ctx context.Context, customerID string) (float64, error) {
	query := `
		SELECT COALESCE(AVG((features_json->>'transaction_amount')::double precision), 0)
		FROM model_predictions
		WHERE customer_id = $1
	`

	var avg float64
	if err := r.db.QueryRowContext(ctx, query, customerID).Scan(&avg); err != nil {
		return 0, errors.NewHistoryUnavailableError("reading customer average").WithCause(err)
	}
	return avg, nil
}

// Recent returns the newest prediction records, most recent first.
func (r *predictionRepository) Recent(ctx context.Context, limit int) ([]*prediction.Record, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, transaction_id, customer_id, features_json,
		       risk_score, prediction, created_at
		FROM model_predictions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewHistoryUnavailableError("listing prediction records").WithCause(err)
	}
	defer rows.Close()

	var records []*prediction.Record
	for rows.Next() {
		var rec prediction.Record
		var featuresJSON []byte
		if err := rows.Scan(
			&rec.ID, &rec.TransactionID, &rec.CustomerID, &featuresJSON,
			&rec.RiskScore, &rec.Prediction, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning prediction record: %w", err)
		}
		if err := json.Unmarshal(featuresJSON, &rec.Features); err != nil {
			return nil, fmt.Errorf("unmarshaling features snapshot: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryUnavailableError("iterating prediction records").WithCause(err)
	}

	return records, nil
}
