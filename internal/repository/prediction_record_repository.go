package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/blazesportsintel/forecast/internal/database"
	"github.com/blazesportsintel/forecast/internal/models"
)

// PostgresPredictionRecordRepository implements PredictionRecordRepository for PostgreSQL
type PostgresPredictionRecordRepository struct {
	db *database.DB
}

// NewPostgresPredictionRecordRepository creates a new prediction record repository
func NewPostgresPredictionRecordRepository(db *database.DB) PredictionRecordRepository {
	return &PostgresPredictionRecordRepository{db: db}
}

const recordColumns = `game_id, sport, home_team, away_team, predicted_home_win_prob, predicted_away_win_prob,
	confidence_label, timestamp, actual_outcome, actual_home_win, brier_score, correct, reconciled_at`

// Create inserts a prediction record at prediction time
func (r *PostgresPredictionRecordRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	query := `
		INSERT INTO prediction_records
			(game_id, sport, home_team, away_team, predicted_home_win_prob, predicted_away_win_prob, confidence_label, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.GameID, record.Sport, record.HomeTeam, record.AwayTeam,
		record.PredictedHomeWinProb, record.PredictedAwayWinProb,
		record.ConfidenceLabel, record.Timestamp,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create prediction record: %w", err)
	}

	return nil
}

// GetByGameID retrieves the prediction record for a game
func (r *PostgresPredictionRecordRepository) GetByGameID(ctx context.Context, gameID string) (*models.PredictionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM prediction_records WHERE game_id = $1`

	record, err := scanRecord(r.db.GetPool().QueryRow(ctx, query, gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction record: %w", err)
	}

	return record, nil
}

// UpdateOutcome backfills the realized outcome for a game. The reconciled_at
// guard enforces exactly-once: a second call finds zero updatable rows, and a
// follow-up existence probe distinguishes missing from already reconciled.
func (r *PostgresPredictionRecordRepository) UpdateOutcome(ctx context.Context, gameID string, outcome models.GameOutcome, brier float64, correct bool) error {
	query := `
		UPDATE prediction_records
		SET actual_outcome = $1, actual_home_win = $2, brier_score = $3, correct = $4, reconciled_at = NOW()
		WHERE game_id = $5 AND reconciled_at IS NULL
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		outcome.Winner, outcome.HomeWon(), brier, correct, gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to reconcile prediction record: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	probe := `SELECT EXISTS (SELECT 1 FROM prediction_records WHERE game_id = $1)`
	if err := r.db.GetPool().QueryRow(ctx, probe, gameID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to probe prediction record: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrAlreadyReconciled
}

// ListReconciled retrieves reconciled records matching the filters, oldest first
// so trend windows read in chronological order.
func (r *PostgresPredictionRecordRepository) ListReconciled(ctx context.Context, filters PredictionFilters) ([]*models.PredictionRecord, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM prediction_records WHERE reconciled_at IS NOT NULL`)

	args := []interface{}{}
	if filters.Sport != "" {
		args = append(args, filters.Sport)
		fmt.Fprintf(&sb, " AND sport = $%d", len(args))
	}
	if filters.ConfidenceLabel != "" {
		args = append(args, filters.ConfidenceLabel)
		fmt.Fprintf(&sb, " AND confidence_label = $%d", len(args))
	}
	if filters.Start != nil {
		args = append(args, *filters.Start)
		fmt.Fprintf(&sb, " AND timestamp >= $%d", len(args))
	}
	if filters.End != nil {
		args = append(args, *filters.End)
		fmt.Fprintf(&sb, " AND timestamp < $%d", len(args))
	}
	sb.WriteString(" ORDER BY timestamp ASC")

	rows, err := r.db.GetPool().Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction records: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row rowScanner) (*models.PredictionRecord, error) {
	record := &models.PredictionRecord{}
	err := row.Scan(
		&record.GameID, &record.Sport, &record.HomeTeam, &record.AwayTeam,
		&record.PredictedHomeWinProb, &record.PredictedAwayWinProb,
		&record.ConfidenceLabel, &record.Timestamp,
		&record.ActualOutcome, &record.ActualHomeWin, &record.BrierScore,
		&record.Correct, &record.ReconciledAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}
