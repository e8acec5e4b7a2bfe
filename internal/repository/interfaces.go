package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/blazesportsintel/forecast/internal/models"
)

// ModelRepository defines the interface for trained model data access
type ModelRepository interface {
	Create(ctx context.Context, model *models.TrainedModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainedModel, error)
	// GetActive returns active rows for (sport, modelType) ordered most recently
	// trained first. Multiple rows are possible after a crash between register
	// and deprecate; callers treat the first row as authoritative.
	GetActive(ctx context.Context, sport, modelType string) ([]*models.TrainedModel, error)
	ListBySport(ctx context.Context, sport string) ([]*models.TrainedModel, error)
	// DeprecateOthers marks every active (sport, modelType) row other than
	// keepID as deprecated and returns the number of rows changed.
	DeprecateOthers(ctx context.Context, keepID uuid.UUID, sport, modelType string) (int, error)
}

// TrainingJobRepository defines the interface for training job data access
type TrainingJobRepository interface {
	Create(ctx context.Context, job *models.TrainingJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingJob, error)
	// Complete transitions a running job to a terminal state exactly once.
	Complete(ctx context.Context, job *models.TrainingJob) error
	ListRecent(ctx context.Context, limit int) ([]*models.TrainingJob, error)
}

// PredictionFilters narrows calibration queries
type PredictionFilters struct {
	Sport           string
	ConfidenceLabel string
	Start           *time.Time
	End             *time.Time
}

// PredictionRecordRepository defines the interface for prediction record data access
type PredictionRecordRepository interface {
	Create(ctx context.Context, record *models.PredictionRecord) error
	GetByGameID(ctx context.Context, gameID string) (*models.PredictionRecord, error)
	// UpdateOutcome backfills the realized outcome exactly once. Returns
	// models.ErrNotFound when no record exists for gameID and
	// models.ErrAlreadyReconciled when the record already holds an outcome.
	UpdateOutcome(ctx context.Context, gameID string, outcome models.GameOutcome, brier float64, correct bool) error
	ListReconciled(ctx context.Context, filters PredictionFilters) ([]*models.PredictionRecord, error)
}

// HistoricalGameRepository defines read-only access to the historical record store
type HistoricalGameRepository interface {
	GetTrainingRows(ctx context.Context, sport string, start, end *time.Time) ([]*models.HistoricalRow, error)
	CountBySport(ctx context.Context, sport string) (int, error)
}
