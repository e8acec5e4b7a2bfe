package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/blazesportsintel/forecast/internal/database"
	"github.com/blazesportsintel/forecast/internal/models"
)

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

const modelColumns = `id, sport, model_type, weights, bias, training_parameters, metrics, artifact_path, status, trained_at, created_at, updated_at`

// Create inserts a new trained model row
func (m *PostgresModelRepository) Create(ctx context.Context, model *models.TrainedModel) error {
	metricsJSON, err := json.Marshal(model.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	query := `
		INSERT INTO predictive_models (id, sport, model_type, weights, bias, training_parameters, metrics, artifact_path, status, trained_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = m.db.GetPool().Exec(ctx, query,
		model.ID, model.Sport, model.ModelType, model.Weights, model.Bias,
		model.TrainingParameters, metricsJSON, model.ArtifactPath, model.Status, model.TrainedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	return nil
}

// GetByID retrieves a model by ID
func (m *PostgresModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainedModel, error) {
	query := `SELECT ` + modelColumns + ` FROM predictive_models WHERE id = $1`

	model, err := scanModel(m.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	return model, nil
}

// GetActive retrieves active models for (sport, modelType), most recent first
func (m *PostgresModelRepository) GetActive(ctx context.Context, sport, modelType string) ([]*models.TrainedModel, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM predictive_models
		WHERE sport = $1 AND model_type = $2 AND status = $3
		ORDER BY trained_at DESC
	`

	rows, err := m.db.GetPool().Query(ctx, query, sport, modelType, models.ModelStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active models: %w", err)
	}
	defer rows.Close()

	return collectModels(rows)
}

// ListBySport retrieves all models for a sport
func (m *PostgresModelRepository) ListBySport(ctx context.Context, sport string) ([]*models.TrainedModel, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM predictive_models
		WHERE sport = $1
		ORDER BY trained_at DESC
	`

	rows, err := m.db.GetPool().Query(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	return collectModels(rows)
}

// DeprecateOthers marks every other active (sport, modelType) row as deprecated.
// Deliberately a separate statement from Create: registration and deprecation
// are two writes, and readers reconcile multiple active rows by recency.
func (m *PostgresModelRepository) DeprecateOthers(ctx context.Context, keepID uuid.UUID, sport, modelType string) (int, error) {
	query := `
		UPDATE predictive_models
		SET status = $1, updated_at = NOW()
		WHERE sport = $2 AND model_type = $3 AND status = $4 AND id != $5
	`

	tag, err := m.db.GetPool().Exec(ctx, query,
		models.ModelStatusDeprecated, sport, modelType, models.ModelStatusActive, keepID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deprecate superseded models: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (*models.TrainedModel, error) {
	model := &models.TrainedModel{}
	var metricsJSON []byte
	err := row.Scan(
		&model.ID, &model.Sport, &model.ModelType, &model.Weights, &model.Bias,
		&model.TrainingParameters, &metricsJSON, &model.ArtifactPath, &model.Status,
		&model.TrainedAt, &model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &model.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics: %w", err)
		}
	}
	return model, nil
}

func collectModels(rows pgx.Rows) ([]*models.TrainedModel, error) {
	var result []*models.TrainedModel
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		result = append(result, model)
	}
	return result, rows.Err()
}
