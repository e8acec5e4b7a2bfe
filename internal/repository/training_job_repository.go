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

// PostgresTrainingJobRepository implements TrainingJobRepository for PostgreSQL
type PostgresTrainingJobRepository struct {
	db *database.DB
}

// NewPostgresTrainingJobRepository creates a new training job repository
func NewPostgresTrainingJobRepository(db *database.DB) TrainingJobRepository {
	return &PostgresTrainingJobRepository{db: db}
}

const jobColumns = `id, sport, model_type, status, metrics, error, duration_seconds, started_at, completed_at`

// Create inserts a running job row
func (r *PostgresTrainingJobRepository) Create(ctx context.Context, job *models.TrainingJob) error {
	query := `
		INSERT INTO model_training_jobs (id, sport, model_type, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		job.ID, job.Sport, job.ModelType, job.Status, job.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create training job: %w", err)
	}

	return nil
}

// GetByID retrieves a training job by ID
func (r *PostgresTrainingJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM model_training_jobs WHERE id = $1`

	job, err := scanJob(r.db.GetPool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training job: %w", err)
	}

	return job, nil
}

// Complete transitions a running job to its terminal state. The status guard
// makes the transition idempotent-hostile: a job already completed or failed
// stays untouched and the call reports ErrNotFound.
func (r *PostgresTrainingJobRepository) Complete(ctx context.Context, job *models.TrainingJob) error {
	if !job.IsTerminal() {
		return fmt.Errorf("%w: job status %q is not terminal", models.ErrInvalid, job.Status)
	}

	var metricsJSON []byte
	if job.Metrics != nil {
		var err error
		metricsJSON, err = json.Marshal(job.Metrics)
		if err != nil {
			return fmt.Errorf("failed to encode job metrics: %w", err)
		}
	}

	query := `
		UPDATE model_training_jobs
		SET status = $1, metrics = $2, error = $3, duration_seconds = $4, completed_at = $5
		WHERE id = $6 AND status = $7
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		job.Status, metricsJSON, job.Error, job.DurationSeconds, job.CompletedAt,
		job.ID, models.JobStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to complete training job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListRecent retrieves the most recently started jobs
func (r *PostgresTrainingJobRepository) ListRecent(ctx context.Context, limit int) ([]*models.TrainingJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM model_training_jobs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.TrainingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*models.TrainingJob, error) {
	job := &models.TrainingJob{}
	var metricsJSON []byte
	err := row.Scan(
		&job.ID, &job.Sport, &job.ModelType, &job.Status, &metricsJSON,
		&job.Error, &job.DurationSeconds, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metricsJSON) > 0 {
		job.Metrics = &models.ModelMetrics{}
		if err := json.Unmarshal(metricsJSON, job.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode job metrics: %w", err)
		}
	}
	return job, nil
}
