// Package repository provides PostgreSQL-backed data access for models,
// training jobs, prediction records and the historical record store.
package repository

import (
	"github.com/blazesportsintel/forecast/internal/database"
)

// Repositories bundles every repository behind one constructor
type Repositories struct {
	Models      ModelRepository
	Jobs        TrainingJobRepository
	Predictions PredictionRecordRepository
	Historical  HistoricalGameRepository
}

// NewRepositories creates all repositories over one connection pool
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Models:      NewPostgresModelRepository(db),
		Jobs:        NewPostgresTrainingJobRepository(db),
		Predictions: NewPostgresPredictionRecordRepository(db),
		Historical:  NewPostgresHistoricalGameRepository(db),
	}
}
