package registry

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/logger"
	"github.com/blazesportsintel/forecast/internal/models"
)

// MockModelRepository mocks the model repository
type MockModelRepository struct {
	mock.Mock
}

func (m *MockModelRepository) Create(ctx context.Context, model *models.TrainedModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainedModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainedModel), args.Error(1)
}

func (m *MockModelRepository) GetActive(ctx context.Context, sport, modelType string) ([]*models.TrainedModel, error) {
	args := m.Called(ctx, sport, modelType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrainedModel), args.Error(1)
}

func (m *MockModelRepository) ListBySport(ctx context.Context, sport string) ([]*models.TrainedModel, error) {
	args := m.Called(ctx, sport)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrainedModel), args.Error(1)
}

func (m *MockModelRepository) DeprecateOthers(ctx context.Context, keepID uuid.UUID, sport, modelType string) (int, error) {
	args := m.Called(ctx, keepID, sport, modelType)
	return args.Int(0), args.Error(1)
}

// MockTrainingJobRepository mocks the training job repository
type MockTrainingJobRepository struct {
	mock.Mock
}

func (m *MockTrainingJobRepository) Create(ctx context.Context, job *models.TrainingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockTrainingJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainingJob), args.Error(1)
}

func (m *MockTrainingJobRepository) Complete(ctx context.Context, job *models.TrainingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockTrainingJobRepository) ListRecent(ctx context.Context, limit int) ([]*models.TrainingJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrainingJob), args.Error(1)
}

// MockHistoricalGameRepository mocks the historical record store
type MockHistoricalGameRepository struct {
	mock.Mock
}

func (m *MockHistoricalGameRepository) GetTrainingRows(ctx context.Context, sport string, start, end *time.Time) ([]*models.HistoricalRow, error) {
	args := m.Called(ctx, sport, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistoricalRow), args.Error(1)
}

func (m *MockHistoricalGameRepository) CountBySport(ctx context.Context, sport string) (int, error) {
	args := m.Called(ctx, sport)
	return args.Int(0), args.Error(1)
}

// MockArtifactStore mocks the object-store artifact backend
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Put(ctx context.Context, sport, modelType string, jobID uuid.UUID, artifact *models.ModelArtifact) (string, error) {
	args := m.Called(ctx, sport, modelType, jobID, artifact)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Get(ctx context.Context, path string) (*models.ModelArtifact, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModelArtifact), args.Error(1)
}

func testTrainingConfig(minSamples int) *config.TrainingConfig {
	return &config.TrainingConfig{
		Schedule:      "0 3 * * *",
		Sports:        []string{"baseball"},
		MinSamples:    minSamples,
		Seed:          42,
		CrossValFolds: 5,
	}
}

func newTestManager(modelRepo *MockModelRepository, jobRepo *MockTrainingJobRepository, historicalRepo *MockHistoricalGameRepository, artifactStore *MockArtifactStore, minSamples int) *Manager {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return NewManager(modelRepo, jobRepo, historicalRepo, artifactStore, testTrainingConfig(minSamples), logger.NewTrainingLogger(base))
}

func historicalRows(n int) []*models.HistoricalRow {
	rows := make([]*models.HistoricalRow, n)
	for i := 0; i < n; i++ {
		rows[i] = &models.HistoricalRow{
			Sport:            "baseball",
			Position:         []string{"SS", "C", "OF", "P"}[i%4],
			CompetitionLevel: []string{"ncaa_d1", "juco", "high_school"}[i%3],
			BirthDate:        time.Date(2000+i%5, 3, 1, 0, 0, 0, 0, time.UTC),
			EventDate:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Stats: map[string]float64{
				"batting_avg":   0.220 + float64(i%10)*0.01,
				"exit_velocity": 85 + float64(i%15),
			},
			DraftRound: i % 6,
		}
	}
	return rows
}

func TestRunTrainingHappyPath(t *testing.T) {
	modelRepo := &MockModelRepository{}
	jobRepo := &MockTrainingJobRepository{}
	historicalRepo := &MockHistoricalGameRepository{}
	artifactStore := &MockArtifactStore{}

	historicalRepo.On("CountBySport", mock.Anything, "baseball").Return(150, nil)
	historicalRepo.On("GetTrainingRows", mock.Anything, "baseball", mock.Anything, mock.Anything).
		Return(historicalRows(150), nil)
	jobRepo.On("Create", mock.Anything, mock.MatchedBy(func(job *models.TrainingJob) bool {
		return job.Status == models.JobStatusRunning && job.Sport == "baseball"
	})).Return(nil)
	artifactStore.On("Put", mock.Anything, "baseball", models.ModelTypeDraftRound, mock.Anything, mock.Anything).
		Return("models/baseball/draft_round_abc.json", nil)
	modelRepo.On("Create", mock.Anything, mock.MatchedBy(func(model *models.TrainedModel) bool {
		return model.Status == models.ModelStatusActive && model.ArtifactPath != ""
	})).Return(nil)
	modelRepo.On("DeprecateOthers", mock.Anything, mock.Anything, "baseball", models.ModelTypeDraftRound).
		Return(1, nil)
	jobRepo.On("Complete", mock.Anything, mock.MatchedBy(func(job *models.TrainingJob) bool {
		return job.Status == models.JobStatusCompleted && job.Metrics != nil && job.CompletedAt != nil
	})).Return(nil)

	manager := newTestManager(modelRepo, jobRepo, historicalRepo, artifactStore, 100)
	model, err := manager.RunTraining(context.Background(), "baseball")
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Equal(t, models.ModelStatusActive, model.Status)
	assert.NotEmpty(t, model.Weights)
	assert.GreaterOrEqual(t, model.Metrics.Within1RoundAccuracy, model.Metrics.Accuracy)
	assert.NotEmpty(t, model.TrainingParameters)

	modelRepo.AssertExpectations(t)
	jobRepo.AssertExpectations(t)
	artifactStore.AssertExpectations(t)
}

func TestRunTrainingCrossValidates(t *testing.T) {
	modelRepo := &MockModelRepository{}
	jobRepo := &MockTrainingJobRepository{}
	historicalRepo := &MockHistoricalGameRepository{}
	artifactStore := &MockArtifactStore{}

	historicalRepo.On("CountBySport", mock.Anything, "baseball").Return(150, nil)
	historicalRepo.On("GetTrainingRows", mock.Anything, "baseball", mock.Anything, mock.Anything).
		Return(historicalRows(150), nil)
	jobRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	artifactStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("models/baseball/draft_round_abc.json", nil)
	modelRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	modelRepo.On("DeprecateOthers", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, nil)
	jobRepo.On("Complete", mock.Anything, mock.Anything).Return(nil)

	base, hook := logrustest.NewNullLogger()
	manager := NewManager(modelRepo, jobRepo, historicalRepo, artifactStore, testTrainingConfig(100), logger.NewTrainingLogger(base))

	_, err := manager.RunTraining(context.Background(), "baseball")
	require.NoError(t, err)

	var cvEntry *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Cross-validation completed" {
			cvEntry = entry
			break
		}
	}
	require.NotNil(t, cvEntry, "training run should report fold metrics")
	assert.Equal(t, 5, cvEntry.Data["folds"])
	meanAccuracy, ok := cvEntry.Data["mean_accuracy"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, meanAccuracy, 0.0)
	assert.LessOrEqual(t, meanAccuracy, 1.0)
}

func TestRunTrainingInsufficientDataAbortsBeforeJob(t *testing.T) {
	jobRepo := &MockTrainingJobRepository{}
	historicalRepo := &MockHistoricalGameRepository{}
	historicalRepo.On("CountBySport", mock.Anything, "baseball").Return(40, nil)

	manager := newTestManager(&MockModelRepository{}, jobRepo, historicalRepo, &MockArtifactStore{}, 100)
	_, err := manager.RunTraining(context.Background(), "baseball")
	assert.ErrorIs(t, err, models.ErrDataInsufficient)
	jobRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunTrainingFailureMarksJobFailed(t *testing.T) {
	modelRepo := &MockModelRepository{}
	jobRepo := &MockTrainingJobRepository{}
	historicalRepo := &MockHistoricalGameRepository{}
	artifactStore := &MockArtifactStore{}

	historicalRepo.On("CountBySport", mock.Anything, "baseball").Return(150, nil)
	historicalRepo.On("GetTrainingRows", mock.Anything, "baseball", mock.Anything, mock.Anything).
		Return(historicalRows(150), nil)
	jobRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	artifactStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", models.ErrUpstreamUnavailable)
	jobRepo.On("Complete", mock.Anything, mock.MatchedBy(func(job *models.TrainingJob) bool {
		return job.Status == models.JobStatusFailed && job.Error != nil
	})).Return(nil)

	manager := newTestManager(modelRepo, jobRepo, historicalRepo, artifactStore, 100)
	_, err := manager.RunTraining(context.Background(), "baseball")
	assert.Error(t, err)

	jobRepo.AssertExpectations(t)
	modelRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterThenDeprecateRetiresPriorActives(t *testing.T) {
	modelRepo := &MockModelRepository{}
	newModel := &models.TrainedModel{
		ID:        uuid.New(),
		Sport:     "baseball",
		ModelType: models.ModelTypeDraftRound,
		Weights:   []float64{0.1},
		TrainedAt: time.Now().UTC(),
	}

	modelRepo.On("Create", mock.Anything, newModel).Return(nil)
	modelRepo.On("DeprecateOthers", mock.Anything, newModel.ID, "baseball", models.ModelTypeDraftRound).
		Return(2, nil)

	manager := newTestManager(modelRepo, &MockTrainingJobRepository{}, &MockHistoricalGameRepository{}, &MockArtifactStore{}, 100)

	require.NoError(t, manager.RegisterModel(context.Background(), newModel))
	assert.Equal(t, models.ModelStatusActive, newModel.Status)

	deprecated, err := manager.DeprecateSupersededModels(context.Background(), newModel.ID, "baseball", models.ModelTypeDraftRound)
	require.NoError(t, err)
	assert.Equal(t, 2, deprecated)
	modelRepo.AssertExpectations(t)
}

func TestGetActiveModelPrefersMostRecent(t *testing.T) {
	modelRepo := &MockModelRepository{}
	newer := &models.TrainedModel{ID: uuid.New(), TrainedAt: time.Now().UTC()}
	older := &models.TrainedModel{ID: uuid.New(), TrainedAt: time.Now().UTC().Add(-time.Hour)}
	// repository returns recency order; a crash between register and
	// deprecate can leave both rows active
	modelRepo.On("GetActive", mock.Anything, "baseball", models.ModelTypeDraftRound).
		Return([]*models.TrainedModel{newer, older}, nil)

	manager := newTestManager(modelRepo, &MockTrainingJobRepository{}, &MockHistoricalGameRepository{}, &MockArtifactStore{}, 100)
	model, err := manager.GetActiveModel(context.Background(), "baseball", models.ModelTypeDraftRound)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, model.ID)
}

func TestGetActiveModelNoneActive(t *testing.T) {
	modelRepo := &MockModelRepository{}
	modelRepo.On("GetActive", mock.Anything, "baseball", models.ModelTypeDraftRound).
		Return([]*models.TrainedModel{}, nil)

	manager := newTestManager(modelRepo, &MockTrainingJobRepository{}, &MockHistoricalGameRepository{}, &MockArtifactStore{}, 100)
	_, err := manager.GetActiveModel(context.Background(), "baseball", models.ModelTypeDraftRound)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
