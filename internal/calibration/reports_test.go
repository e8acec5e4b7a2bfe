package calibration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blazesportsintel/forecast/internal/models"
	"github.com/blazesportsintel/forecast/internal/repository"
)

var trendBase = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestGetAccuracyMetricsBreakdowns(t *testing.T) {
	records := []*models.PredictionRecord{
		reconciledRecord("g1", "baseball", models.ConfidenceHigh, 0.7, true, trendBase),
		reconciledRecord("g2", "baseball", models.ConfidenceLow, 0.6, false, trendBase),
		reconciledRecord("g3", "football", models.ConfidenceHigh, 0.8, true, trendBase),
		reconciledRecord("g4", "football", models.ConfidenceHigh, 0.3, false, trendBase),
	}
	repo := &MockPredictionRecordRepository{}
	repo.On("ListReconciled", mock.Anything, mock.Anything).Return(records, nil)

	tracker := newTestTracker(repo)
	result, err := tracker.GetAccuracyMetrics(context.Background(), repository.PredictionFilters{})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Overall.TotalPredictions)
	assert.Equal(t, 3, result.Overall.CorrectPredictions)
	assert.InDelta(t, 75.0, result.Overall.Accuracy, 1e-9)

	assert.Equal(t, 2, result.BySport["baseball"].TotalPredictions)
	assert.Equal(t, 1, result.BySport["baseball"].CorrectPredictions)
	assert.Equal(t, 2, result.BySport["football"].TotalPredictions)

	assert.Equal(t, 3, result.ByConfidence[models.ConfidenceHigh].TotalPredictions)
	assert.Equal(t, 1, result.ByConfidence[models.ConfidenceLow].TotalPredictions)
}

func TestAnalyzeCalibrationDeciles(t *testing.T) {
	// three records in [0.6, 0.7), two home wins: predicted ~0.65, actual 2/3
	records := []*models.PredictionRecord{
		reconciledRecord("g1", "baseball", "", 0.62, true, trendBase),
		reconciledRecord("g2", "baseball", "", 0.65, true, trendBase),
		reconciledRecord("g3", "baseball", "", 0.68, false, trendBase),
		// top bucket is closed: 1.0 lands in [0.9, 1.0]
		reconciledRecord("g4", "baseball", "", 1.0, true, trendBase),
	}
	repo := &MockPredictionRecordRepository{}
	repo.On("ListReconciled", mock.Anything, mock.Anything).Return(records, nil)

	tracker := newTestTracker(repo)
	report, err := tracker.AnalyzeCalibration(context.Background(), "baseball")
	require.NoError(t, err)

	require.Len(t, report.Buckets, 2)
	sixties := report.Buckets[0]
	assert.InDelta(t, 0.6, sixties.RangeLow, 1e-9)
	assert.Equal(t, 3, sixties.Samples)
	assert.InDelta(t, 0.65, sixties.PredictedWinRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, sixties.ActualWinRate, 1e-9)

	top := report.Buckets[1]
	assert.InDelta(t, 0.9, top.RangeLow, 1e-9)
	assert.Equal(t, 1, top.Samples)
	assert.InDelta(t, 0.0, top.CalibrationError, 1e-9)
}

func TestAnalyzeCalibrationQualityLabels(t *testing.T) {
	tests := []struct {
		meanError float64
		want      string
	}{
		{0.01, QualityExcellent},
		{0.049, QualityExcellent},
		{0.07, QualityGood},
		{0.12, QualityFair},
		{0.20, QualityPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, qualityLabel(tt.meanError), "mean error %f", tt.meanError)
	}
}

func TestAnalyzeCalibrationNoData(t *testing.T) {
	repo := &MockPredictionRecordRepository{}
	repo.On("ListReconciled", mock.Anything, mock.Anything).Return([]*models.PredictionRecord{}, nil)

	tracker := newTestTracker(repo)
	_, err := tracker.AnalyzeCalibration(context.Background(), "baseball")
	assert.ErrorIs(t, err, models.ErrDataInsufficient)
}

func TestGetAccuracyTrendMovingAverageNullBeforeSevenDays(t *testing.T) {
	var records []*models.PredictionRecord
	for day := 0; day < 10; day++ {
		ts := trendBase.AddDate(0, 0, day)
		homeWon := day%2 == 0
		records = append(records, reconciledRecord("g", "baseball", "", 0.6, homeWon, ts))
	}
	repo := &MockPredictionRecordRepository{}
	repo.On("ListReconciled", mock.Anything, mock.Anything).Return(records, nil)

	tracker := newTestTracker(repo)
	points, err := tracker.GetAccuracyTrend(context.Background(), "baseball", 30)
	require.NoError(t, err)
	require.Len(t, points, 10)

	for i, point := range points {
		if i < 6 {
			assert.Nil(t, point.MovingAvgAccuracy, "day %d should have nil moving average", i)
			assert.Nil(t, point.MovingAvgBrier, "day %d should have nil moving average", i)
		} else {
			require.NotNil(t, point.MovingAvgAccuracy, "day %d should have a moving average", i)
			require.NotNil(t, point.MovingAvgBrier, "day %d should have a moving average", i)
		}
	}

	// trailing window of alternating win/loss days averages to ~4/7 or 3/7
	assert.InDelta(t, 4.0/7.0, *points[6].MovingAvgAccuracy, 1e-9)
}

func TestGetAccuracyTrendInvalidWindow(t *testing.T) {
	tracker := newTestTracker(&MockPredictionRecordRepository{})
	_, err := tracker.GetAccuracyTrend(context.Background(), "", 0)
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestCompareModelPerformanceRanksByAccuracy(t *testing.T) {
	records := []*models.PredictionRecord{
		reconciledRecord("g1", "baseball", models.ConfidenceHigh, 0.7, true, trendBase),
		reconciledRecord("g2", "baseball", models.ConfidenceHigh, 0.7, true, trendBase),
		reconciledRecord("g3", "football", models.ConfidenceHigh, 0.7, true, trendBase),
		reconciledRecord("g4", "football", models.ConfidenceLow, 0.7, false, trendBase),
	}
	repo := &MockPredictionRecordRepository{}
	repo.On("ListReconciled", mock.Anything, mock.Anything).Return(records, nil)

	tracker := newTestTracker(repo)
	comparisons, err := tracker.CompareModelPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, comparisons, 2)

	assert.Equal(t, "baseball", comparisons[0].Sport)
	assert.InDelta(t, 100.0, comparisons[0].Accuracy, 1e-9)
	assert.Equal(t, "football", comparisons[1].Sport)
	assert.InDelta(t, 50.0, comparisons[1].Accuracy, 1e-9)
	assert.InDelta(t, 100.0, comparisons[1].AccuracyByConfidence[models.ConfidenceHigh], 1e-9)
	assert.InDelta(t, 0.0, comparisons[1].AccuracyByConfidence[models.ConfidenceLow], 1e-9)
}
