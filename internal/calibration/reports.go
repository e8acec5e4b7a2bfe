package calibration

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/blazesportsintel/forecast/internal/models"
	"github.com/blazesportsintel/forecast/internal/repository"
)

// Calibration quality labels, assigned from mean bucket error.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// AccuracyBucket aggregates reconciled records in one grouping.
type AccuracyBucket struct {
	TotalPredictions   int     `json:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions"`
	Accuracy           float64 `json:"accuracy"`
	BrierScore         float64 `json:"brier_score"`
}

// AccuracyMetrics is the overall accuracy report with per-sport and
// per-confidence-label breakdowns.
type AccuracyMetrics struct {
	Overall      AccuracyBucket            `json:"overall"`
	BySport      map[string]AccuracyBucket `json:"by_sport"`
	ByConfidence map[string]AccuracyBucket `json:"by_confidence"`
}

// CalibrationBucket covers one probability decile.
type CalibrationBucket struct {
	RangeLow         float64 `json:"range_low"`
	RangeHigh        float64 `json:"range_high"`
	Samples          int     `json:"samples"`
	PredictedWinRate float64 `json:"predicted_win_rate"`
	ActualWinRate    float64 `json:"actual_win_rate"`
	CalibrationError float64 `json:"calibration_error"`
}

// CalibrationReport is the decile analysis plus the overall quality label.
type CalibrationReport struct {
	Sport     string              `json:"sport,omitempty"`
	Samples   int                 `json:"samples"`
	Buckets   []CalibrationBucket `json:"buckets"`
	MeanError float64             `json:"mean_error"`
	Quality   string              `json:"quality"`
}

// TrendPoint is one day of the accuracy trend. Moving averages stay nil until
// seven days of history exist.
type TrendPoint struct {
	Date              string   `json:"date"`
	Predictions       int      `json:"predictions"`
	Accuracy          float64  `json:"accuracy"`
	BrierScore        float64  `json:"brier_score"`
	MovingAvgAccuracy *float64 `json:"moving_avg_accuracy"`
	MovingAvgBrier    *float64 `json:"moving_avg_brier"`
}

// ModelComparison is one sport's aggregate standing in the cross-sport ranking.
type ModelComparison struct {
	Sport                string             `json:"sport"`
	TotalPredictions     int                `json:"total_predictions"`
	Accuracy             float64            `json:"accuracy"`
	BrierScore           float64            `json:"brier_score"`
	AccuracyByConfidence map[string]float64 `json:"accuracy_by_confidence"`
}

// GetAccuracyMetrics aggregates reconciled records matching the filters into
// overall, per-sport and per-confidence-label accuracy.
func (t *Tracker) GetAccuracyMetrics(ctx context.Context, filters repository.PredictionFilters) (*AccuracyMetrics, error) {
	records, err := t.records.ListReconciled(ctx, filters)
	if err != nil {
		return nil, err
	}

	result := &AccuracyMetrics{
		BySport:      make(map[string]AccuracyBucket),
		ByConfidence: make(map[string]AccuracyBucket),
	}
	overall := newAccumulator()
	bySport := make(map[string]*accumulator)
	byConfidence := make(map[string]*accumulator)

	for _, record := range records {
		overall.add(record)
		groupAccumulator(bySport, record.Sport).add(record)
		if record.ConfidenceLabel != "" {
			groupAccumulator(byConfidence, record.ConfidenceLabel).add(record)
		}
	}

	result.Overall = overall.bucket()
	for sport, acc := range bySport {
		result.BySport[sport] = acc.bucket()
	}
	for label, acc := range byConfidence {
		result.ByConfidence[label] = acc.bucket()
	}
	return result, nil
}

// AnalyzeCalibration buckets reconciled records into ten fixed-width
// probability deciles; the top bucket is closed, [0.9, 1.0]. Quality is
// labeled from the mean error over non-empty buckets.
func (t *Tracker) AnalyzeCalibration(ctx context.Context, sport string) (*CalibrationReport, error) {
	records, err := t.records.ListReconciled(ctx, repository.PredictionFilters{Sport: sport})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no reconciled predictions to analyze", models.ErrDataInsufficient)
	}

	type decile struct {
		samples       int
		predictedSum  float64
		actualHomeWon int
	}
	deciles := [10]decile{}

	for _, record := range records {
		idx := int(record.PredictedHomeWinProb * 10)
		if idx > 9 {
			idx = 9
		}
		deciles[idx].samples++
		deciles[idx].predictedSum += record.PredictedHomeWinProb
		if record.ActualHomeWin != nil && *record.ActualHomeWin {
			deciles[idx].actualHomeWon++
		}
	}

	report := &CalibrationReport{Sport: sport, Samples: len(records)}
	errorSum := 0.0
	nonEmpty := 0
	for i, d := range deciles {
		if d.samples == 0 {
			continue
		}
		bucket := CalibrationBucket{
			RangeLow:         float64(i) / 10,
			RangeHigh:        float64(i+1) / 10,
			Samples:          d.samples,
			PredictedWinRate: d.predictedSum / float64(d.samples),
			ActualWinRate:    float64(d.actualHomeWon) / float64(d.samples),
		}
		bucket.CalibrationError = math.Abs(bucket.PredictedWinRate - bucket.ActualWinRate)
		report.Buckets = append(report.Buckets, bucket)
		errorSum += bucket.CalibrationError
		nonEmpty++
	}

	report.MeanError = errorSum / float64(nonEmpty)
	report.Quality = qualityLabel(report.MeanError)
	return report, nil
}

// GetAccuracyTrend groups reconciled records by day over the trailing window
// and attaches a trailing 7-day moving average once seven days of history
// exist. Earlier points carry nil averages.
func (t *Tracker) GetAccuracyTrend(ctx context.Context, sport string, days int) ([]TrendPoint, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: trend window must be positive", models.ErrInvalid)
	}
	start := time.Now().UTC().AddDate(0, 0, -days)
	records, err := t.records.ListReconciled(ctx, repository.PredictionFilters{Sport: sport, Start: &start})
	if err != nil {
		return nil, err
	}

	type daily struct {
		predictions int
		correct     int
		brierSum    float64
	}
	byDay := make(map[string]*daily)
	for _, record := range records {
		day := record.Timestamp.UTC().Format("2006-01-02")
		agg := byDay[day]
		if agg == nil {
			agg = &daily{}
			byDay[day] = agg
		}
		agg.predictions++
		if record.Correct != nil && *record.Correct {
			agg.correct++
		}
		if record.BrierScore != nil {
			agg.brierSum += *record.BrierScore
		}
	}

	dates := make([]string, 0, len(byDay))
	for day := range byDay {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	points := make([]TrendPoint, 0, len(dates))
	for i, day := range dates {
		agg := byDay[day]
		point := TrendPoint{
			Date:        day,
			Predictions: agg.predictions,
			Accuracy:    float64(agg.correct) / float64(agg.predictions),
			BrierScore:  agg.brierSum / float64(agg.predictions),
		}
		if i >= 6 {
			accSum, brierSum := 0.0, 0.0
			for _, prior := range points[i-6 : i] {
				accSum += prior.Accuracy
				brierSum += prior.BrierScore
			}
			accAvg := (accSum + point.Accuracy) / 7
			brierAvg := (brierSum + point.BrierScore) / 7
			point.MovingAvgAccuracy = &accAvg
			point.MovingAvgBrier = &brierAvg
		}
		points = append(points, point)
	}
	return points, nil
}

// CompareModelPerformance ranks sports by overall accuracy, with accuracy
// split out per confidence label.
func (t *Tracker) CompareModelPerformance(ctx context.Context) ([]ModelComparison, error) {
	records, err := t.records.ListReconciled(ctx, repository.PredictionFilters{})
	if err != nil {
		return nil, err
	}

	bySport := make(map[string]*accumulator)
	byConfidence := make(map[string]map[string]*accumulator)
	for _, record := range records {
		groupAccumulator(bySport, record.Sport).add(record)
		if record.ConfidenceLabel != "" {
			if byConfidence[record.Sport] == nil {
				byConfidence[record.Sport] = make(map[string]*accumulator)
			}
			groupAccumulator(byConfidence[record.Sport], record.ConfidenceLabel).add(record)
		}
	}

	comparisons := make([]ModelComparison, 0, len(bySport))
	for sport, acc := range bySport {
		bucket := acc.bucket()
		comparison := ModelComparison{
			Sport:                sport,
			TotalPredictions:     bucket.TotalPredictions,
			Accuracy:             bucket.Accuracy,
			BrierScore:           bucket.BrierScore,
			AccuracyByConfidence: make(map[string]float64),
		}
		for label, labelAcc := range byConfidence[sport] {
			comparison.AccuracyByConfidence[label] = labelAcc.bucket().Accuracy
		}
		comparisons = append(comparisons, comparison)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Accuracy != comparisons[j].Accuracy {
			return comparisons[i].Accuracy > comparisons[j].Accuracy
		}
		return comparisons[i].Sport < comparisons[j].Sport
	})
	return comparisons, nil
}

func qualityLabel(meanError float64) string {
	switch {
	case meanError < 0.05:
		return QualityExcellent
	case meanError < 0.10:
		return QualityGood
	case meanError < 0.15:
		return QualityFair
	default:
		return QualityPoor
	}
}

type accumulator struct {
	total    int
	correct  int
	brierSum float64
}

func newAccumulator() *accumulator {
	return &accumulator{}
}

func (a *accumulator) add(record *models.PredictionRecord) {
	a.total++
	if record.Correct != nil && *record.Correct {
		a.correct++
	}
	if record.BrierScore != nil {
		a.brierSum += *record.BrierScore
	}
}

func (a *accumulator) bucket() AccuracyBucket {
	if a.total == 0 {
		return AccuracyBucket{}
	}
	return AccuracyBucket{
		TotalPredictions:   a.total,
		CorrectPredictions: a.correct,
		Accuracy:           float64(a.correct) / float64(a.total) * 100,
		BrierScore:         a.brierSum / float64(a.total),
	}
}

func groupAccumulator(groups map[string]*accumulator, key string) *accumulator {
	acc := groups[key]
	if acc == nil {
		acc = newAccumulator()
		groups[key] = acc
	}
	return acc
}
