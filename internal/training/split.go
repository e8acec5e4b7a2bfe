package training

import (
	"fmt"
	"math/rand"

	"github.com/blazesportsintel/forecast/internal/models"
)

// Split holds a train/test partition of a dataset.
type Split struct {
	TrainFeatures [][]float64
	TrainLabels   []float64
	TestFeatures  [][]float64
	TestLabels    []float64
}

// TrainTestSplit shuffles row indices with the seeded source and carves off
// the last 20% as the held-out test set.
func TrainTestSplit(features [][]float64, labels []float64, seed int64) (*Split, error) {
	n := len(features)
	if n < 5 {
		return nil, fmt.Errorf("%w: %d rows is too few to split", models.ErrDataInsufficient, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	cut := n * 4 / 5
	split := &Split{
		TrainFeatures: make([][]float64, 0, cut),
		TrainLabels:   make([]float64, 0, cut),
		TestFeatures:  make([][]float64, 0, n-cut),
		TestLabels:    make([]float64, 0, n-cut),
	}
	for i, idx := range indices {
		if i < cut {
			split.TrainFeatures = append(split.TrainFeatures, features[idx])
			split.TrainLabels = append(split.TrainLabels, labels[idx])
		} else {
			split.TestFeatures = append(split.TestFeatures, features[idx])
			split.TestLabels = append(split.TestLabels, labels[idx])
		}
	}
	return split, nil
}

// Fold is one contiguous chronological cross-validation fold: the fold's rows
// are held out and everything else trains.
type Fold struct {
	Index int
	Split Split
}

// ChronologicalFolds partitions rows (assumed already in chronological order)
// into k contiguous folds. No shuffling: each fold's test window is a
// contiguous span of time, which keeps evaluation honest for time-ordered
// records.
func ChronologicalFolds(features [][]float64, labels []float64, k int) ([]Fold, error) {
	n := len(features)
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", models.ErrInvalid, k)
	}
	if n < k {
		return nil, fmt.Errorf("%w: %d rows for %d folds", models.ErrDataInsufficient, n, k)
	}

	folds := make([]Fold, 0, k)
	for f := 0; f < k; f++ {
		lo := f * n / k
		hi := (f + 1) * n / k

		fold := Fold{Index: f}
		for i := 0; i < n; i++ {
			if i >= lo && i < hi {
				fold.Split.TestFeatures = append(fold.Split.TestFeatures, features[i])
				fold.Split.TestLabels = append(fold.Split.TestLabels, labels[i])
			} else {
				fold.Split.TrainFeatures = append(fold.Split.TrainFeatures, features[i])
				fold.Split.TrainLabels = append(fold.Split.TrainLabels, labels[i])
			}
		}
		folds = append(folds, fold)
	}
	return folds, nil
}

// CrossValidate trains and evaluates one model per chronological fold and
// returns the per-fold metrics.
func CrossValidate(features [][]float64, labels []float64, k int, seed int64) ([]*models.ModelMetrics, error) {
	folds, err := ChronologicalFolds(features, labels, k)
	if err != nil {
		return nil, err
	}

	results := make([]*models.ModelMetrics, 0, len(folds))
	for _, fold := range folds {
		model, err := Train(fold.Split.TrainFeatures, fold.Split.TrainLabels, seed+int64(fold.Index))
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Index, err)
		}
		results = append(results, Evaluate(model, fold.Split.TestFeatures, fold.Split.TestLabels))
	}
	return results, nil
}
