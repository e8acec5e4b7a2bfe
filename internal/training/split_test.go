package training

import (
	"testing"
)

func TestTrainTestSplitProportions(t *testing.T) {
	features, labels := syntheticDataset(100)

	split, err := TrainTestSplit(features, labels, 11)
	if err != nil {
		t.Fatalf("TrainTestSplit failed: %v", err)
	}
	if len(split.TrainFeatures) != 80 || len(split.TestFeatures) != 20 {
		t.Errorf("split sizes %d/%d, want 80/20", len(split.TrainFeatures), len(split.TestFeatures))
	}
	if len(split.TrainLabels) != 80 || len(split.TestLabels) != 20 {
		t.Errorf("label sizes %d/%d, want 80/20", len(split.TrainLabels), len(split.TestLabels))
	}
}

func TestTrainTestSplitDeterministicForSeed(t *testing.T) {
	features, labels := syntheticDataset(50)

	s1, _ := TrainTestSplit(features, labels, 3)
	s2, _ := TrainTestSplit(features, labels, 3)

	for i := range s1.TestLabels {
		if s1.TestLabels[i] != s2.TestLabels[i] {
			t.Fatalf("test partition differs at %d for identical seed", i)
		}
	}
}

func TestTrainTestSplitShuffles(t *testing.T) {
	features, labels := syntheticDataset(100)

	split, _ := TrainTestSplit(features, labels, 5)
	// the test set must not simply be the trailing 20 original rows
	sameAsTail := true
	for i := range split.TestLabels {
		if split.TestLabels[i] != labels[80+i] {
			sameAsTail = false
			break
		}
	}
	if sameAsTail {
		t.Error("test partition is the unshuffled tail")
	}
}

func TestTrainTestSplitTooFewRows(t *testing.T) {
	features, labels := syntheticDataset(4)
	if _, err := TrainTestSplit(features, labels, 0); err == nil {
		t.Fatal("expected error for too few rows")
	}
}

func TestChronologicalFoldsAreContiguous(t *testing.T) {
	features := make([][]float64, 10)
	labels := make([]float64, 10)
	for i := range features {
		features[i] = []float64{float64(i)}
		labels[i] = float64(i)
	}

	folds, err := ChronologicalFolds(features, labels, 5)
	if err != nil {
		t.Fatalf("ChronologicalFolds failed: %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("expected 5 folds, got %d", len(folds))
	}

	for _, fold := range folds {
		if len(fold.Split.TestLabels) != 2 {
			t.Errorf("fold %d test size %d, want 2", fold.Index, len(fold.Split.TestLabels))
		}
		// test window is a contiguous chronological span
		for i := 1; i < len(fold.Split.TestLabels); i++ {
			if fold.Split.TestLabels[i] != fold.Split.TestLabels[i-1]+1 {
				t.Errorf("fold %d test window not contiguous: %v", fold.Index, fold.Split.TestLabels)
			}
		}
	}

	// every row is held out in exactly one fold
	seen := make(map[float64]int)
	for _, fold := range folds {
		for _, label := range fold.Split.TestLabels {
			seen[label]++
		}
	}
	for label, count := range seen {
		if count != 1 {
			t.Errorf("row %v held out %d times", label, count)
		}
	}
	if len(seen) != 10 {
		t.Errorf("only %d rows held out across folds", len(seen))
	}
}

func TestChronologicalFoldsValidation(t *testing.T) {
	features, labels := syntheticDataset(10)
	if _, err := ChronologicalFolds(features, labels, 1); err == nil {
		t.Fatal("expected error for k < 2")
	}
	if _, err := ChronologicalFolds(features[:3], labels[:3], 5); err == nil {
		t.Fatal("expected error for more folds than rows")
	}
}

func TestCrossValidateReturnsPerFoldMetrics(t *testing.T) {
	features, labels := syntheticDataset(100)

	results, err := CrossValidate(features, labels, 4, 17)
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 fold results, got %d", len(results))
	}
	for i, metrics := range results {
		if metrics.SamplesTested != 25 {
			t.Errorf("fold %d tested %d samples, want 25", i, metrics.SamplesTested)
		}
		if metrics.Within1RoundAccuracy < metrics.Accuracy {
			t.Errorf("fold %d within-1 accuracy below exact accuracy", i)
		}
	}
}
