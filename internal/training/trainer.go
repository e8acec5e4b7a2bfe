// Package training implements batch gradient-descent linear regression over
// extracted features, plus the evaluation and cross-validation machinery.
package training

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/blazesportsintel/forecast/internal/models"
)

const (
	// LearningRate is the fixed step size for gradient descent.
	LearningRate = 0.01
	// Epochs is the fixed number of full passes over the training set.
	Epochs = 100
	// MinTrainingSamples is the floor below which training aborts before any
	// partial model is produced.
	MinTrainingSamples = 100
)

// Model is the trained parameter set: a linear predictor over standardized
// feature vectors.
type Model struct {
	Weights []float64
	Bias    float64
	Seed    int64
}

// Train fits a linear model by batch gradient descent with fixed learning
// rate and epoch count. Gradients follow the sign of the residual (mean
// absolute error direction) rather than squared error. Weight initialization
// draws from the seeded source so runs are reproducible.
func Train(features [][]float64, labels []float64, seed int64) (*Model, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return nil, fmt.Errorf("%w: %d feature rows, %d labels", models.ErrInvalid, len(features), len(labels))
	}

	rng := rand.New(rand.NewSource(seed))
	dims := len(features[0])
	weights := make([]float64, dims)
	for j := range weights {
		weights[j] = rng.Float64()*0.02 - 0.01
	}
	bias := 0.0

	n := float64(len(features))
	gradients := make([]float64, dims)

	for epoch := 0; epoch < Epochs; epoch++ {
		for j := range gradients {
			gradients[j] = 0
		}
		biasGradient := 0.0

		for i, vector := range features {
			residual := dot(vector, weights) + bias - labels[i]
			direction := sign(residual)
			for j, v := range vector {
				gradients[j] += direction * v
			}
			biasGradient += direction
		}

		for j := range weights {
			weights[j] -= LearningRate * gradients[j] / n
		}
		bias -= LearningRate * biasGradient / n
	}

	return &Model{Weights: weights, Bias: bias, Seed: seed}, nil
}

// Predict maps a standardized feature vector to a non-negative integer round.
func Predict(vector []float64, weights []float64, bias float64) int {
	raw := dot(vector, weights) + bias
	round := int(math.Round(raw))
	if round < 0 {
		return 0
	}
	return round
}

// Predict applies the model to one feature vector.
func (m *Model) Predict(vector []float64) int {
	return Predict(vector, m.Weights, m.Bias)
}

// Evaluate scores the model on a held-out set. Exact-match accuracy is a
// subset of within-one-round accuracy, so the latter is always >= the former.
func Evaluate(m *Model, features [][]float64, labels []float64) *models.ModelMetrics {
	exact := 0
	withinOne := 0
	absErrorSum := 0.0

	for i, vector := range features {
		predicted := m.Predict(vector)
		actual := int(labels[i])
		diff := predicted - actual
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			exact++
		}
		if diff <= 1 {
			withinOne++
		}
		absErrorSum += float64(diff)
	}

	n := float64(len(features))
	if n == 0 {
		return &models.ModelMetrics{}
	}
	return &models.ModelMetrics{
		Accuracy:             float64(exact) / n,
		Within1RoundAccuracy: float64(withinOne) / n,
		MeanAbsoluteError:    absErrorSum / n,
		SamplesTested:        len(features),
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sign(v float64) float64 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
