// Package features converts historical records into numeric feature vectors,
// labels, and a standardization scaler for linear model training.
package features

import (
	"fmt"
	"math"

	"github.com/blazesportsintel/forecast/internal/models"
)

// Position ordinal tables. Ordinals encode rough positional draft value;
// unknown positions map to 0.
var positionOrdinals = map[string]map[string]float64{
	"baseball": {
		"C":  7,
		"SS": 6,
		"CF": 5,
		"3B": 4,
		"2B": 3,
		"OF": 2,
		"1B": 1,
		"P":  8,
	},
	"football": {
		"QB":   8,
		"EDGE": 7,
		"OT":   6,
		"CB":   5,
		"WR":   4,
		"DT":   3,
		"LB":   2,
		"RB":   1,
	},
	"basketball": {
		"PG": 5,
		"SG": 4,
		"SF": 3,
		"PF": 2,
		"C":  1,
	},
}

// Competition level ordinals, shared across sports.
var competitionOrdinals = map[string]float64{
	"high_school":   1,
	"juco":          2,
	"ncaa_d3":       3,
	"ncaa_d2":       4,
	"ncaa_d1":       5,
	"international": 6,
	"professional":  7,
}

// Stat columns per sport, in fixed order so feature vectors line up with
// trained weights. A row missing a stat contributes 0 for that column.
var statColumns = map[string][]string{
	"baseball":   {"batting_avg", "on_base_pct", "slugging_pct", "exit_velocity", "sixty_yard_dash", "era", "strikeouts_per_nine"},
	"football":   {"forty_yard_dash", "vertical_jump", "bench_press", "passing_yards", "rushing_yards", "receiving_yards", "tackles"},
	"basketball": {"points_per_game", "rebounds_per_game", "assists_per_game", "field_goal_pct", "three_point_pct", "vertical_jump"},
}

// Scaler holds per-column population mean and standard deviation.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Apply standardizes a raw feature vector in place using the fitted scaler.
func (s *Scaler) Apply(vector []float64) {
	for i := range vector {
		vector[i] = (vector[i] - s.Mean[i]) / s.Std[i]
	}
}

// Dataset is the output of feature preparation: standardized feature rows,
// aligned labels, and the scaler needed to transform inference-time inputs.
type Dataset struct {
	Features [][]float64
	Labels   []float64
	Scaler   Scaler
	Columns  []string
}

// Prepare derives feature vectors and labels from historical rows for one
// sport. Columns are: age at event, position ordinal, competition-level
// ordinal, then the sport's stat columns. Every column is standardized to
// zero mean and unit variance over the full set; a zero std is treated as 1.
func Prepare(rows []*models.HistoricalRow, sport string) (*Dataset, error) {
	stats, ok := statColumns[sport]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sport %q", models.ErrInvalid, sport)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows for sport %q", models.ErrDataInsufficient, sport)
	}

	positions := positionOrdinals[sport]
	columns := append([]string{"age_at_event", "position", "competition_level"}, stats...)

	features := make([][]float64, len(rows))
	labels := make([]float64, len(rows))
	for i, row := range rows {
		vector := make([]float64, len(columns))
		vector[0] = ageAtEvent(row)
		vector[1] = positions[row.Position]
		vector[2] = competitionOrdinals[row.CompetitionLevel]
		for j, stat := range stats {
			vector[3+j] = row.Stats[stat]
		}
		features[i] = vector
		labels[i] = float64(row.DraftRound)
	}

	scaler := fitScaler(features)
	for _, vector := range features {
		scaler.Apply(vector)
	}

	return &Dataset{
		Features: features,
		Labels:   labels,
		Scaler:   scaler,
		Columns:  columns,
	}, nil
}

func ageAtEvent(row *models.HistoricalRow) float64 {
	return row.EventDate.Sub(row.BirthDate).Hours() / (24 * 365.25)
}

// fitScaler computes population mean/std per column. Population, not sample:
// the scaler describes exactly the training set it was fitted on.
func fitScaler(features [][]float64) Scaler {
	n := float64(len(features))
	cols := len(features[0])
	mean := make([]float64, cols)
	std := make([]float64, cols)

	for _, vector := range features {
		for j, v := range vector {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	for _, vector := range features {
		for j, v := range vector {
			diff := v - mean[j]
			std[j] += diff * diff
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return Scaler{Mean: mean, Std: std}
}
