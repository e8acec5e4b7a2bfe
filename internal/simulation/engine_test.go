package simulation

import (
	"math"
	"testing"

	"github.com/blazesportsintel/forecast/internal/models"
)

func testTeam(wins, remaining, schedule int, baseProb float64) *models.TeamRecord {
	return &models.TeamRecord{
		TeamName:       "Memphis",
		Sport:          "baseball",
		League:         "mlb",
		CurrentWins:    wins,
		GamesRemaining: remaining,
		ScheduleLength: schedule,
		BaseWinProb:    baseProb,
	}
}

func TestSimulateSeasonFinishedSeasonIsPointMass(t *testing.T) {
	engine := NewEngine(1)
	samples, err := engine.SimulateSeason(testTeam(10, 0, 162, 0.6), 100)
	if err != nil {
		t.Fatalf("SimulateSeason failed: %v", err)
	}
	if len(samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(samples))
	}
	for i, wins := range samples {
		if wins != 10 {
			t.Fatalf("sample %d = %d, want exactly 10", i, wins)
		}
	}
}

func TestSimulateSeasonBounds(t *testing.T) {
	engine := NewEngine(2)
	team := testTeam(40, 60, 162, 0.5)
	samples, err := engine.SimulateSeason(team, 5000)
	if err != nil {
		t.Fatalf("SimulateSeason failed: %v", err)
	}
	for _, wins := range samples {
		if wins < 40 || wins > 100 {
			t.Fatalf("sample %d outside [currentWins, currentWins+remaining]", wins)
		}
	}
}

func TestSimulateSeasonMeanTracksBaseProb(t *testing.T) {
	engine := NewEngine(3)
	team := testTeam(0, 100, 162, 0.7)
	samples, err := engine.SimulateSeason(team, 10000)
	if err != nil {
		t.Fatalf("SimulateSeason failed: %v", err)
	}

	sum := 0
	for _, wins := range samples {
		sum += wins
	}
	mean := float64(sum) / float64(len(samples))
	// perturbation is zero-mean but clamping at 0.90 pulls the average down
	// slightly; allow a generous window around 70
	if mean < 62 || mean > 72 {
		t.Errorf("mean wins %f far from expectation near 70", mean)
	}
}

func TestSimulateSeasonDeterministicForSeed(t *testing.T) {
	team := testTeam(20, 40, 162, 0.55)
	s1, _ := NewEngine(42).SimulateSeason(team, 500)
	s2, _ := NewEngine(42).SimulateSeason(team, 500)
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("samples diverge at %d for identical seed", i)
		}
	}
}

func TestSimulateSeasonValidation(t *testing.T) {
	engine := NewEngine(4)
	if _, err := engine.SimulateSeason(testTeam(10, -1, 162, 0.5), 100); err == nil {
		t.Fatal("expected error for negative games remaining")
	}
	if _, err := engine.SimulateSeason(testTeam(10, 5, 162, 1.5), 100); err == nil {
		t.Fatal("expected error for out-of-range base probability")
	}
}

func TestSimulateSeasonDefaultIterations(t *testing.T) {
	engine := NewEngine(5)
	samples, err := engine.SimulateSeason(testTeam(10, 0, 162, 0.5), 0)
	if err != nil {
		t.Fatalf("SimulateSeason failed: %v", err)
	}
	if len(samples) != DefaultIterations {
		t.Errorf("expected %d samples for default iterations, got %d", DefaultIterations, len(samples))
	}
}

func TestSummarizePointMass(t *testing.T) {
	team := testTeam(10, 0, 162, 0.6)
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = 10
	}

	result, err := Summarize(team, samples)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if result.MeanWins != 10 || result.ModeWins != 10 || result.P5 != 10 || result.P95 != 10 {
		t.Errorf("point mass summary wrong: mean=%f mode=%d p5=%d p95=%d",
			result.MeanWins, result.ModeWins, result.P5, result.P95)
	}
	if math.Abs(result.Distribution[10]-100) > 1e-9 {
		t.Errorf("distribution[10] = %f, want 100", result.Distribution[10])
	}
}

func TestSummarizePercentileIndices(t *testing.T) {
	team := testTeam(0, 0, 162, 0.5)
	// samples 0..99 ascending: p5 index floor(100*0.05)=5, p95 index 95
	samples := make([]int, 100)
	for i := range samples {
		samples[i] = i
	}

	result, err := Summarize(team, samples)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if result.P5 != 5 {
		t.Errorf("p5 = %d, want 5", result.P5)
	}
	if result.P95 != 95 {
		t.Errorf("p95 = %d, want 95", result.P95)
	}
}

func TestSummarizeModeTieBreaksToSmallest(t *testing.T) {
	team := testTeam(0, 0, 162, 0.5)
	// 7 and 12 both appear twice
	samples := []int{12, 7, 12, 9, 7}

	result, err := Summarize(team, samples)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if result.ModeWins != 7 {
		t.Errorf("mode = %d, want tie broken to 7", result.ModeWins)
	}
}

func TestSummarizeClampsToScheduleLength(t *testing.T) {
	team := testTeam(0, 0, 16, 0.5)
	samples := []int{18, 18, 18, 18}

	result, err := Summarize(team, samples)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if result.P5 != 16 || result.P95 != 16 {
		t.Errorf("percentiles not clamped to schedule length: p5=%d p95=%d", result.P5, result.P95)
	}
}

func TestSummarizeEmptySamples(t *testing.T) {
	if _, err := Summarize(testTeam(0, 0, 162, 0.5), nil); err == nil {
		t.Fatal("expected error for empty samples")
	}
}

func TestSummarizeDistributionSumsToHundred(t *testing.T) {
	engine := NewEngine(8)
	team := testTeam(30, 50, 162, 0.5)
	samples, _ := engine.SimulateSeason(team, 2000)

	result, err := Summarize(team, samples)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	total := 0.0
	for _, pct := range result.Distribution {
		total += pct
	}
	if math.Abs(total-100) > 1e-6 {
		t.Errorf("distribution percentages sum to %f, want 100", total)
	}
}

func TestHeuristicOddsBandIsLabeled(t *testing.T) {
	engine := NewEngine(9)
	team := testTeam(80, 0, 162, 0.55)
	result := &models.SimulationResult{TeamName: team.TeamName, MeanWins: 88}

	band := engine.HeuristicOddsBand(team, result)
	if !band.Heuristic {
		t.Error("odds band not flagged heuristic")
	}
	if band.Disclaimer == "" {
		t.Error("odds band missing disclaimer")
	}
	if band.PlayoffOdds < 0 || band.PlayoffOdds > 1 {
		t.Errorf("playoff odds %f out of range", band.PlayoffOdds)
	}
	if band.ChampionshipOdds < 0 || band.ChampionshipOdds > 1 {
		t.Errorf("championship odds %f out of range", band.ChampionshipOdds)
	}
}

func TestHeuristicOddsBandMonotoneInMeanWins(t *testing.T) {
	team := testTeam(0, 0, 162, 0.5)
	low := NewEngine(10).HeuristicOddsBand(team, &models.SimulationResult{MeanWins: 70})
	high := NewEngine(10).HeuristicOddsBand(team, &models.SimulationResult{MeanWins: 95})
	if high.PlayoffOdds <= low.PlayoffOdds {
		t.Errorf("playoff odds not increasing with mean wins: %f vs %f", low.PlayoffOdds, high.PlayoffOdds)
	}
}
