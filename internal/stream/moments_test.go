package stream

import (
	"testing"
	"time"

	"github.com/blazesportsintel/forecast/internal/models"
)

func snapshotAt(prob float64, offset int) models.PredictionSnapshot {
	return models.PredictionSnapshot{
		GameID:         "g1",
		Timestamp:      time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC).Add(time.Duration(offset) * 30 * time.Second),
		WinProbability: prob,
	}
}

func TestIdentifyKeyMomentsThresholds(t *testing.T) {
	history := []models.PredictionSnapshot{
		snapshotAt(0.50, 0),
		snapshotAt(0.53, 1), // +3 pts, below threshold
		snapshotAt(0.59, 2), // +6 pts, notable
		snapshotAt(0.51, 3), // -8 pts, significant
		snapshotAt(0.63, 4), // +12 pts, major
	}

	moments := IdentifyKeyMoments(history)
	if len(moments) != 3 {
		t.Fatalf("expected 3 key moments, got %d", len(moments))
	}

	if moments[0].Severity != models.MomentNotable {
		t.Errorf("first moment severity %q, want notable", moments[0].Severity)
	}
	if moments[1].Severity != models.MomentSignificant {
		t.Errorf("second moment severity %q, want significant", moments[1].Severity)
	}
	if moments[2].Severity != models.MomentMajor {
		t.Errorf("third moment severity %q, want major", moments[2].Severity)
	}
}

func TestGradeSwingBoundaries(t *testing.T) {
	tests := []struct {
		swingPts float64
		want     string
	}{
		{5.0, models.MomentNotable},
		{6.9, models.MomentNotable},
		{7.0, models.MomentSignificant},
		{9.9, models.MomentSignificant},
		{10.0, models.MomentMajor},
		{25.0, models.MomentMajor},
	}
	for _, tt := range tests {
		if got := gradeSwing(tt.swingPts); got != tt.want {
			t.Errorf("gradeSwing(%f) = %q, want %q", tt.swingPts, got, tt.want)
		}
	}
}

func TestIdentifyKeyMomentsQuietGame(t *testing.T) {
	history := []models.PredictionSnapshot{
		snapshotAt(0.50, 0),
		snapshotAt(0.52, 1),
		snapshotAt(0.54, 2),
		snapshotAt(0.53, 3),
	}
	if moments := IdentifyKeyMoments(history); len(moments) != 0 {
		t.Errorf("expected no key moments, got %d", len(moments))
	}
}

func TestIdentifyKeyMomentsShortHistory(t *testing.T) {
	if moments := IdentifyKeyMoments(nil); moments != nil {
		t.Error("nil history should produce no moments")
	}
	if moments := IdentifyKeyMoments([]models.PredictionSnapshot{snapshotAt(0.5, 0)}); moments != nil {
		t.Error("single snapshot should produce no moments")
	}
}

func TestIdentifyKeyMomentsRecordsSwingDirection(t *testing.T) {
	history := []models.PredictionSnapshot{
		snapshotAt(0.70, 0),
		snapshotAt(0.55, 1),
	}
	moments := IdentifyKeyMoments(history)
	if len(moments) != 1 {
		t.Fatalf("expected 1 key moment, got %d", len(moments))
	}
	m := moments[0]
	if m.FromProb != 0.70 || m.ToProb != 0.55 {
		t.Errorf("swing endpoints %f -> %f, want 0.70 -> 0.55", m.FromProb, m.ToProb)
	}
	if m.SwingPts < 14.9 || m.SwingPts > 15.1 {
		t.Errorf("swing magnitude %f, want ~15", m.SwingPts)
	}
}
