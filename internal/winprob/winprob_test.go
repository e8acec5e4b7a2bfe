package winprob

import (
	"testing"

	"github.com/blazesportsintel/forecast/internal/models"
)

func liveState(sport string, home, away, period, clock int, possession bool) *models.GameState {
	return &models.GameState{
		GameID:         "g1",
		Sport:          sport,
		HomeScore:      home,
		AwayScore:      away,
		Period:         period,
		ClockSeconds:   clock,
		HomePossession: possession,
	}
}

func TestEstimateFinalGamesResolve(t *testing.T) {
	won := liveState("basketball", 100, 90, 4, 0, false)
	won.Final = true
	if got := Estimate(won); got != 1.0 {
		t.Errorf("final home win = %f, want 1.0", got)
	}

	lost := liveState("basketball", 90, 100, 4, 0, false)
	lost.Final = true
	if got := Estimate(lost); got != 0.0 {
		t.Errorf("final home loss = %f, want 0.0", got)
	}

	tied := liveState("basketball", 90, 90, 4, 0, false)
	tied.Final = true
	if got := Estimate(tied); got != 0.5 {
		t.Errorf("final tie = %f, want 0.5", got)
	}
}

func TestEstimateStaysInBand(t *testing.T) {
	// a huge late lead still stays inside the clamp
	blowout := liveState("basketball", 140, 60, 4, 30, true)
	if got := Estimate(blowout); got > MaxProb {
		t.Errorf("blowout probability %f above clamp", got)
	}
	collapse := liveState("basketball", 60, 140, 4, 30, false)
	if got := Estimate(collapse); got < MinProb {
		t.Errorf("collapse probability %f below clamp", got)
	}
}

func TestEstimateLeadingTeamFavored(t *testing.T) {
	ahead := Estimate(liveState("football", 21, 10, 3, 500, false))
	behind := Estimate(liveState("football", 10, 21, 3, 500, false))
	if ahead <= 0.5 {
		t.Errorf("leading home side at %f, want > 0.5", ahead)
	}
	if behind >= 0.5 {
		t.Errorf("trailing home side at %f, want < 0.5", behind)
	}
}

func TestEstimateLateLeadWorthMore(t *testing.T) {
	early := Estimate(liveState("basketball", 60, 55, 2, 600, false))
	late := Estimate(liveState("basketball", 100, 95, 4, 60, false))
	if late <= early {
		t.Errorf("late 5-point lead %f not above early 5-point lead %f", late, early)
	}
}

func TestEstimatePossessionMatters(t *testing.T) {
	with := Estimate(liveState("football", 14, 14, 4, 300, true))
	without := Estimate(liveState("football", 14, 14, 4, 300, false))
	if with <= without {
		t.Errorf("possession probability %f not above %f", with, without)
	}
}

func TestEstimateUnknownSportFallsBack(t *testing.T) {
	got := Estimate(liveState("rugby", 20, 10, 2, 300, false))
	if got <= 0.5 || got > MaxProb {
		t.Errorf("fallback estimate %f out of expected range", got)
	}
}
