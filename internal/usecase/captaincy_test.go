package usecase

import (
	"testing"

	"github.com/fplkit/planner/internal/domain/player"
)

func minutesHistory(minutes ...int) player.History {
	hist := make(player.History, 0, len(minutes))
	for i, m := range minutes {
		hist = append(hist, player.GameRecord{Round: i + 1, Minutes: m})
	}
	return hist
}

func TestCaptaincyScore_ExplosivenessAndOwnership(t *testing.T) {
	p := player.Player{ID: 1, Position: player.PositionMidfielder, SelectedByPercent: 35}

	got := CaptaincyScore(p, 6.0, minutesHistory(90, 90, 90))
	want := 6.0 * 1.1 * 1.05
	if !closeTo(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCaptaincyScore_NoBiases(t *testing.T) {
	p := player.Player{ID: 2, Position: player.PositionGoalkeeper, SelectedByPercent: 5}

	got := CaptaincyScore(p, 4.0, minutesHistory(90, 90, 90))
	if !closeTo(got, 4.0) {
		t.Fatalf("got %v, want 4.0", got)
	}
}

func TestCaptaincyScore_RotationPenalty(t *testing.T) {
	p := player.Player{ID: 3, Position: player.PositionForward, SelectedByPercent: 10}

	got := CaptaincyScore(p, 5.0, minutesHistory(45, 60, 30))
	want := 5.0 * 1.1 * 0.5
	if !closeTo(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCaptaincyScore_EmptyHistoryCountsAsRotationRisk(t *testing.T) {
	p := player.Player{ID: 4, Position: player.PositionDefender, SelectedByPercent: 10}

	got := CaptaincyScore(p, 4.0, nil)
	if !closeTo(got, 2.0) {
		t.Fatalf("got %v, want 2.0", got)
	}
}

func TestCaptaincyScore_OnlyRecentThreeMinutesCount(t *testing.T) {
	p := player.Player{ID: 5, Position: player.PositionDefender, SelectedByPercent: 10}

	// Older benchings are outside the three-game window.
	got := CaptaincyScore(p, 4.0, minutesHistory(0, 0, 90, 90, 90))
	if !closeTo(got, 4.0) {
		t.Fatalf("got %v, want 4.0", got)
	}
}
