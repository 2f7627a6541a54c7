package usecase

import (
	"errors"
	"testing"

	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/squad"
)

func member(id int, pos player.Position, nextXP, capScore float64) squad.Member {
	return squad.Member{
		Player:   player.Player{ID: id, Name: "P", Position: pos},
		NextXP:   nextXP,
		CapScore: capScore,
	}
}

func canonicalSquad() []squad.Member {
	return []squad.Member{
		member(1, player.PositionGoalkeeper, 4.0, 4.0),
		member(2, player.PositionGoalkeeper, 2.0, 2.0),
		member(11, player.PositionDefender, 5.0, 5.0),
		member(12, player.PositionDefender, 4.5, 4.5),
		member(13, player.PositionDefender, 4.0, 4.0),
		member(14, player.PositionDefender, 2.0, 2.0),
		member(15, player.PositionDefender, 1.5, 1.5),
		member(21, player.PositionMidfielder, 7.0, 8.5),
		member(22, player.PositionMidfielder, 6.0, 6.6),
		member(23, player.PositionMidfielder, 5.5, 6.0),
		member(24, player.PositionMidfielder, 3.0, 3.3),
		member(25, player.PositionMidfielder, 2.5, 2.7),
		member(31, player.PositionForward, 6.5, 7.1),
		member(32, player.PositionForward, 4.0, 4.4),
		member(33, player.PositionForward, 1.0, 1.1),
	}
}

func countByPosition(members []squad.Member) map[player.Position]int {
	counts := make(map[player.Position]int)
	for _, m := range members {
		counts[m.Player.Position]++
	}
	return counts
}

func TestLineupService_Optimize_CanonicalSquad(t *testing.T) {
	svc := NewLineupService()

	sel, err := svc.Optimize(t.Context(), canonicalSquad())
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}

	if len(sel.Starters) != 11 {
		t.Fatalf("got %d starters, want 11", len(sel.Starters))
	}
	if len(sel.Bench) != 4 {
		t.Fatalf("got %d bench players, want 4", len(sel.Bench))
	}

	counts := countByPosition(sel.Starters)
	if counts[player.PositionGoalkeeper] != 1 {
		t.Fatalf("got %d starting keepers, want 1", counts[player.PositionGoalkeeper])
	}
	if counts[player.PositionDefender] < 3 || counts[player.PositionDefender] > 5 {
		t.Fatalf("defender count %d outside 3-5", counts[player.PositionDefender])
	}
	if counts[player.PositionForward] < 1 || counts[player.PositionForward] > 3 {
		t.Fatalf("forward count %d outside 1-3", counts[player.PositionForward])
	}

	if sel.Captain == nil || sel.Captain.Player.ID != 21 {
		t.Fatalf("captain should be the top cap score starter, got %+v", sel.Captain)
	}
	if sel.ViceCaptain == nil || sel.ViceCaptain.Player.ID != 31 {
		t.Fatalf("vice-captain should be second by cap score, got %+v", sel.ViceCaptain)
	}
}

func TestLineupService_Optimize_Deterministic(t *testing.T) {
	svc := NewLineupService()

	first, err := svc.Optimize(t.Context(), canonicalSquad())
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	second, err := svc.Optimize(t.Context(), canonicalSquad())
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}

	if len(first.Starters) != len(second.Starters) {
		t.Fatalf("starter counts differ: %d vs %d", len(first.Starters), len(second.Starters))
	}
	for i := range first.Starters {
		if first.Starters[i].Player.ID != second.Starters[i].Player.ID {
			t.Fatalf("starter order differs at %d: %d vs %d",
				i, first.Starters[i].Player.ID, second.Starters[i].Player.ID)
		}
	}
}

func TestLineupService_Optimize_TiesBreakByPlayerID(t *testing.T) {
	svc := NewLineupService()

	members := canonicalSquad()
	// Equal scores across both keepers: the lower id starts.
	members[0].NextXP, members[1].NextXP = 3.0, 3.0

	sel, err := svc.Optimize(t.Context(), members)
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	for _, m := range sel.Starters {
		if m.Player.Position == player.PositionGoalkeeper && m.Player.ID != 1 {
			t.Fatalf("tie should favor the lower player id, got keeper %d", m.Player.ID)
		}
	}
}

func TestLineupService_Optimize_DefenderCeiling(t *testing.T) {
	svc := NewLineupService()

	members := canonicalSquad()
	for i := range members {
		if members[i].Player.Position == player.PositionDefender {
			members[i].NextXP = 9.0
		}
	}

	sel, err := svc.Optimize(t.Context(), members)
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	counts := countByPosition(sel.Starters)
	if counts[player.PositionDefender] != 5 {
		t.Fatalf("got %d starting defenders, want the ceiling of 5", counts[player.PositionDefender])
	}
	if counts[player.PositionForward] < 1 {
		t.Fatal("a forward must always start")
	}
}

func TestLineupService_Optimize_MalformedSquadStillSelects(t *testing.T) {
	svc := NewLineupService()

	members := canonicalSquad()[:14]
	sel, err := svc.Optimize(t.Context(), members)

	if !errors.Is(err, ErrInvalidSquad) {
		t.Fatalf("got %v, want ErrInvalidSquad", err)
	}
	if len(sel.Starters) == 0 {
		t.Fatal("a malformed squad should still yield a best-effort selection")
	}
	if len(sel.Starters) > 11 {
		t.Fatalf("got %d starters, want at most 11", len(sel.Starters))
	}
	if sel.Captain == nil {
		t.Fatal("best-effort selection should still carry a captain")
	}
}
