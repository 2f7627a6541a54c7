package memory

import (
	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/team"
	"github.com/fplkit/planner/internal/usecase"
)

// Seeded returns a provider pre-loaded with a four-team league, a full
// 15-player squad and three finished gameweeks of history.
func Seeded() *SnapshotProvider {
	teams := []team.Team{
		{ID: 1, Name: "Arsenal", Short: "ARS", AttackHome: 1320, AttackAway: 1290, DefenceHome: 1310, DefenceAway: 1270},
		{ID: 2, Name: "Brighton", Short: "BHA", AttackHome: 1180, AttackAway: 1140, DefenceHome: 1170, DefenceAway: 1130},
		{ID: 3, Name: "Fulham", Short: "FUL", AttackHome: 1090, AttackAway: 1060, DefenceHome: 1100, DefenceAway: 1070},
		{ID: 4, Name: "Luton", Short: "LUT", AttackHome: 1010, AttackAway: 980, DefenceHome: 1020, DefenceAway: 990},
	}

	players := seedPlayers()

	events := []fixture.Event{
		{ID: 1, Finished: true},
		{ID: 2, Finished: true},
		{ID: 3, Finished: true, IsCurrent: true},
		{ID: 4, IsNext: true},
		{ID: 5},
	}

	provider := NewSnapshotProvider(usecase.Snapshot{
		Teams:   team.NewIndex(teams),
		Players: players,
		Events:  events,
	})
	provider.SetFixtures(seedFixtures())

	for _, p := range players {
		provider.SetPlayerDetail(p.ID, usecase.PlayerDetail{
			Upcoming: upcomingFor(p.TeamID),
			History:  historyFor(p),
		})
	}

	ids := make([]int, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	for gw := 1; gw <= 4; gw++ {
		provider.SetPicks(gw, usecase.Picks{PlayerIDs: ids, CaptainID: 121})
	}
	return provider
}

func intPtr(v int) *int { return &v }

func seedPlayers() []player.Player {
	return []player.Player{
		// Goalkeepers.
		{ID: 101, Name: "Raya", TeamID: 1, Position: player.PositionGoalkeeper, Price: 5.5, SelectedByPercent: 18.2, Form: 4.0, PointsPerGame: 4.2, SeasonMinutes: 270},
		{ID: 102, Name: "Steele", TeamID: 2, Position: player.PositionGoalkeeper, Price: 4.4, SelectedByPercent: 2.1, Form: 2.0, PointsPerGame: 2.5, SeasonMinutes: 270},
		// Defenders.
		{ID: 111, Name: "Saliba", TeamID: 1, Position: player.PositionDefender, Price: 6.0, SelectedByPercent: 32.5, Form: 4.5, PointsPerGame: 4.6, SeasonMinutes: 270},
		{ID: 112, Name: "White", TeamID: 1, Position: player.PositionDefender, Price: 5.6, SelectedByPercent: 14.0, Form: 3.8, PointsPerGame: 3.9, SeasonMinutes: 270},
		{ID: 113, Name: "Dunk", TeamID: 2, Position: player.PositionDefender, Price: 4.9, SelectedByPercent: 9.7, Form: 3.2, PointsPerGame: 3.4, SeasonMinutes: 270},
		{ID: 114, Name: "Robinson", TeamID: 3, Position: player.PositionDefender, Price: 4.6, SelectedByPercent: 5.3, Form: 2.8, PointsPerGame: 2.9, SeasonMinutes: 261},
		{ID: 115, Name: "Bell", TeamID: 4, Position: player.PositionDefender, Price: 4.1, SelectedByPercent: 1.2, Form: 1.9, PointsPerGame: 2.1, SeasonMinutes: 243},
		// Midfielders.
		{ID: 121, Name: "Saka", TeamID: 1, Position: player.PositionMidfielder, Price: 9.1, SelectedByPercent: 45.3, Form: 6.8, PointsPerGame: 6.4, SeasonMinutes: 268, PenaltiesOrder: intPtr(1)},
		{ID: 122, Name: "Odegaard", TeamID: 1, Position: player.PositionMidfielder, Price: 8.4, SelectedByPercent: 22.6, Form: 5.5, PointsPerGame: 5.3, SeasonMinutes: 270, DirectFreekicksOrder: intPtr(1)},
		{ID: 123, Name: "Mitoma", TeamID: 2, Position: player.PositionMidfielder, Price: 6.6, SelectedByPercent: 19.8, Form: 4.7, PointsPerGame: 4.5, SeasonMinutes: 255},
		{ID: 124, Name: "Pereira", TeamID: 3, Position: player.PositionMidfielder, Price: 5.8, SelectedByPercent: 7.4, Form: 3.6, PointsPerGame: 3.5, SeasonMinutes: 262, CornersOrder: intPtr(1)},
		{ID: 125, Name: "Barkley", TeamID: 4, Position: player.PositionMidfielder, Price: 4.9, SelectedByPercent: 3.8, Form: 2.7, PointsPerGame: 2.8, SeasonMinutes: 240},
		// Forwards.
		{ID: 131, Name: "Havertz", TeamID: 1, Position: player.PositionForward, Price: 7.8, SelectedByPercent: 26.1, Form: 5.9, PointsPerGame: 5.1, SeasonMinutes: 264},
		{ID: 132, Name: "Ferguson", TeamID: 2, Position: player.PositionForward, Price: 5.9, SelectedByPercent: 11.5, Form: 3.9, PointsPerGame: 3.7, SeasonMinutes: 214},
		{ID: 133, Name: "Morris", TeamID: 4, Position: player.PositionForward, Price: 5.4, SelectedByPercent: 6.2, Form: 3.1, PointsPerGame: 3.0, SeasonMinutes: 251, PenaltiesOrder: intPtr(1)},
	}
}

func seedFixtures() []fixture.Fixture {
	return []fixture.Fixture{
		{Gameweek: 1, HomeTeamID: 1, AwayTeamID: 4, HomeDifficulty: 2, AwayDifficulty: 5},
		{Gameweek: 1, HomeTeamID: 2, AwayTeamID: 3, HomeDifficulty: 3, AwayDifficulty: 3},
		{Gameweek: 2, HomeTeamID: 3, AwayTeamID: 1, HomeDifficulty: 5, AwayDifficulty: 3},
		{Gameweek: 2, HomeTeamID: 4, AwayTeamID: 2, HomeDifficulty: 3, AwayDifficulty: 2},
		{Gameweek: 3, HomeTeamID: 1, AwayTeamID: 2, HomeDifficulty: 3, AwayDifficulty: 5},
		{Gameweek: 3, HomeTeamID: 4, AwayTeamID: 3, HomeDifficulty: 3, AwayDifficulty: 2},
		{Gameweek: 4, HomeTeamID: 2, AwayTeamID: 1, HomeDifficulty: 5, AwayDifficulty: 3},
		{Gameweek: 4, HomeTeamID: 3, AwayTeamID: 4, HomeDifficulty: 2, AwayDifficulty: 3},
		{Gameweek: 5, HomeTeamID: 1, AwayTeamID: 3, HomeDifficulty: 2, AwayDifficulty: 5},
		{Gameweek: 5, HomeTeamID: 2, AwayTeamID: 4, HomeDifficulty: 2, AwayDifficulty: 3},
	}
}

func upcomingFor(teamID int) []fixture.Fixture {
	var out []fixture.Fixture
	for _, f := range seedFixtures() {
		if f.Gameweek >= 4 && f.Involves(teamID) {
			out = append(out, f)
		}
	}
	return out
}

func historyFor(p player.Player) player.History {
	hist := make(player.History, 0, 3)
	for gw := 1; gw <= 3; gw++ {
		minutes := 90
		if p.SeasonMinutes < 270 && gw == 1 {
			minutes = p.SeasonMinutes - 180
			if minutes < 0 {
				minutes = 0
			}
		}
		opponent, home := opponentIn(gw, p.TeamID)
		hist = append(hist, player.GameRecord{
			Round:           gw,
			Minutes:         minutes,
			TotalPoints:     int(p.PointsPerGame + 0.5),
			ExpectedGoals:   p.Form * 0.06,
			ExpectedAssists: p.Form * 0.03,
			WasHome:         home,
			OpponentID:      opponent,
		})
	}
	return hist
}

func opponentIn(gameweek, teamID int) (int, bool) {
	for _, f := range seedFixtures() {
		if f.Gameweek != gameweek {
			continue
		}
		if opponent, home, ok := f.OpponentOf(teamID); ok {
			return opponent, home
		}
	}
	return 0, false
}
