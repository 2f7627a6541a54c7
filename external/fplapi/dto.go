package fplapi

import (
	"strconv"
	"strings"

	"github.com/fplkit/planner/internal/domain/fixture"
	"github.com/fplkit/planner/internal/domain/player"
	"github.com/fplkit/planner/internal/domain/team"
	"github.com/fplkit/planner/internal/usecase"
)

// The upstream API reports several numeric fields as JSON strings
// ("form": "5.2"); parsing failures read as zero rather than erroring, per
// the core's missing-optional-field contract.

type bootstrapResponse struct {
	Teams    []teamDTO    `json:"teams"`
	Elements []elementDTO `json:"elements"`
	Events   []eventDTO   `json:"events"`
}

type teamDTO struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	ShortName           string `json:"short_name"`
	StrengthAttackHome  int    `json:"strength_attack_home"`
	StrengthAttackAway  int    `json:"strength_attack_away"`
	StrengthDefenceHome int    `json:"strength_defence_home"`
	StrengthDefenceAway int    `json:"strength_defence_away"`
}

type elementDTO struct {
	ID                       int     `json:"id"`
	WebName                  string  `json:"web_name"`
	Team                     int     `json:"team"`
	ElementType              int     `json:"element_type"`
	NowCost                  int     `json:"now_cost"`
	SelectedByPercent        string  `json:"selected_by_percent"`
	ChanceOfPlayingNextRound *int    `json:"chance_of_playing_next_round"`
	Form                     string  `json:"form"`
	PointsPerGame            string  `json:"points_per_game"`
	Minutes                  int     `json:"minutes"`
	PenaltiesOrder           *int    `json:"penalties_order"`
	DirectFreekicksOrder     *int    `json:"direct_freekicks_order"`
	CornersOrder             *int    `json:"corners_and_indirect_freekicks_order"`
}

type eventDTO struct {
	ID        int  `json:"id"`
	Finished  bool `json:"finished"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
}

type fixtureDTO struct {
	Event           *int `json:"event"`
	TeamH           int  `json:"team_h"`
	TeamA           int  `json:"team_a"`
	TeamHDifficulty int  `json:"team_h_difficulty"`
	TeamADifficulty int  `json:"team_a_difficulty"`
}

type elementSummaryResponse struct {
	Fixtures []summaryFixtureDTO `json:"fixtures"`
	History  []historyDTO        `json:"history"`
}

type summaryFixtureDTO struct {
	Event *int `json:"event"`
	TeamH int  `json:"team_h"`
	TeamA int  `json:"team_a"`
}

type historyDTO struct {
	Round                 int    `json:"round"`
	Minutes               int    `json:"minutes"`
	TotalPoints           int    `json:"total_points"`
	ExpectedGoals         string `json:"expected_goals"`
	ExpectedAssists       string `json:"expected_assists"`
	DefensiveContribution int    `json:"defensive_contribution"`
	WasHome               bool   `json:"was_home"`
	OpponentTeam          int    `json:"opponent_team"`
}

type picksResponse struct {
	Picks []pickDTO `json:"picks"`
}

type pickDTO struct {
	Element       int  `json:"element"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

func (b bootstrapResponse) toSnapshot() usecase.Snapshot {
	teams := make([]team.Team, 0, len(b.Teams))
	for _, t := range b.Teams {
		teams = append(teams, team.Team{
			ID:          t.ID,
			Name:        t.Name,
			Short:       t.ShortName,
			AttackHome:  float64(t.StrengthAttackHome),
			AttackAway:  float64(t.StrengthAttackAway),
			DefenceHome: float64(t.StrengthDefenceHome),
			DefenceAway: float64(t.StrengthDefenceAway),
		})
	}

	players := make([]player.Player, 0, len(b.Elements))
	for _, e := range b.Elements {
		pos, ok := player.PositionFromElementType(e.ElementType)
		if !ok {
			continue
		}
		players = append(players, player.Player{
			ID:                   e.ID,
			Name:                 e.WebName,
			TeamID:               e.Team,
			Position:             pos,
			Price:                float64(e.NowCost) / 10,
			SelectedByPercent:    parseFloat(e.SelectedByPercent),
			Availability:         e.ChanceOfPlayingNextRound,
			Form:                 parseFloat(e.Form),
			PointsPerGame:        parseFloat(e.PointsPerGame),
			SeasonMinutes:        e.Minutes,
			PenaltiesOrder:       e.PenaltiesOrder,
			DirectFreekicksOrder: e.DirectFreekicksOrder,
			CornersOrder:         e.CornersOrder,
		})
	}

	events := make([]fixture.Event, 0, len(b.Events))
	for _, ev := range b.Events {
		events = append(events, fixture.Event{
			ID:        ev.ID,
			Finished:  ev.Finished,
			IsCurrent: ev.IsCurrent,
			IsNext:    ev.IsNext,
		})
	}

	return usecase.Snapshot{
		Teams:   team.NewIndex(teams),
		Players: players,
		Events:  events,
	}
}

func (r elementSummaryResponse) toDetail() usecase.PlayerDetail {
	detail := usecase.PlayerDetail{
		Upcoming: make([]fixture.Fixture, 0, len(r.Fixtures)),
		History:  make(player.History, 0, len(r.History)),
	}
	for _, f := range r.Fixtures {
		if f.Event == nil {
			continue
		}
		detail.Upcoming = append(detail.Upcoming, fixture.Fixture{
			Gameweek:   *f.Event,
			HomeTeamID: f.TeamH,
			AwayTeamID: f.TeamA,
		})
	}
	for _, h := range r.History {
		detail.History = append(detail.History, player.GameRecord{
			Round:                 h.Round,
			Minutes:               h.Minutes,
			TotalPoints:           h.TotalPoints,
			ExpectedGoals:         parseFloat(h.ExpectedGoals),
			ExpectedAssists:       parseFloat(h.ExpectedAssists),
			DefensiveContribution: h.DefensiveContribution,
			WasHome:               h.WasHome,
			OpponentID:            h.OpponentTeam,
		})
	}
	return detail
}

func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
