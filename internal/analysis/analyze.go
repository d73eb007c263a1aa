package analysis

import (
	"math"
	"sort"
	"time"
	"understat-pipeline/internal/dataset"
)

// ScatterLimit is how many rows of the current season end up in the scatter sample.
const ScatterLimit = 50

// ScatterMinGames is the minimum number of games a player needs to be plotted.
const ScatterMinGames = 5

const LastUpdatedLayout = "2006-01-02 15:04:05"

// Analyze computes the summary of a single competition out of the combined table.
// The four views are independent passes over the same filtered rows.
func Analyze(table dataset.Table, competition string, now time.Time) Summary {
	rows := table.Filter(func(r dataset.Record) bool {
		return r.League == competition
	})
	seasons := distinctSeasons(rows)

	return Summary{
		Overview:           overview(rows, seasons, now),
		TopScorersBySeason: topScorers(rows, seasons),
		XGVsGoalsCurrent:   scatter(rows, currentSeason(seasons)),
		TeamPerformance:    teamPerformance(rows, seasons),
		PositionAnalysis:   positionAverages(rows),
	}
}

// round2 rounds to two decimals, exact halves go to the even neighbour.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// distinctSeasons returns the sorted non-empty season labels, labels are
// "YYYY/YY" so lexical order is chronological.
func distinctSeasons(rows dataset.Table) []string {
	seen := map[string]struct{}{}
	seasons := []string{}
	for _, r := range rows {
		if r.Season == "" {
			continue
		}
		if _, ok := seen[r.Season]; ok {
			continue
		}
		seen[r.Season] = struct{}{}
		seasons = append(seasons, r.Season)
	}
	sort.Strings(seasons)
	return seasons
}

func currentSeason(seasons []string) string {
	if len(seasons) == 0 {
		return ""
	}
	return seasons[len(seasons)-1]
}

func countDistinct(rows dataset.Table, key func(r dataset.Record) string) int {
	seen := map[string]struct{}{}
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		seen[k] = struct{}{}
	}
	return len(seen)
}

func overview(rows dataset.Table, seasons []string, now time.Time) Overview {
	return Overview{
		TotalRecords:   len(rows),
		SeasonsCovered: seasons,
		UniquePlayers:  countDistinct(rows, func(r dataset.Record) string { return r.ID }),
		TeamsCount:     countDistinct(rows, func(r dataset.Record) string { return r.TeamTitle }),
		CurrentSeason:  currentSeason(seasons),
		LastUpdated:    now.Format(LastUpdatedLayout),
	}
}

// topScorers picks the row with the most goals of every season. The first row
// in table order wins a tie, rows without goals never win, a season where no
// row has goals is left out.
func topScorers(rows dataset.Table, seasons []string) []TopScorer {
	out := []TopScorer{}
	for _, season := range seasons {
		var best *dataset.Record
		for i := range rows {
			r := &rows[i]
			if r.Season != season || r.Goals == nil {
				continue
			}
			if best == nil || *r.Goals > *best.Goals {
				best = r
			}
		}
		if best == nil {
			continue
		}
		out = append(out, TopScorer{
			Season: season,
			Player: best.PlayerName,
			Team:   best.TeamTitle,
			Goals:  int(*best.Goals),
			XG:     round2(dataset.Float(best.XG)),
		})
	}
	return out
}

// scatter samples the current season in table order, it is not sorted by any metric.
func scatter(rows dataset.Table, season string) []ScatterPoint {
	out := []ScatterPoint{}
	if season == "" {
		return out
	}
	for _, r := range rows {
		if len(out) == ScatterLimit {
			break
		}
		if r.Season != season || r.Games == nil || *r.Games < ScatterMinGames {
			continue
		}
		out = append(out, ScatterPoint{
			Name:  r.PlayerName,
			Team:  r.TeamTitle,
			Goals: int(dataset.Float(r.Goals)),
			XG:    round2(dataset.Float(r.XG)),
			Games: int(*r.Games),
		})
	}
	return out
}

type teamTotals struct {
	goals   float64
	xG      float64
	assists float64
}

// teamPerformance sums every team of every season, teams come out sorted
// by name within a season. Nulls add nothing.
func teamPerformance(rows dataset.Table, seasons []string) []TeamSeason {
	out := []TeamSeason{}
	for _, season := range seasons {
		totals := map[string]*teamTotals{}
		var teams []string
		for _, r := range rows {
			if r.Season != season || r.TeamTitle == "" {
				continue
			}
			t, ok := totals[r.TeamTitle]
			if !ok {
				t = &teamTotals{}
				totals[r.TeamTitle] = t
				teams = append(teams, r.TeamTitle)
			}
			t.goals += dataset.Float(r.Goals)
			t.xG += dataset.Float(r.XG)
			t.assists += dataset.Float(r.Assists)
		}
		sort.Strings(teams)

		for _, team := range teams {
			t := totals[team]
			out = append(out, TeamSeason{
				Season:       season,
				Team:         team,
				TotalGoals:   int(t.goals),
				TotalXG:      round2(t.xG),
				TotalAssists: int(t.assists),
			})
		}
	}
	return out
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.count++
}

// value is 0 when nothing was added.
func (m mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return round2(m.sum / float64(m.count))
}

type positionMeans struct {
	goals, xG, assists, keyPasses, shots mean
}

// positionAverages averages every primary position over all seasons, rows
// without a primary position are left out.
func positionAverages(rows dataset.Table) []PositionAverage {
	groups := map[string]*positionMeans{}
	var positions []string
	for _, r := range rows {
		if r.PrimaryPosition == "" {
			continue
		}
		g, ok := groups[r.PrimaryPosition]
		if !ok {
			g = &positionMeans{}
			groups[r.PrimaryPosition] = g
			positions = append(positions, r.PrimaryPosition)
		}
		g.goals.add(r.Goals)
		g.xG.add(r.XG)
		g.assists.add(r.Assists)
		g.keyPasses.add(r.KeyPasses)
		g.shots.add(r.Shots)
	}
	sort.Strings(positions)

	out := make([]PositionAverage, len(positions))
	for i, pos := range positions {
		g := groups[pos]
		out[i] = PositionAverage{
			Position:     pos,
			AvgGoals:     g.goals.value(),
			AvgXG:        g.xG.value(),
			AvgAssists:   g.assists.value(),
			AvgKeyPasses: g.keyPasses.value(),
			AvgShots:     g.shots.value(),
		}
	}
	return out
}
