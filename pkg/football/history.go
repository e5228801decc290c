package football

import (
	"fmt"

	"github.com/richard-senior/formscore/internal/logger"
)

// teamRecord is the running state of one team within one season
type teamRecord struct {
	form   []byte
	points int
}

// BuildHistory derives the season-to-date form and points of both sides for every match.
// Rows come back aligned with the input. Within a season a team's matches are replayed in input
// order and each row records what the team had accumulated *before* that match.
func BuildHistory(matches []Match) ([]Row, error) {
	rows := make([]Row, len(matches))
	for i, m := range matches {
		rows[i].Match = m
	}

	seasons, order := groupBySeason(matches)
	for _, season := range order {
		logger.Debug("Generating history for season", season)
		if err := buildSeason(rows, seasons[season]); err != nil {
			return nil, fmt.Errorf("season %d: %w", season, err)
		}
	}
	return rows, nil
}

// groupBySeason returns the row indices of each season and the seasons in first-seen order
func groupBySeason(matches []Match) (map[int][]int, []int) {
	groups := make(map[int][]int)
	var order []int
	for i, m := range matches {
		if _, ok := groups[m.Season]; !ok {
			order = append(order, m.Season)
		}
		groups[m.Season] = append(groups[m.Season], i)
	}
	return groups, order
}

func buildSeason(rows []Row, indices []int) error {
	teams := make(map[string]*teamRecord)
	get := func(name string) *teamRecord {
		rec, ok := teams[name]
		if !ok {
			rec = &teamRecord{}
			teams[name] = rec
		}
		return rec
	}

	for _, i := range indices {
		r := &rows[i]
		if _, err := ParseResult(string(r.Result)); err != nil {
			return fmt.Errorf("row %d (%s v %s): %w", i, r.Home, r.Visitor, err)
		}
		home := get(r.Home)
		away := get(r.Visitor)

		r.HomeHistory = string(home.form)
		r.HomePoints = home.points
		r.AwayHistory = string(away.form)
		r.AwayPoints = away.points

		home.record(r.Result.OutcomeFor(true))
		away.record(r.Result.OutcomeFor(false))
	}
	return nil
}

func (t *teamRecord) record(outcome byte) {
	t.form = append(t.form, outcome)
	t.points += outcomePoints[outcome]
}
