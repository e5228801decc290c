package football

import (
	"fmt"
)

// LastN returns the last n results of a form string, or the whole string if it is shorter
func LastN(form string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(form) <= n {
		return form
	}
	return form[len(form)-n:]
}

// HasHistory is true when both sides came into the match with at least n results
func HasHistory(r Row, n int) bool {
	return len(r.HomeHistory) >= n && len(r.AwayHistory) >= n
}

// FilterHistory keeps the rows where both sides have at least n prior results
func FilterHistory(rows []Row, n int) []Row {
	var ret []Row
	for _, r := range rows {
		if HasHistory(r, n) {
			ret = append(ret, r)
		}
	}
	return ret
}

// SplitSeasons divides rows into those from seasons before the given season and the rest
func SplitSeasons(rows []Row, before int) ([]Row, []Row) {
	var train, test []Row
	for _, r := range rows {
		if r.Season < before {
			train = append(train, r)
		} else {
			test = append(test, r)
		}
	}
	return train, test
}

// PointsFromHistory totals 3/1/0 for every W/D/L in the form string
func PointsFromHistory(form string) (int, error) {
	total := 0
	for i := 0; i < len(form); i++ {
		p, ok := outcomePoints[form[i]]
		if !ok {
			return 0, fmt.Errorf("invalid form character %q at %d in %q", form[i], i, form)
		}
		total += p
	}
	return total, nil
}

// PredictionFromHistory counts wins, losses and draws in a form string.
// For the visiting side (home=false) wins and losses swap so the counts read from the home side.
func PredictionFromHistory(form string, home bool) (int, int, int) {
	w, l, d := 0, 0, 0
	for i := 0; i < len(form); i++ {
		switch form[i] {
		case Win:
			w++
		case Loss:
			l++
		case Tie:
			d++
		}
	}
	if home {
		return w, l, d
	}
	return l, w, d
}

/////////////////////////////////////////////////////////////////////////
////// Queries over the raw match list
/////////////////////////////////////////////////////////////////////////

// TeamsInSeason lists the teams that hosted a match in the season, in order of first appearance
func TeamsInSeason(matches []Match, season int) []string {
	seen := make(map[string]bool)
	var ret []string
	for _, m := range matches {
		if m.Season != season || seen[m.Home] {
			continue
		}
		seen[m.Home] = true
		ret = append(ret, m.Home)
	}
	return ret
}

// GamesWithTeam returns the matches the team played, home or away
func GamesWithTeam(team string, matches []Match) []Match {
	var ret []Match
	for _, m := range matches {
		if m.Involves(team) {
			ret = append(ret, m)
		}
	}
	return ret
}

// GamesInSeason returns the matches from a season, optionally only those strictly before
// a date (empty for no limit) and only those in a tier (0 for any tier)
func GamesInSeason(season int, matches []Match, before string, tier int) []Match {
	var ret []Match
	for _, m := range matches {
		if m.Season != season {
			continue
		}
		if before != "" && m.Date >= before {
			continue
		}
		if tier != 0 && m.Tier != tier {
			continue
		}
		ret = append(ret, m)
	}
	return ret
}

// HistoryString is the team's form in the season up to (not including) the given date
func HistoryString(team string, season int, matches []Match, before string) string {
	games := GamesInSeason(season, GamesWithTeam(team, matches), before, 0)
	form := make([]byte, 0, len(games))
	for _, g := range games {
		form = append(form, g.OutcomeFor(team))
	}
	return string(form)
}

// FinalPoints is the team's points tally over the whole season
func FinalPoints(team string, season int, matches []Match) (int, error) {
	form := HistoryString(team, season, matches, "")
	if form == "" {
		return 0, fmt.Errorf("%s played no matches in season %d", team, season)
	}
	return PointsFromHistory(form)
}
