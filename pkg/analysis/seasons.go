// Package analysis summarises how results are distributed across seasons, which is where the
// home advantage baseline comes from.
package analysis

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/pkg/football"
	"gonum.org/v1/gonum/stat"
)

// outcome is one match flattened for the dataframe
type outcome struct {
	Season   int     `dataframe:"season"`
	HomeWin  float64 `dataframe:"home_win"`
	Draw     float64 `dataframe:"draw"`
	HomeLoss float64 `dataframe:"home_loss"`
}

// SeasonAverage is the share and count of each result in one season
type SeasonAverage struct {
	Season     int     `dataframe:"season"`
	Matches    int     `dataframe:"matches"`
	HomeWin    float64 `dataframe:"home_win"`
	Draw       float64 `dataframe:"draw"`
	HomeLoss   float64 `dataframe:"home_loss"`
	HomeWins   int     `dataframe:"home_wins"`
	Draws      int     `dataframe:"draws"`
	HomeLosses int     `dataframe:"home_losses"`
}

// Advantage is the excess of home wins over home losses
func (s SeasonAverage) Advantage() float64 {
	return s.HomeWin - s.HomeLoss
}

var outcomeColumns = []string{"home_win", "draw", "home_loss"}

func aggregated(col string, agg dataframe.AggregationType) string {
	return fmt.Sprintf("%s_%s", col, agg)
}

// SeasonAverages groups rows by season and returns the mean one-hot result and result counts of
// each, oldest season first
func SeasonAverages(rows []football.Row) ([]SeasonAverage, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	flat := make([]outcome, len(rows))
	for i, r := range rows {
		o := r.Result.OneHot()
		flat[i] = outcome{Season: r.Season, HomeWin: o.HomeWin, Draw: o.Draw, HomeLoss: o.HomeLoss}
	}

	df := dataframe.LoadStructs(flat)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to build dataframe: %w", df.Err)
	}

	aggs := []dataframe.AggregationType{
		dataframe.Aggregation_MEAN, dataframe.Aggregation_MEAN, dataframe.Aggregation_MEAN,
		dataframe.Aggregation_COUNT,
	}
	cols := append(append([]string{}, outcomeColumns...), "home_win")
	grouped := df.GroupBy("season").Aggregation(aggs, cols).Arrange(dataframe.Sort("season"))
	if grouped.Err != nil {
		return nil, fmt.Errorf("failed to aggregate seasons: %w", grouped.Err)
	}

	seasons, err := grouped.Col("season").Int()
	if err != nil {
		return nil, fmt.Errorf("failed to read seasons: %w", err)
	}
	means := make(map[string][]float64)
	for _, c := range outcomeColumns {
		means[c] = grouped.Col(aggregated(c, dataframe.Aggregation_MEAN)).Float()
	}
	counts := grouped.Col(aggregated("home_win", dataframe.Aggregation_COUNT)).Float()

	out := make([]SeasonAverage, len(seasons))
	for i, season := range seasons {
		n := counts[i]
		s := SeasonAverage{
			Season:   season,
			Matches:  int(n),
			HomeWin:  means["home_win"][i],
			Draw:     means["draw"][i],
			HomeLoss: means["home_loss"][i],
		}
		s.HomeWins = int(math.Round(s.HomeWin * n))
		s.Draws = int(math.Round(s.Draw * n))
		s.HomeLosses = int(math.Round(s.HomeLoss * n))
		out[i] = s
	}
	logger.Debug("Aggregated seasons", len(out))
	return out, nil
}

// OverallAdvantage is the match-weighted mean of each season's home advantage
func OverallAdvantage(avgs []SeasonAverage) float64 {
	if len(avgs) == 0 {
		return 0
	}
	x := make([]float64, len(avgs))
	w := make([]float64, len(avgs))
	for i, a := range avgs {
		x[i] = a.Advantage()
		w[i] = float64(a.Matches)
	}
	return stat.Mean(x, w)
}

// WriteSeasonAverages writes one CSV line per season
func WriteSeasonAverages(w io.Writer, avgs []SeasonAverage) error {
	if len(avgs) == 0 {
		return fmt.Errorf("no season averages to write")
	}
	df := dataframe.LoadStructs(avgs)
	if df.Err != nil {
		return fmt.Errorf("failed to build dataframe: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write season averages: %w", err)
	}
	return nil
}

// SaveSeasonAverages writes the season averages to path
func SaveSeasonAverages(path string, avgs []SeasonAverage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteSeasonAverages(f, avgs); err != nil {
		return err
	}
	return f.Close()
}
