package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/pkg/football"
	"github.com/richard-senior/formscore/pkg/util"
)

// OddsRow is one match from a football-data.co.uk season file with its average 1X2 decimal odds.
// Odds are a multiplier on the stake, so odds of 2 imply a probability of 1/2.
type OddsRow struct {
	Date     string
	HomeTeam string
	AwayTeam string
	Result   football.Result
	HomeOdds float64
	DrawOdds float64
	AwayOdds float64
}

// Implied returns 1/odds for each outcome. The three normally sum to a little over one
// (the bookmaker's overround).
func (o OddsRow) Implied() football.Triple {
	return football.Triple{HomeWin: 1 / o.HomeOdds, Draw: 1 / o.DrawOdds, HomeLoss: 1 / o.AwayOdds}
}

// Fair returns the implied probabilities with the overround removed
func (o OddsRow) Fair() football.Triple {
	return o.Implied().Normalised()
}

// Overround is how far the implied probabilities exceed one
func (o OddsRow) Overround() float64 {
	return o.Implied().Sum() - 1
}

var oddsHeader = []string{"Date", "HomeTeam", "AwayTeam", "FTR", "AvgH", "AvgA", "AvgD", "ProbH", "ProbA", "ProbD"}

// bookmakers whose individual columns are averaged when no market average is present
var bookies = []string{"B365", "BF", "BS", "BW", "GB", "IW", "LB", "PS", "SO", "SB", "SJ", "SY", "VC", "WH"}

// AverageOdds picks home, draw and away decimal odds from a football-data.co.uk row.
// Pre-match market averages are preferred, then closing averages, then the mean over
// whichever bookmakers are present. ok is false when the row carries no odds at all.
func AverageOdds(row map[string]string) (float64, float64, float64, bool) {
	for _, prefix := range []string{"Avg", "AvgC", "BbAv"} {
		if h, d, a, ok := triple(row, prefix+"H", prefix+"D", prefix+"A"); ok {
			return h, d, a, true
		}
	}

	for _, suffix := range []string{"", "C"} {
		var homeTotal, drawTotal, awayTotal float64
		var count int
		for _, bookie := range bookies {
			if h, d, a, ok := triple(row, bookie+suffix+"H", bookie+suffix+"D", bookie+suffix+"A"); ok {
				homeTotal += h
				drawTotal += d
				awayTotal += a
				count++
			}
		}
		if count > 0 {
			n := float64(count)
			return round2(homeTotal / n), round2(drawTotal / n), round2(awayTotal / n), true
		}
	}
	return 0, 0, 0, false
}

// triple parses three odds columns, all of which must be present and greater than one
func triple(row map[string]string, hk, dk, ak string) (float64, float64, float64, bool) {
	var out [3]float64
	for i, k := range []string{hk, dk, ak} {
		v, exists := row[k]
		if !exists || util.IsBlank(v) {
			return 0, 0, 0, false
		}
		f, err := util.GetAsFloat(v)
		if err != nil || f <= 1 {
			return 0, 0, 0, false
		}
		out[i] = f
	}
	return out[0], out[1], out[2], true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseOdds reads a football-data.co.uk season file. Rows without teams, a result or usable odds
// are skipped with a warning because these files are often ragged at the end.
func ParseOdds(r io.Reader) ([]OddsRow, error) {
	table, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(table, "HomeTeam", "AwayTeam", "FTR"); err != nil {
		return nil, err
	}

	var rows []OddsRow
	for i, row := range table {
		if row["HomeTeam"] == "" || row["AwayTeam"] == "" {
			continue
		}
		result, err := football.ParseResult(row["FTR"])
		if err != nil {
			logger.Warn("Skipping odds row without a result", i+2, err)
			continue
		}
		h, d, a, ok := AverageOdds(row)
		if !ok {
			logger.Warn("Skipping odds row without odds", i+2, row["HomeTeam"], row["AwayTeam"])
			continue
		}
		rows = append(rows, OddsRow{
			Date:     row["Date"],
			HomeTeam: row["HomeTeam"],
			AwayTeam: row["AwayTeam"],
			Result:   result,
			HomeOdds: h,
			DrawOdds: d,
			AwayOdds: a,
		})
	}
	return rows, nil
}

// WriteOddsClean writes the odds with their implied probabilities
func WriteOddsClean(w io.Writer, rows []OddsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(oddsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, o := range rows {
		p := o.Implied()
		rec := []string{
			o.Date, o.HomeTeam, o.AwayTeam, string(o.Result),
			f(o.HomeOdds), f(o.AwayOdds), f(o.DrawOdds),
			f(p.HomeWin), f(p.HomeLoss), f(p.Draw),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write odds row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadOddsClean reads a file written by WriteOddsClean
func ReadOddsClean(r io.Reader) ([]OddsRow, error) {
	table, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(table, oddsHeader[:7]...); err != nil {
		return nil, err
	}
	rows := make([]OddsRow, 0, len(table))
	for i, row := range table {
		result, err := football.ParseResult(row["FTR"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		h, d, a, ok := triple(row, "AvgH", "AvgD", "AvgA")
		if !ok {
			return nil, fmt.Errorf("row %d: invalid odds", i+2)
		}
		rows = append(rows, OddsRow{
			Date: row["Date"], HomeTeam: row["HomeTeam"], AwayTeam: row["AwayTeam"],
			Result: result, HomeOdds: h, DrawOdds: d, AwayOdds: a,
		})
	}
	return rows, nil
}

// SaveOddsClean writes the cleaned odds to path
func SaveOddsClean(path string, rows []OddsRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteOddsClean(f, rows); err != nil {
		return err
	}
	return f.Close()
}

// LoadOddsClean reads the cleaned odds from path
func LoadOddsClean(path string) ([]OddsRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadOddsClean(f)
}
