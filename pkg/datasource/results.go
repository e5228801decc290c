package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/richard-senior/formscore/pkg/football"
	"github.com/richard-senior/formscore/pkg/util"
)

// columns of the cleaned results file, the unnamed first column is the row index
var cleanHeader = []string{
	"", "Date", "Season", "tier", "home", "visitor", "result",
	"home_history", "home_points", "away_history", "away_points",
	"home_loss", "draw", "home_win",
}

// readTable reads a CSV with a header row into header-keyed maps
func readTable(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// requireColumns checks that every named column is present in the first row
func requireColumns(rows []map[string]string, names ...string) error {
	if len(rows) == 0 {
		return nil
	}
	for _, n := range names {
		if _, ok := rows[0][n]; !ok {
			return fmt.Errorf("missing column %s", n)
		}
	}
	return nil
}

// parseMatch reads the six match fields shared by the raw and cleaned files
func parseMatch(row map[string]string) (football.Match, error) {
	season, err := util.GetAsInteger(row["Season"])
	if err != nil {
		return football.Match{}, fmt.Errorf("Season: %w", err)
	}
	tier, err := util.GetAsInteger(row["tier"])
	if err != nil {
		return football.Match{}, fmt.Errorf("tier: %w", err)
	}
	result, err := football.ParseResult(row["result"])
	if err != nil {
		return football.Match{}, err
	}
	return football.Match{
		Date:    row["Date"],
		Season:  season,
		Tier:    tier,
		Home:    row["home"],
		Visitor: row["visitor"],
		Result:  result,
	}, nil
}

// ParseResults reads the engsoccerdata results file, keeping the columns the analysis needs
func ParseResults(r io.Reader) ([]football.Match, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(rows, "Date", "Season", "tier", "home", "visitor", "result"); err != nil {
		return nil, err
	}

	matches := make([]football.Match, 0, len(rows))
	for i, row := range rows {
		m, err := parseMatch(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// WriteClean writes rows with their history, points and one-hot result columns
func WriteClean(w io.Writer, rows []football.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cleanHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range rows {
		o := r.Result.OneHot()
		rec := []string{
			strconv.Itoa(i),
			r.Date,
			strconv.Itoa(r.Season),
			strconv.Itoa(r.Tier),
			r.Home,
			r.Visitor,
			string(r.Result),
			r.HomeHistory,
			strconv.Itoa(r.HomePoints),
			r.AwayHistory,
			strconv.Itoa(r.AwayPoints),
			strconv.Itoa(int(o.HomeLoss)),
			strconv.Itoa(int(o.Draw)),
			strconv.Itoa(int(o.HomeWin)),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadClean reads a file written by WriteClean. Empty history cells are kept as empty strings.
func ReadClean(r io.Reader) ([]football.Row, error) {
	table, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(table, cleanHeader[1:]...); err != nil {
		return nil, err
	}

	rows := make([]football.Row, 0, len(table))
	for i, row := range table {
		m, err := parseMatch(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		hp, err := util.GetAsInteger(row["home_points"])
		if err != nil {
			return nil, fmt.Errorf("row %d home_points: %w", i+2, err)
		}
		ap, err := util.GetAsInteger(row["away_points"])
		if err != nil {
			return nil, fmt.Errorf("row %d away_points: %w", i+2, err)
		}
		rows = append(rows, football.Row{
			Match:       m,
			HomeHistory: row["home_history"],
			HomePoints:  hp,
			AwayHistory: row["away_history"],
			AwayPoints:  ap,
		})
	}
	return rows, nil
}

// SaveClean writes the cleaned results to path
func SaveClean(path string, rows []football.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteClean(f, rows); err != nil {
		return err
	}
	return f.Close()
}

// LoadClean reads the cleaned results from path
func LoadClean(path string) ([]football.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadClean(f)
}
