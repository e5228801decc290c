package scoring

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

var frameHeader = []string{"type", "log_score", "brier_score", "log_norm", "brier_norm"}

// SortByLogNorm orders scores best first
func SortByLogNorm(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].LogNorm > scores[j].LogNorm
	})
}

// WriteFrame writes the score frame as CSV
func WriteFrame(w io.Writer, scores []Score) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(frameHeader); err != nil {
		return fmt.Errorf("failed to write score header: %w", err)
	}
	for _, s := range scores {
		rec := []string{
			s.Type,
			formatFloat(s.LogScore),
			formatFloat(s.BrierScore),
			formatFloat(s.LogNorm),
			formatFloat(s.BrierNorm),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write score %s: %w", s.Type, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFrame reads a score frame written by WriteFrame
func ReadFrame(r io.Reader) ([]Score, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse score frame: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("score frame is empty")
	}
	col := make(map[string]int)
	for i, h := range records[0] {
		col[h] = i
	}
	for _, h := range frameHeader {
		if _, ok := col[h]; !ok {
			return nil, fmt.Errorf("score frame is missing column %s", h)
		}
	}

	var scores []Score
	for i, rec := range records[1:] {
		s := Score{Type: rec[col["type"]]}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"log_score", &s.LogScore},
			{"brier_score", &s.BrierScore},
			{"log_norm", &s.LogNorm},
			{"brier_norm", &s.BrierNorm},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(rec[col[f.name]], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, f.name, err)
			}
			*f.dst = v
		}
		scores = append(scores, s)
	}
	return scores, nil
}

// SaveFrame writes the score frame to path
func SaveFrame(path string, scores []Score) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteFrame(f, scores); err != nil {
		return err
	}
	return f.Close()
}

// LoadFrame reads a score frame from path
func LoadFrame(path string) ([]Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrame(f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
