// Package scoring rates probabilistic predictions of match results.
//
// Log score: higher is better, 0 is best. Brier score: lower is better, 0 is best.
package scoring

import (
	"fmt"
	"math"

	"github.com/richard-senior/formscore/pkg/football"
	"gonum.org/v1/gonum/stat"
)

// LogScore is the log of the probability given to the realised result. base 0 means natural log.
// A prediction that gave the result no chance scores -Inf.
func LogScore(p football.Triple, r football.Result, base float64) float64 {
	v := math.Log(p.Get(r))
	if base > 0 && base != math.E {
		v /= math.Log(base)
	}
	return v
}

// BrierScore is the squared distance between the prediction and the one-hot result,
// summed over the three outcomes
func BrierScore(p football.Triple, r football.Result) float64 {
	o := r.OneHot()
	dw := p.HomeWin - o.HomeWin
	dd := p.Draw - o.Draw
	dl := p.HomeLoss - o.HomeLoss
	return dw*dw + dd*dd + dl*dl
}

// Score is the mean log and Brier score of one method, plus the normalised values used for display
type Score struct {
	Type       string  `json:"type"`
	LogScore   float64 `json:"logScore"`
	BrierScore float64 `json:"brierScore"`
	LogNorm    float64 `json:"logNorm"`
	BrierNorm  float64 `json:"brierNorm"`
}

// Evaluate averages both scores over paired predictions and results
func Evaluate(name string, preds []football.Triple, results []football.Result, base float64) (Score, error) {
	if len(preds) != len(results) {
		return Score{}, fmt.Errorf("%s: %d predictions for %d results", name, len(preds), len(results))
	}
	if len(preds) == 0 {
		return Score{}, fmt.Errorf("%s: nothing to score", name)
	}
	logs := make([]float64, len(preds))
	briers := make([]float64, len(preds))
	for i, p := range preds {
		logs[i] = LogScore(p, results[i], base)
		briers[i] = BrierScore(p, results[i])
	}
	return Score{
		Type:       name,
		LogScore:   stat.Mean(logs, nil),
		BrierScore: stat.Mean(briers, nil),
	}, nil
}

// EvaluateMethod runs a method over rows and scores it against their results
func EvaluateMethod(m football.Method, rows []football.Row, base float64) (Score, error) {
	results := make([]football.Result, len(rows))
	for i, r := range rows {
		results[i] = r.Result
	}
	return Evaluate(m.Name, m.Apply(rows), results, base)
}

// Normalise min-max scales values into [0,1]. Non-finite values map to 0 and are left out of
// the min and max; when every finite value is equal they all map to 1.
func Normalise(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	ret := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			ret[i] = 0
		case hi == lo:
			ret[i] = 1
		default:
			ret[i] = (v - lo) / (hi - lo)
		}
	}
	return ret
}

// NormaliseScores fills LogNorm and BrierNorm so that 1 is best and 0 is worst for both.
// BrierNorm is 1 - norm(brier), computed as norm(-brier).
func NormaliseScores(scores []Score) {
	logs := make([]float64, len(scores))
	briers := make([]float64, len(scores))
	for i, s := range scores {
		logs[i] = s.LogScore
		briers[i] = -s.BrierScore
	}
	ln := Normalise(logs)
	bn := Normalise(briers)
	for i := range scores {
		scores[i].LogNorm = ln[i]
		scores[i].BrierNorm = bn[i]
	}
}
