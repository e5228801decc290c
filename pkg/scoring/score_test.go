package scoring

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/richard-senior/formscore/pkg/football"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanced(n int) []football.Result {
	var ret []football.Result
	for i := 0; i < n; i++ {
		ret = append(ret, football.HomeWin, football.Draw, football.HomeLoss)
	}
	return ret
}

func repeat(t football.Triple, n int) []football.Triple {
	ret := make([]football.Triple, n)
	for i := range ret {
		ret[i] = t
	}
	return ret
}

func TestThirdsBrierIsTwoThirds(t *testing.T) {
	for _, n := range []int{1, 10, 1000} {
		results := balanced(n)
		s, err := Evaluate("Thirds", repeat(football.Thirds, len(results)), results, 0)
		require.NoError(t, err)
		assert.InDelta(t, 2.0/3, s.BrierScore, 1e-12)
		assert.InDelta(t, math.Log(1.0/3), s.LogScore, 1e-12)
	}
}

func TestCertainPredictions(t *testing.T) {
	sure := football.Triple{HomeWin: 1}
	assert.Equal(t, 0.0, LogScore(sure, football.HomeWin, 0))
	assert.Equal(t, 0.0, BrierScore(sure, football.HomeWin))

	assert.True(t, math.IsInf(LogScore(sure, football.Draw, 0), -1))
	assert.Equal(t, 2.0, BrierScore(sure, football.Draw))
}

func TestLogBase(t *testing.T) {
	half := football.Triple{HomeWin: 0.5, Draw: 0.25, HomeLoss: 0.25}
	assert.InDelta(t, -1.0, LogScore(half, football.HomeWin, 2), 1e-12)
	assert.InDelta(t, math.Log(0.5), LogScore(half, football.HomeWin, 0), 1e-12)
	assert.InDelta(t, math.Log(0.5), LogScore(half, football.HomeWin, math.E), 1e-12)
}

func TestEvaluateErrors(t *testing.T) {
	_, err := Evaluate("x", repeat(football.Thirds, 2), balanced(1), 0)
	assert.Error(t, err)
	_, err = Evaluate("x", nil, nil, 0)
	assert.Error(t, err)
}

func TestEvaluateMethod(t *testing.T) {
	rows := []football.Row{
		{Match: football.Match{Result: football.HomeWin}},
		{Match: football.Match{Result: football.Draw}},
	}
	s, err := EvaluateMethod(football.ThirdsMethod(), rows, 0)
	require.NoError(t, err)
	assert.Equal(t, "Thirds", s.Type)
	assert.InDelta(t, 2.0/3, s.BrierScore, 1e-12)
}

func TestNormalise(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Normalise([]float64{-2, -1.5, -1}))
	assert.Equal(t, []float64{1, 1}, Normalise([]float64{3, 3}))
	assert.Equal(t, []float64{0, 0, 1}, Normalise([]float64{math.Inf(-1), 1, 2}))
}

func TestNormaliseScores(t *testing.T) {
	scores := []Score{
		{Type: "good", LogScore: -0.9, BrierScore: 0.55},
		{Type: "bad", LogScore: -1.1, BrierScore: 0.70},
		{Type: "mid", LogScore: -1.0, BrierScore: 0.625},
	}
	NormaliseScores(scores)
	assert.InDelta(t, 1.0, scores[0].LogNorm, 1e-12)
	assert.InDelta(t, 1.0, scores[0].BrierNorm, 1e-12)
	assert.InDelta(t, 0.0, scores[1].LogNorm, 1e-12)
	assert.InDelta(t, 0.0, scores[1].BrierNorm, 1e-12)
	assert.InDelta(t, 0.5, scores[2].LogNorm, 1e-9)
	assert.InDelta(t, 0.5, scores[2].BrierNorm, 1e-9)

	SortByLogNorm(scores)
	assert.Equal(t, []string{"good", "mid", "bad"}, []string{scores[0].Type, scores[1].Type, scores[2].Type})
}

func TestFrameRoundTrip(t *testing.T) {
	scores := []Score{
		{Type: "Home form 3", LogScore: -1.01, BrierScore: 0.61, LogNorm: 0.4, BrierNorm: 0.3},
		{Type: "Odds", LogScore: math.Inf(-1), BrierScore: 0.58, LogNorm: 0, BrierNorm: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, scores))
	assert.Contains(t, buf.String(), "type,log_score,brier_score,log_norm,brier_norm\n")

	back, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, scores, back)

	path := filepath.Join(t.TempDir(), "score_frame.csv")
	require.NoError(t, SaveFrame(path, scores))
	loaded, err := LoadFrame(path)
	require.NoError(t, err)
	assert.Equal(t, scores, loaded)
}

func TestReadFrameMissingColumn(t *testing.T) {
	_, err := ReadFrame(bytes.NewBufferString("type,log_score\nThirds,-1\n"))
	assert.Error(t, err)
}
