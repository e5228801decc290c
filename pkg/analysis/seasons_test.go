package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/richard-senior/formscore/pkg/football"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsFor(season int, results string) []football.Row {
	var rows []football.Row
	for _, r := range results {
		rows = append(rows, football.Row{Match: football.Match{Season: season, Result: football.Result(string(r))}})
	}
	return rows
}

func TestSeasonAverages(t *testing.T) {
	rows := append(rowsFor(2001, "HHDA"), rowsFor(2000, "HAD")...)

	avgs, err := SeasonAverages(rows)
	require.NoError(t, err)
	require.Len(t, avgs, 2)

	assert.Equal(t, 2000, avgs[0].Season)
	assert.Equal(t, 3, avgs[0].Matches)
	assert.InDelta(t, 1.0/3, avgs[0].HomeWin, 1e-9)
	assert.InDelta(t, 0, avgs[0].Advantage(), 1e-9)

	s := avgs[1]
	assert.Equal(t, 2001, s.Season)
	assert.Equal(t, 4, s.Matches)
	assert.InDelta(t, 0.5, s.HomeWin, 1e-9)
	assert.InDelta(t, 0.25, s.Draw, 1e-9)
	assert.InDelta(t, 0.25, s.HomeLoss, 1e-9)
	assert.Equal(t, 2, s.HomeWins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.HomeLosses)
	assert.InDelta(t, 1, s.HomeWin+s.Draw+s.HomeLoss, 1e-9)

	// (3*0 + 4*0.25) / 7
	assert.InDelta(t, 1.0/7, OverallAdvantage(avgs), 1e-9)
}

func TestSeasonAveragesEmpty(t *testing.T) {
	avgs, err := SeasonAverages(nil)
	require.NoError(t, err)
	assert.Empty(t, avgs)
	assert.Equal(t, 0.0, OverallAdvantage(avgs))

	var buf bytes.Buffer
	assert.Error(t, WriteSeasonAverages(&buf, avgs))
}

func TestWriteSeasonAverages(t *testing.T) {
	avgs, err := SeasonAverages(rowsFor(1995, "HD"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSeasonAverages(&buf, avgs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "season,matches,home_win,draw,home_loss,home_wins,draws,home_losses", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1995,2,0.5"), lines[1])
}
