package datasource

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richard-senior/formscore/pkg/football"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsCSV = "\ufeffDate,Season,home,visitor,FT,hgoal,vgoal,division,tier,totgoal,goaldif,result\n" +
	"2000-08-19,2000,Arsenal,Chelsea,2-1,2,1,1,1,3,1,H\n" +
	"2000-08-19,2000,Leeds,Everton,0-0,0,0,1,1,0,0,D\n" +
	"2000-08-26,2000,Chelsea,Leeds,0-1,0,1,1,1,1,-1,A\n" +
	"2000-08-26,2000,Everton,Arsenal,1-3,1,3,1,1,4,-2,A\n"

func stubbed(t *testing.T, body string) (*Datasource, *int) {
	calls := 0
	d := &Datasource{
		CachePath: t.TempDir(),
		getCSV: func(url string) ([]byte, error) {
			calls++
			return []byte(body), nil
		},
		getHtml: func(url string) ([]byte, error) {
			return []byte(body), nil
		},
	}
	return d, &calls
}

func TestFetchCachesDownloads(t *testing.T) {
	d, calls := stubbed(t, resultsCSV)

	first, err := d.Fetch("http://example.invalid/england.csv", "england.csv")
	require.NoError(t, err)
	second, err := d.Fetch("http://example.invalid/england.csv", "england.csv")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, *calls)
	assert.FileExists(t, filepath.Join(d.CachePath, "england.csv"))

	d.Force = true
	_, err = d.Fetch("http://example.invalid/england.csv", "england.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestFetchError(t *testing.T) {
	d := &Datasource{
		CachePath: t.TempDir(),
		getCSV:    func(string) ([]byte, error) { return nil, errors.New("offline") },
	}
	_, err := d.Fetch("http://example.invalid/x.csv", "x.csv")
	assert.ErrorContains(t, err, "offline")
}

func TestResults(t *testing.T) {
	d, _ := stubbed(t, resultsCSV)
	matches, err := d.Results("http://example.invalid/england.csv")
	require.NoError(t, err)
	require.Len(t, matches, 4)
	assert.Equal(t, football.Match{
		Date: "2000-08-19", Season: 2000, Tier: 1, Home: "Arsenal", Visitor: "Chelsea", Result: football.HomeWin,
	}, matches[0])
	assert.Equal(t, football.HomeLoss, matches[3].Result)
}

func TestParseResultsErrors(t *testing.T) {
	_, err := ParseResults(strings.NewReader("Date,Season,home\n2000-01-01,2000,A\n"))
	assert.ErrorContains(t, err, "missing column")

	bad := "Date,Season,tier,home,visitor,result\n2000-01-01,2000,1,A,B,X\n"
	_, err = ParseResults(strings.NewReader(bad))
	assert.ErrorContains(t, err, "row 2")
}

func TestCleanRoundTrip(t *testing.T) {
	matches, err := ParseResults(strings.NewReader(resultsCSV))
	require.NoError(t, err)
	rows, err := football.BuildHistory(matches)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "england_clean.csv")
	require.NoError(t, SaveClean(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), ",Date,Season,tier,home,visitor,result,home_history"))

	loaded, err := LoadClean(path)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
	assert.Equal(t, "", loaded[0].HomeHistory)
	assert.Equal(t, "L", loaded[2].HomeHistory)
	assert.Equal(t, "W", loaded[3].AwayHistory)
	assert.Equal(t, 3, loaded[3].AwayPoints)
}

const oddsCSV = "Div,Date,Time,HomeTeam,AwayTeam,FTHG,FTAG,FTR,B365H,B365D,B365A,BWH,BWD,BWA,AvgH,AvgD,AvgA\n" +
	"E0,13/08/2021,20:00,Brentford,Arsenal,2,0,H,4,3.4,2,4.2,3.5,1.9,4.1,3.45,1.95\n" +
	"E0,14/08/2021,12:30,Man United,Leeds,5,1,H,1.53,4.5,6,1.55,4.4,5.75,,,\n" +
	"E0,14/08/2021,15:00,Burnley,Brighton,1,2,A,,,,,,,,,\n" +
	",,,,,,,,,,,,,,,,\n"

func TestParseOdds(t *testing.T) {
	rows, err := ParseOdds(strings.NewReader(oddsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Brentford", rows[0].HomeTeam)
	assert.Equal(t, 4.1, rows[0].HomeOdds)
	assert.Equal(t, 3.45, rows[0].DrawOdds)
	assert.Equal(t, 1.95, rows[0].AwayOdds)

	// no market average so the two bookmakers are averaged
	assert.InDelta(t, 1.54, rows[1].HomeOdds, 1e-9)
	assert.InDelta(t, 4.45, rows[1].DrawOdds, 1e-9)
	assert.InDelta(t, 5.88, rows[1].AwayOdds, 1e-9)
}

func TestImpliedAndFair(t *testing.T) {
	o := OddsRow{HomeOdds: 2, DrawOdds: 4, AwayOdds: 4, Result: football.Draw}
	p := o.Implied()
	assert.InDelta(t, 0.5, p.HomeWin, 1e-12)
	assert.InDelta(t, 0.25, p.Draw, 1e-12)
	assert.InDelta(t, 0, o.Overround(), 1e-12)

	o = OddsRow{HomeOdds: 1.9, DrawOdds: 3.5, AwayOdds: 4.2}
	assert.Greater(t, o.Overround(), 0.0)
	assert.InDelta(t, 1, o.Fair().Sum(), 1e-12)
}

func TestOddsCleanRoundTrip(t *testing.T) {
	rows, err := ParseOdds(strings.NewReader(oddsCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOddsClean(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "Date,HomeTeam,AwayTeam,FTR,AvgH,AvgA,AvgD,ProbH,ProbA,ProbD\n"))

	loaded, err := ReadOddsClean(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

const indexHTML = `<html><body>
<a href="mmz4281/2122/E0.csv">Premier League</a>
<a href="mmz4281/2122/E1.csv">Championship</a>
<a href="mmz4281/9900/E0.csv">Premier League</a>
<a href="mmz4281/0001/E0.csv">Premier League</a>
<a href=" mmz4281/2122/E0.csv ">Premier League</a>
<a>no link</a>
</body></html>`

func TestParseSeasonIndex(t *testing.T) {
	codes, err := ParseSeasonIndex(strings.NewReader(indexHTML))
	require.NoError(t, err)
	assert.Equal(t, []string{"2122", "0001", "9900"}, codes)

	d, _ := stubbed(t, indexHTML)
	codes, err = d.OddsSeasons("http://example.invalid/englandm.php")
	require.NoError(t, err)
	assert.Len(t, codes, 3)
}

func TestSeasonCodes(t *testing.T) {
	assert.Equal(t, "2021", SeasonCode(2020))
	assert.Equal(t, "9900", SeasonCode(1999))

	y, err := SeasonFromCode("9900")
	require.NoError(t, err)
	assert.Equal(t, 1999, y)
	y, err = SeasonFromCode("2021")
	require.NoError(t, err)
	assert.Equal(t, 2020, y)
	_, err = SeasonFromCode("2022")
	assert.Error(t, err)

	for in, want := range map[string]int{"2020/2021": 2020, "2020-21": 2020, "2020": 2020, "9900": 1999} {
		got, err := ParseSeason(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err = ParseSeason("2020/2022")
	assert.Error(t, err)
}
