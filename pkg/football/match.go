package football

import (
	"fmt"
	"strings"
)

// Result is the full time result of a match from the home side's point of view
type Result string

const (
	HomeWin  Result = "H"
	Draw     Result = "D"
	HomeLoss Result = "A"
)

// ParseResult accepts H, D or A (any case, surrounding space ignored)
func ParseResult(s string) (Result, error) {
	switch r := Result(strings.ToUpper(strings.TrimSpace(s))); r {
	case HomeWin, Draw, HomeLoss:
		return r, nil
	default:
		return "", fmt.Errorf("invalid result %q, expected H, D or A", s)
	}
}

// Outcome characters used in form strings
const (
	Win  byte = 'W'
	Tie  byte = 'D'
	Loss byte = 'L'
)

var homeOutcome = map[Result]byte{HomeWin: Win, Draw: Tie, HomeLoss: Loss}
var awayOutcome = map[Result]byte{HomeWin: Loss, Draw: Tie, HomeLoss: Win}

var outcomePoints = map[byte]int{Win: 3, Tie: 1, Loss: 0}

// OutcomeFor translates a result into W, D or L for the home side (home=true) or the visitor
func (r Result) OutcomeFor(home bool) byte {
	if home {
		return homeOutcome[r]
	}
	return awayOutcome[r]
}

// OneHot returns the realised outcome as a probability triple
func (r Result) OneHot() Triple {
	switch r {
	case HomeWin:
		return Triple{HomeWin: 1}
	case Draw:
		return Triple{Draw: 1}
	case HomeLoss:
		return Triple{HomeLoss: 1}
	}
	return Triple{}
}

// Match is one row of the historical results dataset
type Match struct {
	Date    string `json:"date"` // yyyy-mm-dd, compares lexically
	Season  int    `json:"season"`
	Tier    int    `json:"tier"`
	Home    string `json:"home"`
	Visitor string `json:"visitor"`
	Result  Result `json:"result"`
}

// Involves reports whether team played in the match
func (m Match) Involves(team string) bool {
	return m.Home == team || m.Visitor == team
}

// OutcomeFor returns W, D or L for the named team, which must have played in the match
func (m Match) OutcomeFor(team string) byte {
	return m.Result.OutcomeFor(m.Home == team)
}

// Row is a match together with the form and points each side brought into it
type Row struct {
	Match
	HomeHistory string `json:"homeHistory"`
	HomePoints  int    `json:"homePoints"`
	AwayHistory string `json:"awayHistory"`
	AwayPoints  int    `json:"awayPoints"`
}

// Triple is a distribution (or a set of relative weights) over home win, draw and home loss
type Triple struct {
	HomeWin  float64 `json:"homeWin"`
	Draw     float64 `json:"draw"`
	HomeLoss float64 `json:"homeLoss"`
}

// Thirds is the uninformed prediction
var Thirds = Triple{HomeWin: 1.0 / 3, Draw: 1.0 / 3, HomeLoss: 1.0 / 3}

func (t Triple) Sum() float64 {
	return t.HomeWin + t.Draw + t.HomeLoss
}

// Get returns the probability given to result r
func (t Triple) Get(r Result) float64 {
	switch r {
	case HomeWin:
		return t.HomeWin
	case Draw:
		return t.Draw
	case HomeLoss:
		return t.HomeLoss
	}
	return 0
}

// Normalised rescales the triple to sum to one, a zero triple is returned unchanged
func (t Triple) Normalised() Triple {
	s := t.Sum()
	if s == 0 {
		return t
	}
	return Triple{HomeWin: t.HomeWin / s, Draw: t.Draw / s, HomeLoss: t.HomeLoss / s}
}

// Flipped swaps the home and away perspectives
func (t Triple) Flipped() Triple {
	return Triple{HomeWin: t.HomeLoss, Draw: t.Draw, HomeLoss: t.HomeWin}
}

func (t Triple) scale(f float64) Triple {
	return Triple{HomeWin: t.HomeWin * f, Draw: t.Draw * f, HomeLoss: t.HomeLoss * f}
}

func (t Triple) add(o Triple) Triple {
	return Triple{HomeWin: t.HomeWin + o.HomeWin, Draw: t.Draw + o.Draw, HomeLoss: t.HomeLoss + o.HomeLoss}
}
