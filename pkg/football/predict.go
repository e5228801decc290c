package football

import (
	"fmt"

	"github.com/richard-senior/formscore/internal/logger"
)

// Method is a named way of predicting a match
type Method struct {
	Name    string
	Predict func(Row) Triple
}

// Apply predicts every row
func (m Method) Apply(rows []Row) []Triple {
	ret := make([]Triple, len(rows))
	for i, r := range rows {
		ret[i] = m.Predict(r)
	}
	return ret
}

// TableMethod predicts from a table, falling back to the given distribution for keys that
// never appeared in training
func TableMethod(name string, t *Table, key KeyFunc, fallback Triple) Method {
	misses := 0
	return Method{
		Name: name,
		Predict: func(r Row) Triple {
			if p, ok := t.Lookup(key(r)); ok {
				return p
			}
			misses++
			if misses == 1 {
				logger.Debug("Unseen form key, using climatology for", name, key(r))
			}
			return fallback
		},
	}
}

// FormMethods returns the three single-team form predictors for a window of n results:
// keyed on the home side, keyed on the visitor, and keyed on the home side with a table that
// does not know which venue the form was earned at
func FormMethods(train []Row, n int) []Method {
	clim := Climatology(train)
	home := BuildTable(train, HomeKey(n))
	away := BuildTable(train, AwayKey(n))
	either := MergeSides(home, away)
	return []Method{
		TableMethod(fmt.Sprintf("Home form %d", n), home, HomeKey(n), clim),
		TableMethod(fmt.Sprintf("Away form %d", n), away, AwayKey(n), clim),
		TableMethod(fmt.Sprintf("Either form %d", n), either, HomeKey(n), clim),
	}
}

// BothFormMethod predicts from the combined last n results of both sides
func BothFormMethod(train []Row, n int) Method {
	return TableMethod(fmt.Sprintf("Both form %d", n), BuildTable(train, BothKey(n)), BothKey(n), Climatology(train))
}

// ConstantMethod predicts the same distribution for every match
func ConstantMethod(name string, t Triple) Method {
	return Method{Name: name, Predict: func(Row) Triple { return t }}
}

// HomeAdvantageMethod predicts the training climatology
func HomeAdvantageMethod(train []Row) Method {
	return ConstantMethod("Home advantage", Climatology(train))
}

// WinDrawMethod knows how often matches are drawn but not which side is at home, so the
// home win and home loss probabilities share their mean
func WinDrawMethod(train []Row) Method {
	c := Climatology(train)
	side := (c.HomeWin + c.HomeLoss) / 2
	return ConstantMethod("Win/draw", Triple{HomeWin: side, Draw: c.Draw, HomeLoss: side})
}

// ThirdsMethod always guesses one third each
func ThirdsMethod() Method {
	return ConstantMethod("Thirds", Thirds)
}

// StandardMethods assembles every form and baseline predictor trained on train
func StandardMethods(train []Row, maxHistory, bothMax int) []Method {
	var methods []Method
	for n := 1; n <= maxHistory; n++ {
		methods = append(methods, FormMethods(train, n)...)
	}
	methods = append(methods, HomeAdvantageMethod(train), WinDrawMethod(train), ThirdsMethod())
	for n := 1; n <= bothMax; n++ {
		methods = append(methods, BothFormMethod(train, n))
	}
	return methods
}
