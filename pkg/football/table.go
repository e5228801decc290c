package football

import (
	"sort"
)

// KeyFunc extracts the lookup key of a row
type KeyFunc func(Row) string

// HomeKey keys rows on the home side's last n results
func HomeKey(n int) KeyFunc {
	return func(r Row) string { return LastN(r.HomeHistory, n) }
}

// AwayKey keys rows on the visiting side's last n results
func AwayKey(n int) KeyFunc {
	return func(r Row) string { return LastN(r.AwayHistory, n) }
}

// BothKey keys rows on both sides' last n results, home first
func BothKey(n int) KeyFunc {
	return func(r Row) string { return LastN(r.HomeHistory, n) + "|" + LastN(r.AwayHistory, n) }
}

// Entry is the empirical outcome distribution of one key and the number of rows behind it
type Entry struct {
	Triple
	Count int `json:"count"`
}

// Table maps a form key to the outcome frequencies observed for it
type Table struct {
	Entries map[string]Entry `json:"entries"`
}

// accumulator is the running state of one key while a table is built
type accumulator struct {
	sum   Triple
	count int
}

// BuildTable groups rows by key and averages their one-hot outcomes, which gives the
// relative frequency of home win, draw and home loss for each key
func BuildTable(rows []Row, key KeyFunc) *Table {
	acc := make(map[string]*accumulator)
	for _, r := range rows {
		k := key(r)
		a, ok := acc[k]
		if !ok {
			a = &accumulator{}
			acc[k] = a
		}
		a.sum = a.sum.add(r.Result.OneHot())
		a.count++
	}

	t := &Table{Entries: make(map[string]Entry, len(acc))}
	for k, a := range acc {
		t.Entries[k] = Entry{Triple: a.sum.scale(1 / float64(a.count)), Count: a.count}
	}
	return t
}

// Lookup returns the distribution for key
func (t *Table) Lookup(key string) (Triple, bool) {
	e, ok := t.Entries[key]
	return e.Triple, ok
}

// count returns the number of rows behind key, zero when the key was never seen
func (t *Table) count(key string) int {
	if t == nil {
		return 0
	}
	return t.Entries[key].Count
}

// Keys returns the table's keys sorted
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.Entries))
	for k := range t.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeSides builds a table for a team whose venue is unknown. home must be keyed on the home
// side's form and away on the visiting side's form. The away distribution is first turned round
// so it reads from the keyed team's side, then both are averaged with weights equal to how often
// the key was seen at home and away. The result reads as (team win, draw, team loss).
func MergeSides(home, away *Table) *Table {
	merged := &Table{Entries: make(map[string]Entry)}
	keys := make(map[string]bool)
	for k := range home.Entries {
		keys[k] = true
	}
	for k := range away.Entries {
		keys[k] = true
	}

	for k := range keys {
		nh := home.count(k)
		na := away.count(k)
		total := nh + na
		var dist Triple
		if nh > 0 {
			dist = dist.add(home.Entries[k].Triple.scale(float64(nh) / float64(total)))
		}
		if na > 0 {
			dist = dist.add(away.Entries[k].Triple.Flipped().scale(float64(na) / float64(total)))
		}
		merged.Entries[k] = Entry{Triple: dist, Count: total}
	}
	return merged
}

// Climatology is the mean outcome over all rows, ignoring any per-match feature
func Climatology(rows []Row) Triple {
	var sum Triple
	for _, r := range rows {
		sum = sum.add(r.Result.OneHot())
	}
	if len(rows) == 0 {
		return Thirds
	}
	return sum.scale(1 / float64(len(rows)))
}
