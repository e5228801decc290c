package datasource

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var premierLeagueLink = regexp.MustCompile(`mmz4281/(\d{4})/E0\.csv$`)

// ParseSeasonIndex finds the Premier League CSV links on the football-data.co.uk England page
// and returns their season codes, newest first
func ParseSeasonIndex(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse season index: %w", err)
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if m := premierLeagueLink.FindStringSubmatch(strings.TrimSpace(href)); m != nil {
			seen[m[1]] = true
		}
	})

	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	// codes are two two-digit years, so order by the first year across the century
	sort.Slice(codes, func(i, j int) bool {
		a, _ := SeasonFromCode(codes[i])
		b, _ := SeasonFromCode(codes[j])
		return a > b
	})
	return codes, nil
}

// SeasonCode converts the first year of a season (2020) into the football-data code ("2021")
func SeasonCode(firstYear int) string {
	return fmt.Sprintf("%02d%02d", firstYear%100, (firstYear+1)%100)
}

// SeasonFromCode converts a football-data code ("2021", "9900") to the season's first year
func SeasonFromCode(code string) (int, error) {
	if len(code) != 4 {
		return 0, fmt.Errorf("invalid season code %q", code)
	}
	first, err := strconv.Atoi(code[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid season code %q: %w", code, err)
	}
	second, err := strconv.Atoi(code[2:])
	if err != nil {
		return 0, fmt.Errorf("invalid season code %q: %w", code, err)
	}
	if (first+1)%100 != second {
		return 0, fmt.Errorf("season code %q does not span consecutive years", code)
	}
	// football-data.co.uk starts in 1993/94
	if first >= 93 {
		return 1900 + first, nil
	}
	return 2000 + first, nil
}

// ParseSeason accepts 2020/2021, 2020-2021, 2020/21, 2020-21, a bare first year or a
// football-data code and returns the season's first year. Four digits between 1850 and 2100
// are read as a year, anything else as a code.
func ParseSeason(season string) (int, error) {
	s := strings.TrimSpace(season)
	switch {
	case len(s) == 9 && (s[4] == '/' || s[4] == '-'):
		first, err := strconv.Atoi(s[:4])
		if err != nil {
			return 0, fmt.Errorf("invalid season format: %s", s)
		}
		second, err := strconv.Atoi(s[5:])
		if err != nil || second != first+1 {
			return 0, fmt.Errorf("invalid season format: %s", s)
		}
		return first, nil
	case len(s) == 7 && (s[4] == '/' || s[4] == '-'):
		first, err := strconv.Atoi(s[:4])
		if err != nil {
			return 0, fmt.Errorf("invalid season format: %s", s)
		}
		if SeasonCode(first)[2:] != s[5:] {
			return 0, fmt.Errorf("invalid season format: %s", s)
		}
		return first, nil
	case len(s) == 4:
		if n, err := strconv.Atoi(s); err == nil && n >= 1850 && n <= 2100 {
			return n, nil
		}
		return SeasonFromCode(s)
	}
	return 0, fmt.Errorf("invalid season format: %s", s)
}
