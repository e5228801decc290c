package datasource

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/pkg/football"
	"github.com/richard-senior/formscore/pkg/transport"
)

// Datasource fetches the results and odds CSVs, keeping a copy of each on disk so later runs
// work from the same snapshot
type Datasource struct {
	CachePath string
	Force     bool

	getCSV  func(url string) ([]byte, error)
	getHtml func(url string) ([]byte, error)
}

// NewDatasource returns a datasource caching under cachePath. force re-downloads every file.
func NewDatasource(cachePath string, force bool) *Datasource {
	return &Datasource{
		CachePath: cachePath,
		Force:     force,
		getCSV:    transport.GetCSV,
		getHtml:   transport.GetHtml,
	}
}

/////////////////////////////////////////////////////////////////////////
////// Caching
/////////////////////////////////////////////////////////////////////////

// Fetch returns the cached copy of name, downloading it from url when missing or forced
func (d *Datasource) Fetch(url string, name string) ([]byte, error) {
	if err := os.MkdirAll(d.CachePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	cacheFilename := filepath.Join(d.CachePath, name)

	if !d.Force {
		if data, err := os.ReadFile(cacheFilename); err == nil {
			logger.Debug("Returning data from cached file", cacheFilename)
			return data, nil
		}
	}

	logger.Info("Fetching", url)
	data, err := d.getCSV(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from external source: %w", err)
	}
	if err := os.WriteFile(cacheFilename, data, 0644); err != nil {
		logger.Warn("Failed to write cache file", cacheFilename, err)
	} else {
		logger.Info("Cached data to", cacheFilename)
	}
	return data, nil
}

// Results returns every match in the historical results file
func (d *Datasource) Results(url string) ([]football.Match, error) {
	data, err := d.Fetch(url, "england.csv")
	if err != nil {
		return nil, err
	}
	matches, err := ParseResults(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing results: %w", err)
	}
	logger.Info("Loaded matches", len(matches))
	return matches, nil
}

// Odds returns the 1X2 odds for the season identified by code (such as "2021")
func (d *Datasource) Odds(url string, code string) ([]OddsRow, error) {
	data, err := d.Fetch(url, fmt.Sprintf("odds-%s.csv", code))
	if err != nil {
		return nil, err
	}
	rows, err := ParseOdds(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing odds: %w", err)
	}
	logger.Info("Loaded odds rows", len(rows))
	return rows, nil
}

// OddsSeasons lists the season codes for which football-data.co.uk publishes a Premier League CSV
func (d *Datasource) OddsSeasons(indexURL string) ([]string, error) {
	page, err := d.getHtml(indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season index: %w", err)
	}
	return ParseSeasonIndex(bytes.NewReader(page))
}
