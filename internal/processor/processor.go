package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/richard-senior/formscore/internal/config"
	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/pkg/analysis"
	"github.com/richard-senior/formscore/pkg/datasource"
	"github.com/richard-senior/formscore/pkg/football"
	"github.com/richard-senior/formscore/pkg/graph"
	"github.com/richard-senior/formscore/pkg/persist"
	"github.com/richard-senior/formscore/pkg/scoring"
)

// Output file names, all written under the configured output directory
const (
	CleanFile          = "england_clean.csv"
	OddsFile           = "odds_clean.csv"
	FrameFile          = "score_frame.csv"
	SeasonAveragesFile = "season_averages.csv"
	SummaryChart       = "summary.png"
	AdvantageChart     = "home_advantage.png"
)

// Commands lists the commands Process understands
var Commands = []string{"clean", "odds", "predict", "graph", "advantage", "seasons", "runs", "all"}

// ErrUnknownCommand is returned by Process for a command it does not recognise
var ErrUnknownCommand = errors.New("unknown command")

// Processor runs the formscore commands against one configuration
type Processor struct {
	cfg    *config.FormscoreConfig
	source *datasource.Datasource
	store  *persist.Store
	out    io.Writer
}

// New returns a processor for cfg, opening the database when one is configured. Listings are
// written to out.
func New(ctx context.Context, cfg *config.FormscoreConfig, out io.Writer) (*Processor, error) {
	if err := os.MkdirAll(cfg.OutputPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	p := &Processor{
		cfg:    cfg,
		source: datasource.NewDatasource(cfg.CachePath, cfg.ForceDownload),
		out:    out,
	}
	if cfg.DbPath != "" {
		store, err := persist.Open(ctx, cfg.DbPath)
		if err != nil {
			return nil, err
		}
		p.store = store
	}
	return p, nil
}

// Close releases the database, if any
func (p *Processor) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Process runs the named command
func (p *Processor) Process(ctx context.Context, command string) error {
	logger.Info("Processing command", command)
	var err error
	switch command {
	case "clean":
		_, err = p.Clean(ctx)
	case "odds":
		_, err = p.Odds(ctx)
	case "predict":
		_, err = p.Predict(ctx)
	case "graph":
		err = p.Graph(ctx)
	case "advantage":
		_, err = p.Advantage(ctx)
	case "seasons":
		err = p.Seasons(ctx)
	case "runs":
		err = p.Runs(ctx)
	case "all":
		err = p.All(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Commands
/////////////////////////////////////////////////////////////////////////

// Clean downloads the results, derives each side's form and points and writes the cleaned file
func (p *Processor) Clean(ctx context.Context) ([]football.Row, error) {
	matches, err := p.source.Results(p.cfg.ResultsURL)
	if err != nil {
		return nil, err
	}
	rows, err := football.BuildHistory(matches)
	if err != nil {
		return nil, fmt.Errorf("failed to build history: %w", err)
	}
	path := p.cfg.Output(CleanFile)
	if err := datasource.SaveClean(path, rows); err != nil {
		return nil, err
	}
	logger.Info("Wrote cleaned results", path, len(rows))

	if p.store != nil {
		if err := p.store.SaveMatches(ctx, rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// rows returns the cleaned results, cleaning first when they have not been written yet
func (p *Processor) rows(ctx context.Context) ([]football.Row, error) {
	path := p.cfg.Output(CleanFile)
	if _, err := os.Stat(path); err == nil && !p.cfg.ForceDownload {
		return datasource.LoadClean(path)
	}
	return p.Clean(ctx)
}

// Odds downloads the configured season's bookmaker odds and writes them with implied probabilities
func (p *Processor) Odds(ctx context.Context) ([]datasource.OddsRow, error) {
	rows, err := p.source.Odds(p.cfg.OddsURL(), p.cfg.OddsSeason)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no odds found for season %s", p.cfg.OddsSeason)
	}
	path := p.cfg.Output(OddsFile)
	if err := datasource.SaveOddsClean(path, rows); err != nil {
		return nil, err
	}
	logger.Info("Wrote cleaned odds", path, len(rows))
	return rows, nil
}

// Predict trains every predictor on the early seasons, scores them on the later ones alongside the
// bookmakers and writes the score frame
func (p *Processor) Predict(ctx context.Context) ([]scoring.Score, error) {
	all, err := p.rows(ctx)
	if err != nil {
		return nil, err
	}
	return p.predict(ctx, all)
}

func (p *Processor) predict(ctx context.Context, all []football.Row) ([]scoring.Score, error) {
	rows := football.FilterHistory(all, p.cfg.MaxHistory)
	train, test := football.SplitSeasons(rows, p.cfg.TrainBefore)
	logger.Info("Training rows", len(train), "test rows", len(test))
	if len(train) == 0 || len(test) == 0 {
		return nil, fmt.Errorf("need rows either side of season %d with %d games of history, got %d and %d",
			p.cfg.TrainBefore, p.cfg.MaxHistory, len(train), len(test))
	}

	var scores []scoring.Score
	for _, m := range football.StandardMethods(train, p.cfg.MaxHistory, p.cfg.BothFormMax) {
		s, err := scoring.EvaluateMethod(m, test, p.cfg.LogBase)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}

	oddsScores, err := p.scoreOdds(ctx)
	if err != nil {
		logger.Warn("Skipping bookmaker odds", err)
	}
	scores = append(scores, oddsScores...)

	scoring.NormaliseScores(scores)
	for _, s := range scores {
		logger.Inform(s.Type, s.LogScore, s.BrierScore, s.LogNorm, s.BrierNorm)
	}

	path := p.cfg.Output(FrameFile)
	if err := scoring.SaveFrame(path, scores); err != nil {
		return nil, err
	}
	logger.Info("Wrote score frame", path)

	if p.store != nil {
		run := persist.NewRun(p.cfg.ResultsURL, p.cfg.TrainBefore, p.cfg.MaxHistory)
		run.TrainRows = len(train)
		run.TestRows = len(test)
		if err := p.store.SaveRun(ctx, run, scores); err != nil {
			return nil, err
		}
		logger.Highlight("Stored run", run.ID)
	}
	return scores, nil
}

// scoreOdds scores the raw and overround-free bookmaker probabilities against the odds file's results
func (p *Processor) scoreOdds(ctx context.Context) ([]scoring.Score, error) {
	rows, err := p.Odds(ctx)
	if err != nil {
		return nil, err
	}
	implied := make([]football.Triple, len(rows))
	fair := make([]football.Triple, len(rows))
	results := make([]football.Result, len(rows))
	for i, o := range rows {
		implied[i] = o.Implied()
		fair[i] = o.Fair()
		results[i] = o.Result
	}
	raw, err := scoring.Evaluate("Odds", implied, results, p.cfg.LogBase)
	if err != nil {
		return nil, err
	}
	normalised, err := scoring.Evaluate("Odds (fair)", fair, results, p.cfg.LogBase)
	if err != nil {
		return nil, err
	}
	return []scoring.Score{raw, normalised}, nil
}

// Graph charts the score frame, scoring first if no frame has been written
func (p *Processor) Graph(ctx context.Context) error {
	scores, err := scoring.LoadFrame(p.cfg.Output(FrameFile))
	if err != nil {
		logger.Info("No score frame yet, predicting first")
		if scores, err = p.Predict(ctx); err != nil {
			return err
		}
	}
	return graph.Summary(scores, p.cfg.Output(SummaryChart), p.chartSize())
}

// Advantage writes and charts the share of each result per season
func (p *Processor) Advantage(ctx context.Context) ([]analysis.SeasonAverage, error) {
	rows, err := p.rows(ctx)
	if err != nil {
		return nil, err
	}
	return p.advantage(rows)
}

func (p *Processor) advantage(rows []football.Row) ([]analysis.SeasonAverage, error) {
	avgs, err := analysis.SeasonAverages(rows)
	if err != nil {
		return nil, err
	}
	if err := analysis.SaveSeasonAverages(p.cfg.Output(SeasonAveragesFile), avgs); err != nil {
		return nil, err
	}
	if err := graph.HomeAdvantage(avgs, p.cfg.Output(AdvantageChart), p.chartSize()); err != nil {
		return nil, err
	}
	logger.Inform("Home advantage over all seasons", analysis.OverallAdvantage(avgs))
	return avgs, nil
}

// Seasons lists the seasons for which bookmaker odds can be downloaded
func (p *Processor) Seasons(ctx context.Context) error {
	codes, err := p.source.OddsSeasons(p.cfg.OddsIndexURL)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tSEASON")
	for _, c := range codes {
		first, err := datasource.SeasonFromCode(c)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%d/%d\n", c, first, first+1)
	}
	return w.Flush()
}

// Runs lists the stored scoring runs with their best method
func (p *Processor) Runs(ctx context.Context) error {
	if p.store == nil {
		return errors.New("no database configured, set db_path or FORMSCORE_DB_PATH")
	}
	runs, err := p.store.Runs(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTRAIN_BEFORE\tMAX_HISTORY\tTEST_ROWS\tBEST")
	for _, r := range runs {
		scores, err := p.store.Scores(ctx, r.ID)
		if err != nil {
			return err
		}
		best := "-"
		if len(scores) > 0 {
			scoring.SortByLogNorm(scores)
			best = scores[0].Type
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", r.ID, r.Created, r.TrainBefore, r.MaxHistory, r.TestRows, best)
	}
	return w.Flush()
}

// All cleans, scores, charts and summarises seasons in one go, downloading the results once
func (p *Processor) All(ctx context.Context) error {
	rows, err := p.Clean(ctx)
	if err != nil {
		return err
	}
	scores, err := p.predict(ctx, rows)
	if err != nil {
		return err
	}
	if err := graph.Summary(scores, p.cfg.Output(SummaryChart), p.chartSize()); err != nil {
		return err
	}
	_, err = p.advantage(rows)
	return err
}

func (p *Processor) chartSize() graph.Size {
	return graph.Size{Width: p.cfg.ChartWidthCm, Height: p.cfg.ChartHeightCm}
}
