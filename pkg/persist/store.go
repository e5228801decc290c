// Package persist keeps cleaned matches and scoring runs in a local SQLite database so that
// runs with different settings can be compared later.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/formscore/internal/logger"
	"github.com/richard-senior/formscore/pkg/football"
	"github.com/richard-senior/formscore/pkg/scoring"
)

// Store is a handle on the formscore database
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and makes sure every table exists.
// path may be ":memory:".
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// each connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	for _, obj := range []Persistable{&MatchRecord{}, &Run{}, &ScoreRecord{}} {
		if err := s.CreateTable(ctx, obj); err != nil {
			db.Close()
			return nil, err
		}
	}
	logger.Debug("Database initialised", path)
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

/////////////////////////////////////////////////////////////////////////
////// Records
/////////////////////////////////////////////////////////////////////////

// MatchRecord is one row of the cleaned results
type MatchRecord struct {
	Idx         int    `column:"idx" dbtype:"INTEGER NOT NULL" primary:"true"`
	Date        string `column:"date" dbtype:"TEXT NOT NULL"`
	Season      int    `column:"season" dbtype:"INTEGER NOT NULL" index:"true"`
	Tier        int    `column:"tier" dbtype:"INTEGER NOT NULL"`
	Home        string `column:"home" dbtype:"TEXT NOT NULL" index:"true"`
	Visitor     string `column:"visitor" dbtype:"TEXT NOT NULL" index:"true"`
	Result      string `column:"result" dbtype:"TEXT NOT NULL"`
	HomeHistory string `column:"home_history" dbtype:"TEXT NOT NULL"`
	HomePoints  int    `column:"home_points" dbtype:"INTEGER NOT NULL"`
	AwayHistory string `column:"away_history" dbtype:"TEXT NOT NULL"`
	AwayPoints  int    `column:"away_points" dbtype:"INTEGER NOT NULL"`
}

func (m *MatchRecord) TableName() string { return "matches" }
func (m *MatchRecord) PrimaryKey() map[string]any {
	return map[string]any{"idx": m.Idx}
}

// Row converts the record back into a football row
func (m *MatchRecord) Row() football.Row {
	return football.Row{
		Match: football.Match{
			Date: m.Date, Season: m.Season, Tier: m.Tier,
			Home: m.Home, Visitor: m.Visitor, Result: football.Result(m.Result),
		},
		HomeHistory: m.HomeHistory,
		HomePoints:  m.HomePoints,
		AwayHistory: m.AwayHistory,
		AwayPoints:  m.AwayPoints,
	}
}

// Run describes one scoring of the predictors
type Run struct {
	ID          string `column:"id" dbtype:"TEXT NOT NULL" primary:"true"`
	Created     string `column:"created" dbtype:"TEXT NOT NULL" index:"true"`
	Source      string `column:"source" dbtype:"TEXT NOT NULL"`
	TrainBefore int    `column:"train_before" dbtype:"INTEGER NOT NULL"`
	MaxHistory  int    `column:"max_history" dbtype:"INTEGER NOT NULL"`
	TrainRows   int    `column:"train_rows" dbtype:"INTEGER NOT NULL"`
	TestRows    int    `column:"test_rows" dbtype:"INTEGER NOT NULL"`
}

func (r *Run) TableName() string { return "runs" }
func (r *Run) PrimaryKey() map[string]any {
	return map[string]any{"id": r.ID}
}

// createdLayout is fixed width so that created sorts as text
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NewRun returns a run with a fresh id stamped with the current time
func NewRun(source string, trainBefore, maxHistory int) *Run {
	return &Run{
		ID:          uuid.NewString(),
		Created:     time.Now().UTC().Format(createdLayout),
		Source:      source,
		TrainBefore: trainBefore,
		MaxHistory:  maxHistory,
	}
}

// ScoreRecord is one predictor's scores within a run
type ScoreRecord struct {
	RunID      string  `column:"run_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Type       string  `column:"type" dbtype:"TEXT NOT NULL" primary:"true"`
	Position   int     `column:"position" dbtype:"INTEGER NOT NULL"`
	LogScore   float64 `column:"log_score" dbtype:"REAL"`
	BrierScore float64 `column:"brier_score" dbtype:"REAL"`
	LogNorm    float64 `column:"log_norm" dbtype:"REAL"`
	BrierNorm  float64 `column:"brier_norm" dbtype:"REAL"`
}

func (s *ScoreRecord) TableName() string { return "scores" }
func (s *ScoreRecord) PrimaryKey() map[string]any {
	return map[string]any{"run_id": s.RunID, "type": s.Type}
}

/////////////////////////////////////////////////////////////////////////
////// Domain operations
/////////////////////////////////////////////////////////////////////////

// SaveMatches replaces the stored cleaned results with rows
func (s *Store) SaveMatches(ctx context.Context, rows []football.Row) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM matches"); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	objs := make([]Persistable, len(rows))
	for i, r := range rows {
		objs[i] = &MatchRecord{
			Idx: i, Date: r.Date, Season: r.Season, Tier: r.Tier,
			Home: r.Home, Visitor: r.Visitor, Result: string(r.Result),
			HomeHistory: r.HomeHistory, HomePoints: r.HomePoints,
			AwayHistory: r.AwayHistory, AwayPoints: r.AwayPoints,
		}
	}
	if err := s.BulkSave(ctx, objs); err != nil {
		return err
	}
	logger.Info("Stored matches", len(rows))
	return nil
}

// Matches returns the stored rows of a season in their original order
func (s *Store) Matches(ctx context.Context, season int) ([]football.Row, error) {
	recs, err := FindWhere[MatchRecord](ctx, s, "season = ? ORDER BY idx", season)
	if err != nil {
		return nil, err
	}
	rows := make([]football.Row, len(recs))
	for i, r := range recs {
		rows[i] = r.Row()
	}
	return rows, nil
}

// SaveRun stores the run and its scores in the order given
func (s *Store) SaveRun(ctx context.Context, run *Run, scores []scoring.Score) error {
	objs := []Persistable{run}
	for i, sc := range scores {
		objs = append(objs, &ScoreRecord{
			RunID:      run.ID,
			Type:       sc.Type,
			Position:   i,
			LogScore:   sc.LogScore,
			BrierScore: sc.BrierScore,
			LogNorm:    sc.LogNorm,
			BrierNorm:  sc.BrierNorm,
		})
	}
	if err := s.BulkSave(ctx, objs); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// Runs returns every stored run, newest first
func (s *Store) Runs(ctx context.Context) ([]*Run, error) {
	return FindWhere[Run](ctx, s, "1 = 1 ORDER BY created DESC")
}

// Scores returns the scores of a run in the order they were saved
func (s *Store) Scores(ctx context.Context, runID string) ([]scoring.Score, error) {
	recs, err := FindWhere[ScoreRecord](ctx, s, "run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, err
	}
	out := make([]scoring.Score, len(recs))
	for i, r := range recs {
		out[i] = scoring.Score{
			Type:       r.Type,
			LogScore:   r.LogScore,
			BrierScore: r.BrierScore,
			LogNorm:    r.LogNorm,
			BrierNorm:  r.BrierNorm,
		}
	}
	return out, nil
}
