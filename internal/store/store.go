// Package store keeps completed annealing runs in a SQLite database so the
// CLI can list and reload them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"gonum.org/v1/gonum/stat"

	"github.com/n0madic/go-ising-anneal/anneal"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("store: run not found")

// RunRecord describes one stored run. ID, CreatedAt and the summary fields
// are filled in by Save.
type RunRecord struct {
	ID           string    `json:"id" yaml:"id"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	Problem      string    `json:"problem" yaml:"problem"`
	NumVariables int       `json:"num_variables" yaml:"num_variables"`
	NumSamples   int       `json:"num_samples" yaml:"num_samples"`
	NumSweeps    int       `json:"num_sweeps" yaml:"num_sweeps"`
	Seed         int64     `json:"seed" yaml:"seed"`
	Schedule     string    `json:"schedule" yaml:"schedule"`
	MinEnergy    float64   `json:"min_energy" yaml:"min_energy"`
	MeanEnergy   float64   `json:"mean_energy" yaml:"mean_energy"`
	Accepted     int64     `json:"accepted" yaml:"accepted"`
	Rejected     int64     `json:"rejected" yaml:"rejected"`
}

// Store is a SQLite-backed run store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			problem TEXT,
			num_variables INTEGER NOT NULL,
			num_samples INTEGER NOT NULL,
			num_sweeps INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			schedule TEXT,
			min_energy REAL,
			mean_energy REAL,
			accepted INTEGER,
			rejected INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			energy REAL NOT NULL,
			spins TEXT NOT NULL,
			PRIMARY KEY (run_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores rec and the samples of res in one transaction and returns the
// new run id. Intermediate states are not persisted.
func (s *Store) Save(ctx context.Context, rec RunRecord, res *anneal.Result) (string, error) {
	if res == nil || res.NumSamples() == 0 {
		return "", errors.New("store: empty result")
	}

	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.NumVariables = res.NumVariables
	rec.NumSamples = res.NumSamples()
	_, rec.MinEnergy = res.Lowest()
	rec.MeanEnergy = stat.Mean(res.Energies, nil)
	rec.Accepted = int64(res.Accepted)
	rec.Rejected = int64(res.Rejected)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, problem, num_variables, num_samples, num_sweeps,
			seed, schedule, min_energy, mean_energy, accepted, rejected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), rec.Problem,
		rec.NumVariables, rec.NumSamples, rec.NumSweeps, rec.Seed, rec.Schedule,
		rec.MinEnergy, rec.MeanEnergy, rec.Accepted, rec.Rejected,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, idx, energy, spins) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, spins := range res.Samples {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, res.Energies[i], encodeSpins(spins)); err != nil {
			return "", fmt.Errorf("inserting sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return rec.ID, nil
}

// List returns up to limit runs, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, created_at, problem, num_variables, num_samples, num_sweeps,
		seed, schedule, min_energy, mean_energy, accepted, rejected
		FROM runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// Get loads a run and rebuilds its samples and energies.
func (s *Store) Get(ctx context.Context, id string) (RunRecord, *anneal.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, problem, num_variables, num_samples, num_sweeps,
			seed, schedule, min_energy, mean_energy, accepted, rejected
		 FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT energy, spins FROM samples WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("loading samples: %w", err)
	}
	defer rows.Close()

	res := &anneal.Result{
		NumVariables: rec.NumVariables,
		Accepted:     uint64(rec.Accepted),
		Rejected:     uint64(rec.Rejected),
	}
	for rows.Next() {
		var (
			energy  float64
			encoded string
		)
		if err := rows.Scan(&energy, &encoded); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scanning sample: %w", err)
		}
		spins, err := decodeSpins(encoded, rec.NumVariables)
		if err != nil {
			return RunRecord{}, nil, err
		}
		res.Samples = append(res.Samples, spins)
		res.Energies = append(res.Energies, energy)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, nil, err
	}
	if len(res.Samples) != rec.NumSamples {
		return RunRecord{}, nil, fmt.Errorf("run %s has %d stored samples, want %d", id, len(res.Samples), rec.NumSamples)
	}
	return rec, res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var (
		rec     RunRecord
		created string
		problem sql.NullString
		sched   sql.NullString
	)
	err := sc.Scan(&rec.ID, &created, &problem, &rec.NumVariables, &rec.NumSamples,
		&rec.NumSweeps, &rec.Seed, &sched, &rec.MinEnergy, &rec.MeanEnergy,
		&rec.Accepted, &rec.Rejected)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("scanning run: %w", err)
	}
	rec.Problem = problem.String
	rec.Schedule = sched.String
	rec.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	return rec, nil
}

// encodeSpins writes spins as a string of '+' and '-'.
func encodeSpins(spins []int8) string {
	var b strings.Builder
	b.Grow(len(spins))
	for _, s := range spins {
		if s > 0 {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func decodeSpins(encoded string, n int) ([]int8, error) {
	if len(encoded) != n {
		return nil, fmt.Errorf("stored sample has %d spins, want %d", len(encoded), n)
	}
	spins := make([]int8, n)
	for i := 0; i < n; i++ {
		switch encoded[i] {
		case '+':
			spins[i] = 1
		case '-':
			spins[i] = -1
		default:
			return nil, fmt.Errorf("invalid spin byte %q at %d", encoded[i], i)
		}
	}
	return spins, nil
}
