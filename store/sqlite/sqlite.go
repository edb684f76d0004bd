/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements payroll.PayslipStore and payperiod.PeriodStore, plus
  save/restore for the advance ledger, using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

STORAGE LAYOUT:
  Hot query columns (employee, period, status, net) are first-class;
  the full document rides along as a JSON blob. Payslips and periods are
  read whole by the engine, so the blob is the source of truth and the
  columns exist for listing and filtering.

KEY TABLES:
  payslips:     One row per employee-period, JSON document + status
  pay_periods:  One row per period, JSON document + status
  advances:     The advance ledger state (advances + applied periods)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := payroll.NewEngine(payroll.EngineOptions{Store: store, ...})

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/engine.go: PayslipStore consumer
  - payperiod/period.go: PeriodStore consumer
  - payroll/providers/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-engine/advance"
	"github.com/warp/payroll-engine/payperiod"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements the payroll storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Payslips (one row per employee-period)
	CREATE TABLE IF NOT EXISTS payslips (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		reference TEXT NOT NULL,
		status TEXT NOT NULL,
		gross TEXT NOT NULL DEFAULT '0',
		net TEXT NOT NULL DEFAULT '0',
		document_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_payslips_period
		ON payslips(year, month);
	CREATE INDEX IF NOT EXISTS idx_payslips_status
		ON payslips(status);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payslips_reference
		ON payslips(reference);

	-- Pay periods (one row per month)
	CREATE TABLE IF NOT EXISTS pay_periods (
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		status TEXT NOT NULL,
		document_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_pay_periods_status
		ON pay_periods(status);

	-- Advance ledger state (single-row snapshot)
	CREATE TABLE IF NOT EXISTS advance_ledger (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		state_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYSLIP STORE (payroll.PayslipStore interface)
// =============================================================================

// Get returns the payslip for an employee-period.
func (s *Store) Get(ctx context.Context, id payroll.EmployeeID, period payroll.PeriodKey) (*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document_json FROM payslips WHERE employee_id = ? AND year = ? AND month = ?",
		string(id), period.Year, period.Month,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, payroll.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payslip: %w", err)
	}

	var slip payroll.Payslip
	if err := json.Unmarshal([]byte(doc), &slip); err != nil {
		return nil, fmt.Errorf("failed to decode payslip document: %w", err)
	}
	return &slip, nil
}

// Put upserts a payslip.
func (s *Store) Put(ctx context.Context, slip *payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(slip)
	if err != nil {
		return fmt.Errorf("failed to encode payslip document: %w", err)
	}

	query := `
		INSERT INTO payslips (employee_id, year, month, reference, status, gross, net, document_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year, month) DO UPDATE SET
			reference = excluded.reference,
			status = excluded.status,
			gross = excluded.gross,
			net = excluded.net,
			document_json = excluded.document_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		string(slip.EmployeeID), slip.Period.Year, slip.Period.Month,
		slip.Reference, string(slip.Status),
		slip.Gross.StringRaw(), slip.Net.StringRaw(),
		string(doc),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save payslip: %w", err)
	}
	return nil
}

// ListByPeriod returns every payslip in a period, oldest row first.
func (s *Store) ListByPeriod(ctx context.Context, period payroll.PeriodKey) ([]*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT document_json FROM payslips WHERE year = ? AND month = ? ORDER BY employee_id",
		period.Year, period.Month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payslips: %w", err)
	}
	defer rows.Close()

	var slips []*payroll.Payslip
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var slip payroll.Payslip
		if err := json.Unmarshal([]byte(doc), &slip); err != nil {
			return nil, fmt.Errorf("failed to decode payslip document: %w", err)
		}
		slips = append(slips, &slip)
	}
	return slips, rows.Err()
}

// =============================================================================
// PERIOD STORE (payperiod.PeriodStore interface)
// =============================================================================

// GetPeriod returns one pay period.
func (s *Store) GetPeriod(ctx context.Context, period payroll.PeriodKey) (*payperiod.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document_json FROM pay_periods WHERE year = ? AND month = ?",
		period.Year, period.Month,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, payroll.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pay period: %w", err)
	}

	var p payperiod.PayPeriod
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to decode pay period document: %w", err)
	}
	return &p, nil
}

// PutPeriod upserts a pay period.
func (s *Store) PutPeriod(ctx context.Context, p *payperiod.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pay period document: %w", err)
	}

	query := `
		INSERT INTO pay_periods (year, month, status, document_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(year, month) DO UPDATE SET
			status = excluded.status,
			document_json = excluded.document_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		p.Period.Year, p.Period.Month, string(p.Status),
		string(doc),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save pay period: %w", err)
	}
	return nil
}

// ListPeriods returns all pay periods, newest first.
func (s *Store) ListPeriods(ctx context.Context) ([]*payperiod.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT document_json FROM pay_periods ORDER BY year DESC, month DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pay periods: %w", err)
	}
	defer rows.Close()

	var periods []*payperiod.PayPeriod
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p payperiod.PayPeriod
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("failed to decode pay period document: %w", err)
		}
		periods = append(periods, &p)
	}
	return periods, rows.Err()
}

// PeriodStoreAdapter exposes the period methods under the
// payperiod.PeriodStore method set.
type PeriodStoreAdapter struct{ S *Store }

func (a PeriodStoreAdapter) Get(ctx context.Context, period payroll.PeriodKey) (*payperiod.PayPeriod, error) {
	return a.S.GetPeriod(ctx, period)
}

func (a PeriodStoreAdapter) Put(ctx context.Context, p *payperiod.PayPeriod) error {
	return a.S.PutPeriod(ctx, p)
}

func (a PeriodStoreAdapter) List(ctx context.Context) ([]*payperiod.PayPeriod, error) {
	return a.S.ListPeriods(ctx)
}

// =============================================================================
// ADVANCE LEDGER PERSISTENCE
// =============================================================================

// SaveAdvanceLedger snapshots the full ledger state.
func (s *Store) SaveAdvanceLedger(ctx context.Context, st advance.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode advance ledger: %w", err)
	}

	query := `
		INSERT INTO advance_ledger (id, state_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, string(doc), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save advance ledger: %w", err)
	}
	return nil
}

// LoadAdvanceLedger restores the last saved ledger state. Returns a zero
// state when none was ever saved.
func (s *Store) LoadAdvanceLedger(ctx context.Context) (advance.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT state_json FROM advance_ledger WHERE id = 1").Scan(&doc)
	if err == sql.ErrNoRows {
		return advance.State{}, nil
	}
	if err != nil {
		return advance.State{}, fmt.Errorf("failed to query advance ledger: %w", err)
	}

	var st advance.State
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		return advance.State{}, fmt.Errorf("failed to decode advance ledger: %w", err)
	}
	return st, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payslips", "pay_periods", "advance_ledger"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Interface conformance
var (
	_ payroll.PayslipStore  = (*Store)(nil)
	_ payperiod.PeriodStore = PeriodStoreAdapter{}
)
