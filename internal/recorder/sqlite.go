package recorder

import (
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"GaugeKeeper/internal/model"
)

// SQLiteRecorder persists gauge history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// WAL mode so dashboards can read while the keeper writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledger_events (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at        INTEGER NOT NULL,
			event_time         INTEGER NOT NULL,
			kind               TEXT NOT NULL,
			account            TEXT NOT NULL,
			caller             TEXT,
			raw_before         TEXT,
			raw_after          TEXT,
			working_before     TEXT,
			working_after      TEXT,
			working_supply     TEXT,
			raw_supply         TEXT,
			voting_power       TEXT,
			total_voting_power TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_account ON ledger_events(account)`,
		`CREATE INDEX IF NOT EXISTS idx_events_time ON ledger_events(event_time)`,

		`CREATE TABLE IF NOT EXISTS sweeps (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at    INTEGER NOT NULL,
			sweep_time     INTEGER NOT NULL,
			scanned        INTEGER,
			kicked         INTEGER,
			decaying       INTEGER,
			failed         INTEGER,
			working_supply TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sweeps_time ON sweeps(sweep_time)`,

		`CREATE TABLE IF NOT EXISTS supply_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at    INTEGER NOT NULL,
			snapshot_time  INTEGER NOT NULL,
			accounts       INTEGER,
			raw_supply     TEXT,
			working_supply TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_supply_time ON supply_snapshots(snapshot_time)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

// RecordEvent stores a ledger mutation. Amounts are decimal TEXT since SQLite
// integers are only 64 bits.
func (r *SQLiteRecorder) RecordEvent(evt *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO ledger_events
		(recorded_at, event_time, kind, account, caller,
		 raw_before, raw_after, working_before, working_after,
		 working_supply, raw_supply, voting_power, total_voting_power)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), int64(evt.Time), string(evt.Kind), evt.Account.String(), evt.Caller.String(),
		evt.RawBefore.Dec(), evt.RawAfter.Dec(), evt.WorkingBefore.Dec(), evt.WorkingAfter.Dec(),
		evt.WorkingSupply.Dec(), evt.RawSupply.Dec(), evt.VotingPower.Dec(), evt.TotalVotingPower.Dec(),
	)
	return err
}

func (r *SQLiteRecorder) RecordSweep(s *SweepReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sweeps
		(recorded_at, sweep_time, scanned, kicked, decaying, failed, working_supply)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), int64(s.Time), s.Scanned, s.Kicked, s.Decaying, s.Failed, s.WorkingSupply,
	)
	return err
}

func (r *SQLiteRecorder) RecordSupply(s *SupplySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO supply_snapshots
		(recorded_at, snapshot_time, accounts, raw_supply, working_supply)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), int64(s.Time), s.Accounts, s.RawSupply, s.WorkingSupply,
	)
	return err
}

// CountEvents returns how many events of kind were recorded for account.
func (r *SQLiteRecorder) CountEvents(account model.Address, kind model.EventKind) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ledger_events WHERE account = ? AND kind = ?`,
		account.String(), string(kind)).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
