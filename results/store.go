// Package results persists evaluation summaries to MySQL.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ahmedtd/orientnet/toolbox"
)

// Summary is one evaluation run.
type Summary struct {
	WeightsSource string
	DatasetSource string
	Loss          float64
	Report        toolbox.Report
	StartTime     time.Time
	EndTime       time.Time
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store writes summaries into a table with the columns listed in
// insertColumns.
type Store struct {
	db    execer
	close func() error
	table string
}

const insertColumns = "host, program_version, weights_source, dataset_source, total, correct, accuracy, loss, confusion_matrix, start_time, end_time"

// Open connects to the database named by dsn, e.g.
// user:password@tcp(localhost:3306)/orientnet.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if !validTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("while parsing DSN: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("while configuring connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("while connecting to the database: %w", err)
	}

	return &Store{db: db, close: db.Close, table: table}, nil
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// SaveEvaluation inserts one row for sum.
func (s *Store) SaveEvaluation(ctx context.Context, sum Summary) error {
	matrixJSON, err := json.Marshal(sum.Report.Counts)
	if err != nil {
		return fmt.Errorf("while marshaling confusion matrix: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = os.Getenv("HOSTNAME")
	}

	// NULL when nothing was recorded.
	var accuracy sql.NullFloat64
	if sum.Report.HasData {
		accuracy = sql.NullFloat64{Float64: sum.Report.Accuracy, Valid: true}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, insertColumns)
	_, err = s.db.ExecContext(ctx, query,
		hostname,
		runtime.Version(),
		sum.WeightsSource,
		sum.DatasetSource,
		sum.Report.Total,
		sum.Report.Correct,
		accuracy,
		sum.Loss,
		string(matrixJSON),
		sum.StartTime.UTC(),
		sum.EndTime.UTC(),
	)
	if err != nil {
		return fmt.Errorf("while inserting into %s: %w", s.table, err)
	}
	return nil
}

func validTableName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
