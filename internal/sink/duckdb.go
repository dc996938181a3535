// Package sink persists run results. The DuckDB sink stores the equity
// curve, the closed-trade ledger, and live holdings snapshots, and can export
// any of them to Parquet for analysis elsewhere.
package sink

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// DuckDBSink writes run results into a DuckDB database. Pass ":memory:" as
// the path for an in-memory database that only lives until export.
type DuckDBSink struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewDuckDBSink opens the database and creates the result tables.
func NewDuckDBSink(path string, log *logger.Logger) (*DuckDBSink, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSinkInitFailed, "failed to open results database", err)
	}

	s := &DuckDBSink{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

func (s *DuckDBSink) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS equity_curve (
			time TIMESTAMP,
			cash DOUBLE,
			total DOUBLE,
			returns DOUBLE,
			equity_curve DOUBLE,
			drawdown DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			direction TEXT,
			open_market_price DOUBLE,
			open_price DOUBLE,
			open_date TIMESTAMP,
			open_fees DOUBLE,
			close_market_price DOUBLE,
			close_price DOUBLE,
			close_date TIMESTAMP,
			close_fees DOUBLE,
			trade_return DOUBLE
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			time TIMESTAMP,
			symbol TEXT,
			cash DOUBLE,
			total DOUBLE,
			fees DOUBLE,
			is_open BOOLEAN,
			direction TEXT,
			current_value DOUBLE,
			exposition DOUBLE
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeSinkInitFailed, "failed to create result tables", err)
		}
	}

	return nil
}

// WriteEquityCurve stores the computed equity curve.
func (s *DuckDBSink) WriteEquityCurve(curve []types.EquityPoint) error {
	if len(curve) == 0 {
		return nil
	}

	insert := s.sq.
		Insert("equity_curve").
		Columns("time", "cash", "total", "returns", "equity_curve", "drawdown")

	for _, point := range curve {
		insert = insert.Values(point.Time, point.Cash, point.Total, point.Returns, point.EquityCurve, point.Drawdown)
	}

	if _, err := insert.RunWith(s.db).Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeSinkWriteFailed, "failed to write equity curve", err)
	}

	return nil
}

// WriteTrades stores the closed-trade ledger.
func (s *DuckDBSink) WriteTrades(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	insert := s.sq.
		Insert("trades").
		Columns(
			"id", "symbol", "direction",
			"open_market_price", "open_price", "open_date", "open_fees",
			"close_market_price", "close_price", "close_date", "close_fees",
			"trade_return",
		)

	for i := range trades {
		trade := &trades[i]
		insert = insert.Values(
			trade.ID, trade.Symbol, string(trade.Direction),
			trade.OpenMarketPrice, trade.OpenPrice, trade.OpenDate, trade.OpenFees,
			trade.CloseMarketPrice, trade.ClosePrice, trade.CloseDate, trade.CloseFees,
			trade.Return(),
		)
	}

	if _, err := insert.RunWith(s.db).Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeSinkWriteFailed, "failed to write trades", err)
	}

	return nil
}

// PublishSnapshot stores one row per symbol for a holdings snapshot. Live
// runs call this after every mark-to-market pass.
func (s *DuckDBSink) PublishSnapshot(snapshot types.HoldingsSnapshot) error {
	insert := s.sq.
		Insert("snapshots").
		Columns("time", "symbol", "cash", "total", "fees", "is_open", "direction", "current_value", "exposition")

	for symbol, holding := range snapshot.Symbols {
		insert = insert.Values(
			snapshot.Time, symbol, snapshot.Cash, snapshot.Total, snapshot.Fees,
			holding.IsOpen, string(holding.Direction), holding.CurrentValue, holding.Exposition,
		)
	}

	if _, err := insert.RunWith(s.db).Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeSinkWriteFailed, "failed to write holdings snapshot", err)
	}

	return nil
}

// Export writes every result table to a Parquet file under dir.
// Squirrel cannot express COPY, hence the raw SQL.
func (s *DuckDBSink) Export(dir string) error {
	for _, table := range []string{"equity_curve", "trades", "snapshots"} {
		path := filepath.Join(dir, table+".parquet")

		if _, err := s.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, path)); err != nil {
			return errors.Wrapf(errors.ErrCodeSinkWriteFailed, err, "failed to export %s", table)
		}

		s.log.Info("exported results", zap.String("table", table), zap.String("path", path))
	}

	return nil
}

// Close closes the underlying database.
func (s *DuckDBSink) Close() error {
	return s.db.Close()
}
