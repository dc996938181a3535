package data

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// LoadBars reads a full OHLCV series for one symbol from a CSV or Parquet
// file using DuckDB. The file must expose time, open, high, low, close, and
// volume columns; rows come back ordered by time.
func LoadBars(path string, symbol string) ([]types.Bar, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataLoadFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = fmt.Sprintf("read_parquet('%s')", path)
	case ".csv":
		reader = fmt.Sprintf("read_csv_auto('%s')", path)
	default:
		return nil, errors.Newf(errors.ErrCodeDataLoadFailed, "unsupported data file type: %s", path)
	}

	query := fmt.Sprintf(`
		SELECT time, open, high, low, close, volume
		FROM %s
		ORDER BY time ASC
	`, reader)

	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataLoadFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar

		var barTime time.Time

		if err := rows.Scan(&barTime, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataLoadFailed, "failed to scan bar row", err)
		}

		bar.Time = barTime
		bar.Symbol = symbol
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataLoadFailed, "failed to read bar rows", err)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoBarData, "no bars found in %s", path)
	}

	return bars, nil
}
