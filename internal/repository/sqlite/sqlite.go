// Package sqlite persists cost points and detection findings in a local
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/domain/cost"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, err
	}
	repo := &DB{sql: d}
	if err := repo.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return repo, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// Ping verifies the database connection, for readiness probes.
func (d *DB) Ping(ctx context.Context) error { return d.sql.PingContext(ctx) }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
CREATE TABLE IF NOT EXISTS cost_points (
    provider TEXT NOT NULL,
    date INTEGER NOT NULL,
    cost REAL NOT NULL,
    PRIMARY KEY (provider, date)
);

CREATE TABLE IF NOT EXISTS anomalies (
    id TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    date INTEGER NOT NULL,
    observed_cost REAL NOT NULL,
    expected_cost REAL,
    method TEXT NOT NULL,
    severity TEXT NOT NULL,
    deviation_percent REAL,
    z_score REAL NOT NULL DEFAULT 0,
    day_of_week INTEGER NOT NULL DEFAULT 0,
    outlier_score REAL NOT NULL DEFAULT 0,
    trend_direction TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_anomalies_provider ON anomalies (provider, date);
`)
	return err
}

// UpsertPoints inserts or replaces daily cost points for a provider.
func (d *DB) UpsertPoints(ctx context.Context, provider string, points []cost.Point) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "cost_points", time.Since(start)) }()

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO cost_points (provider, date, cost) VALUES (?, ?, ?)
ON CONFLICT(provider, date) DO UPDATE SET cost=excluded.cost
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(provider, p.Date.Unix(), p.Cost); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSeries retrieves the full stored series for a provider, ordered by
// date.
func (d *DB) GetSeries(ctx context.Context, provider string) (cost.Series, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "cost_points", time.Since(start)) }()

	rows, err := d.sql.QueryContext(ctx,
		`SELECT date, cost FROM cost_points WHERE provider=? ORDER BY date`, provider)
	if err != nil {
		return cost.Series{}, err
	}
	defer rows.Close()

	var points []cost.Point
	for rows.Next() {
		var unix int64
		var c float64
		if err := rows.Scan(&unix, &c); err != nil {
			return cost.Series{}, err
		}
		points = append(points, cost.Point{Date: time.Unix(unix, 0).UTC(), Cost: c})
	}
	if err := rows.Err(); err != nil {
		return cost.Series{}, err
	}
	if len(points) == 0 {
		return cost.Series{Provider: provider}, nil
	}
	return cost.NewSeries(provider, points)
}

// Providers returns every provider with stored cost points.
func (d *DB) Providers(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT DISTINCT provider FROM cost_points ORDER BY provider`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// SaveResult stores the findings of one detection run, replacing any
// previous findings for the provider.
func (d *DB) SaveResult(ctx context.Context, result *anomaly.DetectionResult) error {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "anomalies", time.Since(start)) }()

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM anomalies WHERE provider=?`, result.Provider); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO anomalies (
  id, provider, date, observed_cost, expected_cost, method, severity,
  deviation_percent, z_score, day_of_week, outlier_score, trend_direction
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range result.Anomalies {
		if _, err := stmt.Exec(
			uuid.NewString(), result.Provider, a.Date.Unix(), a.ObservedCost,
			nullableFloat(a.ExpectedCost), string(a.Method), string(a.Severity),
			nullableFloat(a.DeviationPercent), a.ZScore, int(a.DayOfWeek),
			a.OutlierScore, a.TrendDirection,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List retrieves persisted anomalies matching the filter, ordered by
// provider and date.
func (d *DB) List(ctx context.Context, filter anomaly.Filter) ([]anomaly.Stored, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "anomalies", time.Since(start)) }()

	query := `
SELECT provider, date, observed_cost, expected_cost, method, severity,
  deviation_percent, z_score, day_of_week, outlier_score, trend_direction
FROM anomalies WHERE 1=1`
	var args []any
	if filter.Provider != "" {
		query += ` AND provider=?`
		args = append(args, filter.Provider)
	}
	if filter.Method != "" {
		query += ` AND method=?`
		args = append(args, filter.Method)
	}
	if filter.Severity != "" {
		query += ` AND severity=?`
		args = append(args, filter.Severity)
	}
	query += ` ORDER BY provider, date`

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []anomaly.Stored
	for rows.Next() {
		var a anomaly.Stored
		var unix int64
		var expected, deviation sql.NullFloat64
		var method, severity string
		var dayOfWeek int
		if err := rows.Scan(&a.Provider, &unix, &a.ObservedCost, &expected, &method, &severity,
			&deviation, &a.ZScore, &dayOfWeek, &a.OutlierScore, &a.TrendDirection,
		); err != nil {
			return nil, err
		}
		a.Date = time.Unix(unix, 0).UTC()
		a.Method = anomaly.Method(method)
		a.Severity = anomaly.Severity(severity)
		a.DayOfWeek = time.Weekday(dayOfWeek)
		if expected.Valid {
			v := expected.Float64
			a.ExpectedCost = &v
		}
		if deviation.Valid {
			v := deviation.Float64
			a.DeviationPercent = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountBySeverity counts persisted anomalies grouped by severity.
func (d *DB) CountBySeverity(ctx context.Context) (map[anomaly.Severity]int, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT severity, COUNT(1) FROM anomalies GROUP BY severity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[anomaly.Severity]int)
	for rows.Next() {
		var severity string
		var n int
		if err := rows.Scan(&severity, &n); err != nil {
			return nil, err
		}
		counts[anomaly.Severity(severity)] = n
	}
	return counts, rows.Err()
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
