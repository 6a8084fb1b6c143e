package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/TemirB/sensor-relay/internal/config"
	"github.com/TemirB/sensor-relay/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

// querier is the part of *pgxpool.Pool the repository uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	pool   querier
	tables config.Tables
}

func New(pool querier, t config.Tables) *Repo { return &Repo{pool: pool, tables: t} }

// Connect opens a pgx pool that traces queries through logger and checks
// that the server answers.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newZapTracer(logger),
		LogLevel: tracelog.LogLevelWarn,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func (r *Repo) qt() string {
	return pgx.Identifier{r.tables.Schema, r.tables.Sensor}.Sanitize()
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			device_id   BIGINT    NOT NULL,
			event_id    BIGINT    NOT NULL,
			humidity    REAL      NOT NULL,
			temperature REAL      NOT NULL,
			read_time   TIMESTAMP NOT NULL,
			PRIMARY KEY (device_id, event_id)
		)
	`, r.qt()))
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON %s (device_id, read_time DESC)`,
		pgx.Identifier{r.tables.Sensor + "_device_time_idx"}.Sanitize(), r.qt(),
	))
	return err
}

// Insert is idempotent on (device_id, event_id) so a retried write cannot
// duplicate a reading.
func (r *Repo) Insert(ctx context.Context, rd *domain.Reading) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (device_id, event_id, humidity, temperature, read_time)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (device_id, event_id) DO NOTHING
	`, r.qt()),
		int64(rd.DeviceID), int64(rd.EventID), rd.Humidity, rd.Temperature, rd.ReadTime.UTC(),
	)
	return err
}

func (r *Repo) LatestByDevice(ctx context.Context, deviceID uint32) (*domain.Reading, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT device_id, event_id, humidity, temperature, read_time
		FROM %s WHERE device_id=$1
		ORDER BY read_time DESC, event_id DESC
		LIMIT 1
	`, r.qt()), int64(deviceID))

	rd, err := scanReading(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *Repo) History(ctx context.Context, deviceID uint32, limit int) ([]domain.Reading, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT device_id, event_id, humidity, temperature, read_time
		FROM %s WHERE device_id=$1
		ORDER BY read_time DESC, event_id DESC
		LIMIT $2
	`, r.qt()), int64(deviceID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reading
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// RecentDeviceIDs lists the devices that reported most recently.
func (r *Repo) RecentDeviceIDs(ctx context.Context, limit int) ([]uint32, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT device_id FROM %s
		GROUP BY device_id
		ORDER BY MAX(read_time) DESC
		LIMIT $1
	`, r.qt()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint32
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uint32(id))
	}
	return ids, rows.Err()
}

func scanReading(row pgx.Row) (domain.Reading, error) {
	var (
		rd                domain.Reading
		deviceID, eventID int64
	)
	if err := row.Scan(&deviceID, &eventID, &rd.Humidity, &rd.Temperature, &rd.ReadTime); err != nil {
		return domain.Reading{}, err
	}
	rd.DeviceID = uint32(deviceID)
	rd.EventID = uint64(eventID)
	rd.ReadTime = rd.ReadTime.UTC()
	return rd, nil
}
