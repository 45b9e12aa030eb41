// Package store persists listings in Postgres. It is the alternative dataset
// source to the CSV file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"rental-atlas/internal/listing"
	"rental-atlas/internal/logger"
)

// BatchSize rows are committed per transaction during import.
const BatchSize = 5000

type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open opens a connection pool for dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

var columns = []string{
	"id", "city", "real_sum", "room_type", "room_shared", "room_private", "host_is_superhost",
	"person_capacity", "multi", "biz", "cleanliness_rating", "guest_satisfaction_overall",
	"bedrooms", "dist", "metro_dist", "attr_index", "rest_index", "attr_index_norm",
	"rest_index_norm", "lat", "lng", "day_status",
}

func insertSQL() string {
	ph := make([]string, len(columns))
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	sets := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		sets = append(sets, c+"=EXCLUDED."+c)
	}
	return fmt.Sprintf("INSERT INTO listings(%s) VALUES(%s) ON CONFLICT (id) DO UPDATE SET %s",
		strings.Join(columns, ","), strings.Join(ph, ","), strings.Join(sets, ","))
}

func args(l listing.Listing) []any {
	return []any{
		l.ID, l.City, nullFloat(l.Price), l.RoomType, l.RoomShared, l.RoomPrivate, l.HostIsSuperhost,
		nullFloat(l.PersonCapacity), l.Multi, l.Biz, nullFloat(l.CleanlinessRating), nullFloat(l.GuestSatisfaction),
		nullFloat(l.Bedrooms), nullFloat(l.Dist), nullFloat(l.MetroDist), nullFloat(l.AttrIndex), nullFloat(l.RestIndex),
		nullFloat(l.AttrIndexNorm), nullFloat(l.RestIndexNorm), nullFloat(l.Lat), nullFloat(l.Lng), l.DayStatus,
	}
}

// InsertListings upserts rows by id, committing every BatchSize rows.
func (s *Store) InsertListings(ctx context.Context, rows []listing.Listing) (int, error) {
	l := logger.L()
	q := insertSQL()
	count := 0
	for start := 0; start < len(rows); start += BatchSize {
		end := min(start+BatchSize, len(rows))
		if err := s.insertBatch(ctx, q, rows[start:end]); err != nil {
			return count, err
		}
		count = end
		l.Info("listings_import_progress", "count", count)
	}
	l.Info("listings_import_done", "count", count)
	return count, nil
}

func (s *Store) insertBatch(ctx context.Context, q string, rows []listing.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, args(r)...); err != nil {
			return fmt.Errorf("store: insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// LoadListings returns every row ordered by id number, the order the CSV had.
func (s *Store) LoadListings(ctx context.Context) ([]listing.Listing, error) {
	q := "SELECT " + strings.Join(columns, ",") + " FROM listings ORDER BY length(id), id"
	rs, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []listing.Listing
	for rs.Next() {
		var l listing.Listing
		var f [13]sql.NullFloat64
		if err := rs.Scan(&l.ID, &l.City, &f[0], &l.RoomType, &l.RoomShared, &l.RoomPrivate, &l.HostIsSuperhost,
			&f[1], &l.Multi, &l.Biz, &f[2], &f[3], &f[4], &f[5], &f[6], &f[7], &f[8], &f[9], &f[10],
			&f[11], &f[12], &l.DayStatus); err != nil {
			return nil, err
		}
		l.Price, l.PersonCapacity, l.CleanlinessRating = fromNull(f[0]), fromNull(f[1]), fromNull(f[2])
		l.GuestSatisfaction, l.Bedrooms, l.Dist = fromNull(f[3]), fromNull(f[4]), fromNull(f[5])
		l.MetroDist, l.AttrIndex, l.RestIndex = fromNull(f[6]), fromNull(f[7]), fromNull(f[8])
		l.AttrIndexNorm, l.RestIndexNorm = fromNull(f[9]), fromNull(f[10])
		l.Lat, l.Lng = fromNull(f[11]), fromNull(f[12])
		out = append(out, l)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("listings_loaded", "rows", len(out))
	return out, nil
}

// CountListings reports the table size.
func (s *Store) CountListings(ctx context.Context) (int64, error) {
	var c int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM listings").Scan(&c)
	return c, err
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
