package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeatRepo owns the seats table: one row per (showing_id, row, seat_number),
// created lazily on the first reservation attempt. Rows are never deleted so
// a showing's seating history survives for ticket lookup.
type SeatRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SeatRepo) With(db DB) *SeatRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SeatRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// FindTaken returns the requested selections whose seat row is currently
// reserved or booked. Seats without a row are available by definition and are
// never returned.
func (r *SeatRepo) FindTaken(
	ctx context.Context,
	showingID int64,
	sels []domain.SeatSelection,
) ([]domain.SeatSelection, error) {
	const op = "postgres.SeatRepo.FindTaken"

	db := r.handle()

	rowsArg := make([]string, len(sels))
	numsArg := make([]string, len(sels))
	for i, s := range sels {
		rowsArg[i] = s.Row
		numsArg[i] = s.Number
	}

	rows, err := db.Query(ctx,
		`SELECT row, seat_number
       	 FROM seats
      	 WHERE showing_id = $1
        	AND status IN ('reserved', 'booked')
        	AND (row, seat_number) IN (SELECT * FROM unnest($2::text[], $3::text[]))`,
		showingID, rowsArg, numsArg,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var taken []domain.SeatSelection
	for rows.Next() {
		var s domain.SeatSelection
		if err := rows.Scan(&s.Row, &s.Number); err != nil {
			return nil, wrapDBErr(op, err)
		}
		taken = append(taken, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return taken, nil
}

// Reserve upserts every selection to reserved and returns the seat IDs in
// selection order. An existing row gets status=reserved, version=version+1;
// a missing row is inserted with version=1. Callers must run this inside the
// same transaction as FindTaken so the conflict check and the write are one
// serializable unit.
func (r *SeatRepo) Reserve(
	ctx context.Context,
	showingID int64,
	sels []domain.SeatSelection,
) ([]uuid.UUID, error) {
	const op = "postgres.SeatRepo.Reserve"

	db := r.handle()

	ids := make([]uuid.UUID, 0, len(sels))
	for _, s := range sels {
		var id uuid.UUID
		err := db.QueryRow(ctx,
			`INSERT INTO seats(id, showing_id, row, seat_number, status, version)
        	 VALUES ($1, $2, $3, $4, 'reserved', 1)
     		 ON CONFLICT (showing_id, row, seat_number)
     		 DO UPDATE SET status = 'reserved',
                    	   version = seats.version + 1,
                    	   updated_at = now()
      		 RETURNING id`,
			uuid.New(), showingID, s.Row, s.Number,
		).Scan(&id)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// Confirm transitions the given seats from reserved to booked. The transition
// is guarded: a seat that is not currently reserved does not match, and any
// shortfall fails the whole batch with repository.ErrNotReserved. Duplicate
// IDs in the request collapse to one seat so they cannot deflate the guard
// count.
func (r *SeatRepo) Confirm(ctx context.Context, showingID int64, seatIDs []uuid.UUID) error {
	const op = "postgres.SeatRepo.Confirm"

	db := r.handle()
	ids := dedupeSeatIDs(seatIDs)

	tag, err := db.Exec(ctx,
		`UPDATE seats
        	SET status = 'booked', version = version + 1, updated_at = now()
      	 WHERE showing_id = $1
        	AND id = ANY($2)
        	AND status = 'reserved'`,
		showingID, ids,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("%s:%w", op, repository.ErrNotReserved)
	}

	return nil
}

func dedupeSeatIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// Release moves reserved seats back to available, the timeout/cancellation
// path. Already-booked seats are untouched.
func (r *SeatRepo) Release(ctx context.Context, showingID int64, seatIDs []uuid.UUID) (int64, error) {
	const op = "postgres.SeatRepo.Release"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE seats
        	SET status = 'available', version = version + 1, updated_at = now()
      	 WHERE showing_id = $1
        	AND id = ANY($2)
        	AND status = 'reserved'`,
		showingID, seatIDs,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// ReleaseStale releases reservations older than the given age across all
// showings and returns the distinct showing IDs that changed, so callers can
// invalidate the matching layout-cache entries.
func (r *SeatRepo) ReleaseStale(ctx context.Context, olderThan time.Duration) ([]int64, error) {
	const op = "postgres.SeatRepo.ReleaseStale"

	db := r.handle()

	rows, err := db.Query(ctx,
		`UPDATE seats
        	SET status = 'available', version = version + 1, updated_at = now()
      	 WHERE status = 'reserved'
        	AND updated_at <= now() - $1::interval
      	 RETURNING showing_id`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())),
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	seen := make(map[int64]struct{})
	var showings []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr(op, err)
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			showings = append(showings, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return showings, nil
}

// ListByShowing returns every seat row of a showing, the input for layout
// rendering and availability counts.
func (r *SeatRepo) ListByShowing(ctx context.Context, showingID int64) ([]domain.Seat, error) {
	const op = "postgres.SeatRepo.ListByShowing"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, showing_id, row, seat_number, status, version, updated_at
       	 FROM seats
      	 WHERE showing_id = $1
      	 ORDER BY row, seat_number`,
		showingID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		var status string

		if err := rows.Scan(
			&s.ID,
			&s.ShowingID,
			&s.Row,
			&s.Number,
			&status,
			&s.Version,
			&s.UpdatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		s.Status = domain.SeatStatus(status)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// CountsByStatus aggregates a showing's seat rows by status. Seats that have
// no row yet are not counted; Total reflects stored rows only.
func (r *SeatRepo) CountsByStatus(ctx context.Context, showingID int64) (*domain.ShowingCounts, error) {
	const op = "postgres.SeatRepo.CountsByStatus"

	db := r.handle()

	var sc domain.ShowingCounts
	err := db.QueryRow(ctx,
		`SELECT
       	 	COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0),
    	 	COALESCE(SUM(CASE WHEN status = 'reserved' THEN 1 ELSE 0 END), 0),
       	 	COALESCE(SUM(CASE WHEN status = 'booked' THEN 1 ELSE 0 END), 0)
     	 FROM seats
     	 WHERE showing_id = $1`,
		showingID,
	).Scan(&sc.Available, &sc.Reserved, &sc.Booked)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	sc.Total = sc.Available + sc.Reserved + sc.Booked

	return &sc, nil
}
