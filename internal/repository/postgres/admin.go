package postgres

import (
	"context"

	"github.com/ihorkly/bookix/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepo writes catalog entities: venues with their immutable seat-layout
// template, events and showings.
type AdminRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AdminRepo) With(db DB) *AdminRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AdminRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *AdminRepo) CreateVenue(ctx context.Context, v domain.Venue) (int64, error) {
	const op = "postgres.AdminRepo.CreateVenue"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO venues(name, city, address, capacity, seat_layout)
       	 VALUES ($1, $2, $3, $4, $5)
     	 RETURNING id`,
		v.Name, v.City, v.Address, v.Capacity, v.SeatLayout,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *AdminRepo) CreateEvent(ctx context.Context, e domain.Event) (int64, error) {
	const op = "postgres.AdminRepo.CreateEvent"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO events(title, host, description, kind, category, language, duration_min, age_limit)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
     	 RETURNING id`,
		e.Title, e.Host, e.Description, string(e.Kind),
		e.Category, e.Language, e.DurationMin, e.AgeLimit,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// BatchCreateShowings schedules an event at several venues in one batch.
func (r *AdminRepo) BatchCreateShowings(ctx context.Context, showings []domain.Showing) error {
	const op = "postgres.AdminRepo.BatchCreateShowings"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, sh := range showings {
		batch.Queue(
			`INSERT INTO showings(event_id, venue_id, date, showtime, total_seats)
         	 VALUES ($1, $2, $3, $4, $5)`,
			sh.EventID, sh.VenueID, sh.Date, sh.Showtime, sh.TotalSeats,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *AdminRepo) CreateShowing(ctx context.Context, sh domain.Showing) (int64, error) {
	const op = "postgres.AdminRepo.CreateShowing"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO showings(event_id, venue_id, date, showtime, total_seats)
       	 VALUES ($1, $2, $3, $4, $5)
     	 RETURNING id`,
		sh.EventID, sh.VenueID, sh.Date, sh.Showtime, sh.TotalSeats,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}
