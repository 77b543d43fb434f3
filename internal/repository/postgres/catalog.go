package postgres

import (
	"context"
	"time"

	"github.com/ihorkly/bookix/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepo reads event, venue and showing metadata. Booking code only ever
// reads from it; showings are referenced by ID and never mutated here.
type CatalogRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CatalogRepo) With(db DB) *CatalogRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CatalogRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *CatalogRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.CatalogRepo.GetEvent"

	db := r.handle()

	var e domain.Event
	var kind string
	err := db.QueryRow(ctx,
		`SELECT id, title, host, description, kind, category, language, duration_min, age_limit
       	 FROM events WHERE id = $1`,
		id,
	).Scan(
		&e.ID,
		&e.Title,
		&e.Host,
		&e.Description,
		&kind,
		&e.Category,
		&e.Language,
		&e.DurationMin,
		&e.AgeLimit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	e.Kind = domain.EventKind(kind)

	return &e, nil
}

// ListEventsByCity lists events that have at least one showing at a venue in
// the given city.
func (r *CatalogRepo) ListEventsByCity(ctx context.Context, city string) ([]domain.Event, error) {
	const op = "postgres.CatalogRepo.ListEventsByCity"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT DISTINCT e.id, e.title, e.host, e.description, e.kind,
                     	 e.category, e.language, e.duration_min, e.age_limit
       	 FROM events e
       	 JOIN showings sh ON sh.event_id = e.id
       	 JOIN venues v ON v.id = sh.venue_id
      	 WHERE v.city = $1
      	 ORDER BY e.title`,
		city,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var kind string
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Host,
			&e.Description,
			&kind,
			&e.Category,
			&e.Language,
			&e.DurationMin,
			&e.AgeLimit,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		e.Kind = domain.EventKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *CatalogRepo) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	const op = "postgres.CatalogRepo.GetVenue"

	db := r.handle()

	var v domain.Venue
	err := db.QueryRow(ctx,
		`SELECT id, name, city, address, capacity, seat_layout
       	 FROM venues WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.City, &v.Address, &v.Capacity, &v.SeatLayout)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &v, nil
}

func (r *CatalogRepo) GetShowing(ctx context.Context, id int64) (*domain.Showing, error) {
	const op = "postgres.CatalogRepo.GetShowing"

	db := r.handle()

	var sh domain.Showing
	err := db.QueryRow(ctx,
		`SELECT id, event_id, venue_id, date, showtime, total_seats
       	 FROM showings WHERE id = $1`,
		id,
	).Scan(&sh.ID, &sh.EventID, &sh.VenueID, &sh.Date, &sh.Showtime, &sh.TotalSeats)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &sh, nil
}

// ListShowings lists an event's showings in one city on one calendar day.
func (r *CatalogRepo) ListShowings(
	ctx context.Context,
	eventID int64,
	city string,
	day time.Time,
) ([]domain.Showing, error) {
	const op = "postgres.CatalogRepo.ListShowings"

	db := r.handle()

	start := day.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	rows, err := db.Query(ctx,
		`SELECT sh.id, sh.event_id, sh.venue_id, sh.date, sh.showtime, sh.total_seats
       	 FROM showings sh
       	 JOIN venues v ON v.id = sh.venue_id
      	 WHERE sh.event_id = $1
        	AND v.city = $2
        	AND sh.date >= $3 AND sh.date < $4
      	 ORDER BY sh.showtime`,
		eventID, city, start, end,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Showing
	for rows.Next() {
		var sh domain.Showing
		if err := rows.Scan(
			&sh.ID,
			&sh.EventID,
			&sh.VenueID,
			&sh.Date,
			&sh.Showtime,
			&sh.TotalSeats,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// BookingDetails returns what the seat-picking screen shows above the grid:
// event and venue names plus date and showtime of one showing.
func (r *CatalogRepo) BookingDetails(ctx context.Context, showingID int64) (*domain.BookingDetails, error) {
	const op = "postgres.CatalogRepo.BookingDetails"

	db := r.handle()

	var d domain.BookingDetails
	err := db.QueryRow(ctx,
		`SELECT e.title, e.language, v.name, v.address, v.city, sh.date, sh.showtime
       	 FROM showings sh
       	 JOIN events e ON e.id = sh.event_id
       	 JOIN venues v ON v.id = sh.venue_id
      	 WHERE sh.id = $1`,
		showingID,
	).Scan(
		&d.EventTitle,
		&d.EventLang,
		&d.VenueName,
		&d.VenueAddress,
		&d.VenueCity,
		&d.Date,
		&d.Showtime,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &d, nil
}
