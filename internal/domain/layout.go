package domain

import (
	"encoding/json"
	"fmt"
)

// LayoutSeat is one seat cell of a rendered grid.
type LayoutSeat struct {
	Number string     `json:"number"`
	Status SeatStatus `json:"status"`
}

// LayoutRow is an ordered sequence of seats within one physical row.
type LayoutRow struct {
	Row   string       `json:"row"`
	Seats []LayoutSeat `json:"seats"`
}

// ShowingLayout is the rendered seat grid for one showing, what clients see
// on the seat-picking screen. It is derived data: the seat store stays
// authoritative for every write decision.
type ShowingLayout struct {
	Rows    []LayoutRow    `json:"seat_layout"`
	Details BookingDetails `json:"details"`
}

// ParseLayoutTemplate decodes a venue's stored seat-layout template. Seats
// with no status in the template default to available.
func ParseLayoutTemplate(raw []byte) ([]LayoutRow, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var rows []LayoutRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("seat layout template: %w", err)
	}

	for i := range rows {
		for j := range rows[i].Seats {
			if rows[i].Seats[j].Status == "" {
				rows[i].Seats[j].Status = SeatAvailable
			}
		}
	}

	return rows, nil
}

// RenderLayout overlays current seat rows onto the venue template. Every seat
// the store knows as reserved or booked is marked with that status in the
// grid; seats without a store row keep the template status. The template is
// not mutated, the result is a fresh copy.
func RenderLayout(template []LayoutRow, seats []Seat) []LayoutRow {
	taken := make(map[SeatSelection]SeatStatus, len(seats))
	for _, s := range seats {
		if s.Status == SeatReserved || s.Status == SeatBooked {
			taken[SeatSelection{Row: s.Row, Number: s.Number}] = s.Status
		}
	}

	out := make([]LayoutRow, len(template))
	for i, row := range template {
		cells := make([]LayoutSeat, len(row.Seats))
		copy(cells, row.Seats)

		for j := range cells {
			if st, ok := taken[SeatSelection{Row: row.Row, Number: cells[j].Number}]; ok {
				cells[j].Status = st
			}
		}

		out[i] = LayoutRow{Row: row.Row, Seats: cells}
	}

	return out
}
