package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ihorkly/bookix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func template() []domain.LayoutRow {
	return []domain.LayoutRow{
		{Row: "A", Seats: []domain.LayoutSeat{
			{Number: "1", Status: domain.SeatAvailable},
			{Number: "2", Status: domain.SeatAvailable},
		}},
		{Row: "B", Seats: []domain.LayoutSeat{
			{Number: "1", Status: domain.SeatAvailable},
		}},
	}
}

func TestParseLayoutTemplate(t *testing.T) {
	raw := []byte(`[{"row":"A","seats":[{"number":"1"},{"number":"2","status":"booked"}]}]`)

	rows, err := domain.ParseLayoutTemplate(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.SeatAvailable, rows[0].Seats[0].Status)
	assert.Equal(t, domain.SeatBooked, rows[0].Seats[1].Status)
}

func TestParseLayoutTemplate_Empty(t *testing.T) {
	rows, err := domain.ParseLayoutTemplate(nil)
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestParseLayoutTemplate_Invalid(t *testing.T) {
	_, err := domain.ParseLayoutTemplate([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestRenderLayout_MarksTakenSeats(t *testing.T) {
	seats := []domain.Seat{
		{ID: uuid.New(), Row: "A", Number: "2", Status: domain.SeatReserved},
		{ID: uuid.New(), Row: "B", Number: "1", Status: domain.SeatBooked},
	}

	got := domain.RenderLayout(template(), seats)

	require.Len(t, got, 2)
	assert.Equal(t, domain.SeatAvailable, got[0].Seats[0].Status)
	assert.Equal(t, domain.SeatReserved, got[0].Seats[1].Status)
	assert.Equal(t, domain.SeatBooked, got[1].Seats[0].Status)
}

func TestRenderLayout_ReleasedSeatStaysAvailable(t *testing.T) {
	// A seat row whose status went back to available must not show as taken.
	seats := []domain.Seat{
		{ID: uuid.New(), Row: "A", Number: "1", Status: domain.SeatAvailable, Version: 2},
	}

	got := domain.RenderLayout(template(), seats)

	assert.Equal(t, domain.SeatAvailable, got[0].Seats[0].Status)
}

func TestRenderLayout_DoesNotMutateTemplate(t *testing.T) {
	tpl := template()
	seats := []domain.Seat{
		{ID: uuid.New(), Row: "A", Number: "1", Status: domain.SeatBooked},
	}

	_ = domain.RenderLayout(tpl, seats)

	assert.Equal(t, domain.SeatAvailable, tpl[0].Seats[0].Status)
}
