package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countsPayload struct {
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Booked    int `json:"booked"`
}

func TestCacheGetStringMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("missing").RedisNil()

	_, ok, err := c.GetString(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheGetJSONHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	key := KeyShowingCounts(7)
	mock.ExpectGet(key).SetVal(`{"available":10,"reserved":2,"booked":3}`)

	got, ok, err := GetJSON[countsPayload](context.Background(), c, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, countsPayload{Available: 10, Reserved: 2, Booked: 3}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheGetJSONCorruptEntry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("bad").SetVal("{not json")

	_, ok, err := GetJSON[countsPayload](context.Background(), c, "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCacheSetJSON(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	key := KeyShowingCounts(7)
	mock.ExpectSet(key, `{"available":1,"reserved":0,"booked":0}`, time.Minute).SetVal("OK")

	err := SetJSON(context.Background(), c, key, countsPayload{Available: 1}, time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSONColdKeyRunsLoaderOnce(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	key := KeyShowingCounts(42)

	// outer read miss, inner re-check miss, then write-back
	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, `{"available":5,"reserved":0,"booked":0}`, time.Minute).SetVal("OK")

	calls := 0
	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute,
		func(ctx context.Context) (countsPayload, error) {
			calls++
			return countsPayload{Available: 5}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Available)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSONWarmKeySkipsLoader(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	key := KeyShowingCounts(42)
	mock.ExpectGet(key).SetVal(`{"available":9,"reserved":0,"booked":0}`)

	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute,
		func(ctx context.Context) (countsPayload, error) {
			t.Fatal("loader must not run on a warm key")
			return countsPayload{}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 9, got.Available)
}

// A cache outage must degrade reads to the loader, never surface the redis
// error to the caller.
func TestGetOrSetJSONReadErrorFallsThroughToLoader(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	key := KeyShowingCounts(42)
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, `{"available":4,"reserved":0,"booked":0}`, time.Minute).
		SetErr(errors.New("connection refused"))

	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute,
		func(ctx context.Context) (countsPayload, error) {
			return countsPayload{Available: 4}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Available)
}

func TestGetOrSetJSONCorruptEntryRecomputes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("k").SetVal("{not json")
	mock.ExpectGet("k").SetVal("{not json")
	mock.ExpectSet("k", `{"available":8,"reserved":0,"booked":0}`, time.Minute).SetVal("OK")

	got, err := GetOrSetJSON(context.Background(), c, "k", time.Minute,
		func(ctx context.Context) (countsPayload, error) {
			return countsPayload{Available: 8}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 8, got.Available)
}

func TestGetOrSetJSONLoaderError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("k").RedisNil()
	mock.ExpectGet("k").RedisNil()

	boom := errors.New("db down")
	_, err := GetOrSetJSON(context.Background(), c, "k", time.Minute,
		func(ctx context.Context) (countsPayload, error) {
			return countsPayload{}, boom
		})
	assert.ErrorIs(t, err, boom)
}

func TestInvalidateShowingDeletesDerivedKeys(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectDel(KeySeatLayout(11), KeyShowingCounts(11)).SetVal(2)

	require.NoError(t, c.InvalidateShowing(context.Background(), 11))
	assert.NoError(t, mock.ExpectationsWereMet())
}
