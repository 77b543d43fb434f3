package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyAcquireLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)

	key := KeyIdemReserve(1, "abc")
	mock.ExpectSetNX(key, "LOCK", time.Minute).SetVal(true)

	ok, err := s.AcquireLock(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyAcquireLockContended(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)

	key := KeyIdemReserve(1, "abc")
	mock.ExpectSetNX(key, "LOCK", time.Minute).SetVal(false)

	ok, err := s.AcquireLock(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyResultRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)

	key := KeyIdemReserve(2, "k1")
	payload := `{"seat_ids":["a","b"]}`

	mock.ExpectSet(key, "RES:"+payload, time.Hour).SetVal("OK")
	require.NoError(t, s.SaveResult(context.Background(), key, payload))

	mock.ExpectGet(key).SetVal("RES:" + payload)
	got, ok, err := s.GetResult(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestIdempotencyGetResultWhileLocked(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)

	key := KeyIdemReserve(2, "k1")
	mock.ExpectGet(key).SetVal("LOCK")

	_, ok, err := s.GetResult(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet(key).SetVal("LOCK")
	locked, err := s.IsLocked(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestIdempotencyGetResultMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)

	mock.ExpectGet("nope").RedisNil()

	_, ok, err := s.GetResult(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewIdempotencyStore(db, time.Hour)

	key := KeyIdemReserve(3, "k2")
	mock.ExpectDel(key).SetVal(1)

	require.NoError(t, s.Release(context.Background(), key))
	assert.NoError(t, mock.ExpectationsWereMet())
}
