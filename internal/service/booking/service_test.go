package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/repository"
	"github.com/ihorkly/bookix/internal/uow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSeatTx records seat-store calls made inside the transaction.
type fakeSeatTx struct {
	taken      []domain.SeatSelection
	findErr    error
	reserveIDs []uuid.UUID
	reserveErr error
	confirmErr error
	releaseN   int64
	releaseErr error

	reserveCalls int
	confirmCalls int
}

func (f *fakeSeatTx) FindTaken(_ context.Context, _ int64, _ []domain.SeatSelection) ([]domain.SeatSelection, error) {
	return f.taken, f.findErr
}

func (f *fakeSeatTx) Reserve(_ context.Context, _ int64, sels []domain.SeatSelection) ([]uuid.UUID, error) {
	f.reserveCalls++
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	if f.reserveIDs != nil {
		return f.reserveIDs, nil
	}

	ids := make([]uuid.UUID, len(sels))
	for i := range sels {
		ids[i] = uuid.New()
	}
	return ids, nil
}

func (f *fakeSeatTx) Confirm(_ context.Context, _ int64, _ []uuid.UUID) error {
	f.confirmCalls++
	return f.confirmErr
}

func (f *fakeSeatTx) Release(_ context.Context, _ int64, _ []uuid.UUID) (int64, error) {
	return f.releaseN, f.releaseErr
}

// fakeSeatStore mimics the Serializable unit of work: after-commit hooks run
// only when fn and the (simulated) commit both succeed.
type fakeSeatStore struct {
	tx        *fakeSeatTx
	commitErr error
	staleIDs  []int64
	staleErr  error
}

func (f *fakeSeatStore) InTx(
	ctx context.Context,
	fn func(ctx context.Context, seats SeatTx, after func(uow.AfterCommit)) error,
) error {
	var hooks []uow.AfterCommit

	if err := fn(ctx, f.tx, func(h uow.AfterCommit) { hooks = append(hooks, h) }); err != nil {
		return err
	}

	if f.commitErr != nil {
		return f.commitErr
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

func (f *fakeSeatStore) ReleaseStale(_ context.Context, _ time.Duration) ([]int64, error) {
	return f.staleIDs, f.staleErr
}

type fakeInvalidator struct {
	invalidated []int64
}

func (f *fakeInvalidator) InvalidateShowing(_ context.Context, showingID int64) error {
	f.invalidated = append(f.invalidated, showingID)
	return nil
}

type fakeNotifier struct {
	showings []int64
	seatIDs  [][]uuid.UUID
}

func (f *fakeNotifier) PublishTicketsConfirmed(_ context.Context, showingID int64, seatIDs []uuid.UUID) error {
	f.showings = append(f.showings, showingID)
	f.seatIDs = append(f.seatIDs, seatIDs)
	return nil
}

func newFakes(tx *fakeSeatTx) (*fakeSeatStore, *fakeInvalidator, *fakeNotifier, *Service) {
	store := &fakeSeatStore{tx: tx}
	inv := &fakeInvalidator{}
	ntf := &fakeNotifier{}

	return store, inv, ntf, New(store, inv, nil, nil, ntf, nil, Config{})
}

// Validation must reject before any store access, so a service without a
// store behind it must not panic on bad input.
func newBare(t *testing.T) *Service {
	t.Helper()
	return New(nil, nil, nil, nil, nil, nil, Config{})
}

func TestReserve_EmptySelection(t *testing.T) {
	s := newBare(t)

	ids, err := s.Reserve(context.Background(), 1, nil, "")

	require.ErrorIs(t, err, ErrInvalidSelection)
	assert.Nil(t, ids)
}

func TestReserve_BlankSelection(t *testing.T) {
	s := newBare(t)

	_, err := s.Reserve(context.Background(), 1, []domain.SeatSelection{
		{Row: "A", Number: ""},
	}, "")

	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestReserve_DuplicateSelection(t *testing.T) {
	s := newBare(t)

	_, err := s.Reserve(context.Background(), 1, []domain.SeatSelection{
		{Row: "A", Number: "1"},
		{Row: "A", Number: "1"},
	}, "")

	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestConfirm_NoSeats(t *testing.T) {
	s := newBare(t)

	err := s.Confirm(context.Background(), 1, nil)

	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestRelease_NoSeats(t *testing.T) {
	s := newBare(t)

	_, err := s.Release(context.Background(), 1, nil)

	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestValidateSelections_OK(t *testing.T) {
	err := validateSelections([]domain.SeatSelection{
		{Row: "A", Number: "1"},
		{Row: "A", Number: "2"},
		{Row: "B", Number: "1"},
	})

	assert.NoError(t, err)
}

// One unavailable seat fails the whole batch: no upsert is attempted and no
// invalidation fires.
func TestReserve_OneTakenSeatFailsWholeBatch(t *testing.T) {
	tx := &fakeSeatTx{taken: []domain.SeatSelection{{Row: "A", Number: "2"}}}
	_, inv, _, s := newFakes(tx)

	ids, err := s.Reserve(context.Background(), 7, []domain.SeatSelection{
		{Row: "A", Number: "1"},
		{Row: "A", Number: "2"},
	}, "")

	require.ErrorIs(t, err, ErrSeatTaken)
	assert.Nil(t, ids)
	assert.Zero(t, tx.reserveCalls)
	assert.Empty(t, inv.invalidated)
}

func TestReserve_SuccessInvalidatesShowing(t *testing.T) {
	want := []uuid.UUID{uuid.New(), uuid.New()}
	tx := &fakeSeatTx{reserveIDs: want}
	_, inv, _, s := newFakes(tx)

	ids, err := s.Reserve(context.Background(), 7, []domain.SeatSelection{
		{Row: "A", Number: "1"},
		{Row: "A", Number: "2"},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, want, ids)
	assert.Equal(t, []int64{7}, inv.invalidated)
}

// A commit-time serialization failure means a concurrent transaction won the
// seats: the caller sees a seat conflict, and the after-commit invalidation
// must not fire for a write that never became durable.
func TestReserve_CommitSerializationFailure(t *testing.T) {
	tx := &fakeSeatTx{}
	store, inv, _, _ := newFakes(tx)
	store.commitErr = fmt.Errorf("commit: %w", repository.ErrSerialization)
	s := New(store, inv, nil, nil, nil, nil, Config{})

	_, err := s.Reserve(context.Background(), 7, []domain.SeatSelection{
		{Row: "A", Number: "1"},
	}, "")

	require.ErrorIs(t, err, ErrSeatTaken)
	assert.Equal(t, 1, tx.reserveCalls)
	assert.Empty(t, inv.invalidated)
}

func TestConfirm_NotReservedRejectsBatch(t *testing.T) {
	tx := &fakeSeatTx{confirmErr: fmt.Errorf("guard:%w", repository.ErrNotReserved)}
	_, inv, ntf, s := newFakes(tx)

	err := s.Confirm(context.Background(), 7, []uuid.UUID{uuid.New()})

	require.ErrorIs(t, err, ErrSeatsNotReserved)
	assert.Empty(t, inv.invalidated)
	assert.Empty(t, ntf.showings)
}

func TestConfirm_SuccessInvalidatesAndNotifies(t *testing.T) {
	tx := &fakeSeatTx{}
	_, inv, ntf, s := newFakes(tx)

	seatIDs := []uuid.UUID{uuid.New(), uuid.New()}
	err := s.Confirm(context.Background(), 7, seatIDs)

	require.NoError(t, err)
	assert.Equal(t, []int64{7}, inv.invalidated)
	require.Equal(t, []int64{7}, ntf.showings)
	assert.Equal(t, seatIDs, ntf.seatIDs[0])
}

func TestRelease_NoChangesSkipsInvalidation(t *testing.T) {
	tx := &fakeSeatTx{releaseN: 0}
	_, inv, _, s := newFakes(tx)

	released, err := s.Release(context.Background(), 7, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	assert.Zero(t, released)
	assert.Empty(t, inv.invalidated)
}

func TestRelease_InvalidatesOnChange(t *testing.T) {
	tx := &fakeSeatTx{releaseN: 2}
	_, inv, _, s := newFakes(tx)

	released, err := s.Release(context.Background(), 7, []uuid.UUID{uuid.New(), uuid.New()})

	require.NoError(t, err)
	assert.EqualValues(t, 2, released)
	assert.Equal(t, []int64{7}, inv.invalidated)
}

func TestExpireStale_InvalidatesEveryChangedShowing(t *testing.T) {
	store := &fakeSeatStore{staleIDs: []int64{3, 9}}
	inv := &fakeInvalidator{}
	s := New(store, inv, nil, nil, nil, nil, Config{})

	n, err := s.ExpireStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{3, 9}, inv.invalidated)
}

func TestClassify_SerializationFailureIsSeatConflict(t *testing.T) {
	s := newBare(t)

	err := s.classify("op", fmt.Errorf("tx:%w", repository.ErrSerialization))

	assert.ErrorIs(t, err, ErrSeatTaken)
}

func TestClassify_UniqueViolationIsSeatConflict(t *testing.T) {
	s := newBare(t)

	err := s.classify("op", fmt.Errorf("tx:%w", repository.ErrConflict))

	assert.ErrorIs(t, err, ErrSeatTaken)
}

func TestClassify_UnknownShowing(t *testing.T) {
	s := newBare(t)

	err := s.classify("op", fmt.Errorf("tx:%w", repository.ErrNotFound))

	assert.ErrorIs(t, err, ErrShowingNotFound)
}

func TestClassify_KeepsTypedOutcomes(t *testing.T) {
	s := newBare(t)

	wrapped := fmt.Errorf("service.booking.Reserve:%w", ErrSeatTaken)

	assert.Same(t, wrapped, s.classify("op", wrapped))
}

func TestClassify_PassesThroughStoreErrors(t *testing.T) {
	s := newBare(t)

	storeErr := fmt.Errorf("connection reset")

	assert.Same(t, storeErr, s.classify("op", storeErr))
}
