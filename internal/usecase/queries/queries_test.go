//go:build unit

package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoanViewRepo struct {
	views []*LoanView
	now   time.Time
}

func (s *stubLoanViewRepo) FindActiveByBorrower(_ context.Context, _ uuid.UUID) ([]*LoanView, error) {
	return s.views, nil
}

func (s *stubLoanViewRepo) FindPastDue(_ context.Context, now time.Time) ([]*LoanView, error) {
	s.now = now
	return s.views, nil
}

func (s *stubLoanViewRepo) FindUnpaidFinesByBorrower(_ context.Context, _ uuid.UUID) ([]*LoanView, error) {
	return s.views, nil
}

type stubReservationViewRepo struct {
	views []*ReservationView
}

func (s *stubReservationViewRepo) FindActiveByBorrower(_ context.Context, _ uuid.UUID) ([]*ReservationView, error) {
	return s.views, nil
}

type stubAvailabilityRepo struct {
	count int64
}

func (s *stubAvailabilityRepo) CountAvailable(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.count, nil
}

func TestLoanQueries(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	views := []*LoanView{
		{
			ID:         uuid.New(),
			BorrowerID: uuid.New(),
			CopyID:     uuid.New(),
			BookID:     uuid.New(),
			Barcode:    "BC-0001",
			BorrowedAt: base,
			DueAt:      base.AddDate(0, 0, 30),
			Status:     "active",
			Fine:       decimal.Zero,
			CreatedAt:  base,
		},
	}
	repo := &stubLoanViewRepo{views: views}
	q := NewLoanQueries(repo)

	got, err := q.ListActiveByBorrower(context.Background(), views[0].BorrowerID)
	require.NoError(t, err)
	if diff := cmp.Diff(views, got); diff != "" {
		t.Errorf("loan views mismatch (-want +got):\n%s", diff)
	}

	sweep := base.AddDate(0, 0, 45)
	_, err = q.ListOverdue(context.Background(), sweep)
	require.NoError(t, err)
	assert.Equal(t, sweep, repo.now, "the sweep cutoff passes through unchanged")
}

func TestReservationQueries(t *testing.T) {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	views := []*ReservationView{
		{ID: uuid.New(), BorrowerID: uuid.New(), BookID: uuid.New(),
			ReservedAt: base, Status: "waiting", Position: 2},
	}
	q := NewReservationQueries(&stubReservationViewRepo{views: views}, &stubAvailabilityRepo{count: 3})

	got, err := q.ListActiveByBorrower(context.Background(), views[0].BorrowerID)
	require.NoError(t, err)
	if diff := cmp.Diff(views, got); diff != "" {
		t.Errorf("reservation views mismatch (-want +got):\n%s", diff)
	}

	bookID := uuid.New()
	avail, err := q.Availability(context.Background(), bookID)
	require.NoError(t, err)
	if diff := cmp.Diff(&AvailabilityView{BookID: bookID, AvailableCopies: 3}, avail); diff != "" {
		t.Errorf("availability mismatch (-want +got):\n%s", diff)
	}
}
