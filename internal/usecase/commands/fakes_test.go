//go:build unit

package commands

import (
	"context"
	"sync"
	"time"

	"circulation/internal/domain/copy"
	"circulation/internal/domain/loan"
	"circulation/internal/domain/reservation"
	"circulation/internal/domain/rule"
	"circulation/internal/infra"
	"circulation/internal/usecase/shared"

	"github.com/google/uuid"
)

// In-memory doubles for the persistence ports. The store mutex serializes
// whole transactions the way the database serializes conflicting writes, so
// the claim compare-and-set keeps its exactly-one-winner guarantee under
// concurrent callers.

type fakeStore struct {
	mu           sync.Mutex
	copies       map[uuid.UUID]*copy.Copy
	loans        map[uuid.UUID]*loan.Loan
	reservations map[uuid.UUID]*reservation.Reservation
	rules        map[string]*rule.Rule
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		copies:       make(map[uuid.UUID]*copy.Copy),
		loans:        make(map[uuid.UUID]*loan.Loan),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		rules:        make(map[string]*rule.Rule),
	}
}

func (s *fakeStore) seedRules() {
	for _, r := range rule.Defaults() {
		s.rules[r.Key()] = r
	}
}

type fakeUoW struct {
	store *fakeStore
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(ctx, &fakeTx{store: u.store})
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Copies() shared.CopyRepository { return &fakeCopyRepo{store: t.store} }
func (t *fakeTx) Loans() shared.LoanRepository  { return &fakeLoanRepo{store: t.store} }
func (t *fakeTx) Reservations() shared.ReservationRepository {
	return &fakeReservationRepo{store: t.store}
}
func (t *fakeTx) Rules() shared.RuleRepository { return &fakeRuleRepo{store: t.store} }

type fakeCopyRepo struct {
	store *fakeStore
}

func (r *fakeCopyRepo) FindByID(_ context.Context, id uuid.UUID) (*copy.Copy, error) {
	c, ok := r.store.copies[id]
	if !ok {
		return nil, infra.WrapRepoErr("copy not found", nil, infra.KindNotFound)
	}
	return c, nil
}

func (r *fakeCopyRepo) ClaimForLoan(_ context.Context, copyID uuid.UUID) error {
	c, ok := r.store.copies[copyID]
	if !ok {
		return infra.WrapRepoErr("copy not found", nil, infra.KindNotFound)
	}
	if err := c.ClaimForLoan(); err != nil {
		return infra.WrapRepoErr("copy is not claimable", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeCopyRepo) Release(_ context.Context, copyID uuid.UUID) error {
	c, ok := r.store.copies[copyID]
	if !ok {
		return infra.WrapRepoErr("copy not found", nil, infra.KindNotFound)
	}
	if err := c.Release(); err != nil {
		return infra.WrapRepoErr("copy is not on loan", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeCopyRepo) MarkLost(_ context.Context, copyID uuid.UUID) error {
	c, ok := r.store.copies[copyID]
	if !ok {
		return infra.WrapRepoErr("copy not found", nil, infra.KindNotFound)
	}
	if err := c.MarkLost(); err != nil {
		return infra.WrapRepoErr("copy is not on loan", err, infra.KindConflict)
	}
	return nil
}

func (r *fakeCopyRepo) FindAnyAvailable(_ context.Context, bookID uuid.UUID) (*copy.Copy, error) {
	for _, c := range r.store.copies {
		if c.BookID() == bookID && c.IsAvailable() {
			return c, nil
		}
	}
	return nil, infra.WrapRepoErr("no available copy", nil, infra.KindNotFound)
}

func (r *fakeCopyRepo) CountAvailable(_ context.Context, bookID uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.store.copies {
		if c.BookID() == bookID && c.IsAvailable() {
			n++
		}
	}
	return n, nil
}

func (r *fakeCopyRepo) Update(_ context.Context, c *copy.Copy) error {
	r.store.copies[c.ID()] = c
	return nil
}

type fakeLoanRepo struct {
	store *fakeStore
}

func (r *fakeLoanRepo) Create(_ context.Context, l *loan.Loan) error {
	for _, existing := range r.store.loans {
		if existing.CopyID() == l.CopyID() && existing.ReturnedAt() == nil {
			return infra.WrapRepoErr("copy already has an open loan", nil, infra.KindDuplicateKey)
		}
	}
	r.store.loans[l.ID()] = l
	return nil
}

func (r *fakeLoanRepo) Update(_ context.Context, l *loan.Loan) error {
	if _, ok := r.store.loans[l.ID()]; !ok {
		return infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	r.store.loans[l.ID()] = l
	return nil
}

func (r *fakeLoanRepo) FindByID(_ context.Context, id uuid.UUID) (*loan.Loan, error) {
	l, ok := r.store.loans[id]
	if !ok {
		return nil, infra.WrapRepoErr("loan not found", nil, infra.KindNotFound)
	}
	return l, nil
}

func (r *fakeLoanRepo) FindActiveByBorrowerAndCopy(_ context.Context, borrowerID, copyID uuid.UUID) (*loan.Loan, error) {
	for _, l := range r.store.loans {
		if l.BorrowerID() == borrowerID && l.CopyID() == copyID && l.ReturnedAt() == nil {
			return l, nil
		}
	}
	return nil, infra.WrapRepoErr("no active loan", nil, infra.KindNotFound)
}

func (r *fakeLoanRepo) CountActiveByBorrower(_ context.Context, borrowerID uuid.UUID) (int64, error) {
	var n int64
	for _, l := range r.store.loans {
		if l.BorrowerID() == borrowerID && l.ReturnedAt() == nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) ExistsActiveByBorrowerAndBook(_ context.Context, borrowerID, bookID uuid.UUID) (bool, error) {
	for _, l := range r.store.loans {
		if l.BorrowerID() != borrowerID || l.ReturnedAt() != nil {
			continue
		}
		c, ok := r.store.copies[l.CopyID()]
		if ok && c.BookID() == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) ExistsOverdueByBorrower(_ context.Context, borrowerID uuid.UUID) (bool, error) {
	for _, l := range r.store.loans {
		if l.BorrowerID() == borrowerID && l.Status() == loan.StatusOverdue && l.ReturnedAt() == nil {
			return true, nil
		}
	}
	return false, nil
}

type fakeReservationRepo struct {
	store *fakeStore
}

func (r *fakeReservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	for _, existing := range r.store.reservations {
		if existing.BorrowerID() == res.BorrowerID() &&
			existing.BookID() == res.BookID() &&
			existing.Status() == reservation.StatusWaiting {
			return infra.WrapRepoErr("borrower already waiting for this book", nil, infra.KindDuplicateKey)
		}
	}
	r.store.reservations[res.ID()] = res
	return nil
}

func (r *fakeReservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.store.reservations[res.ID()]; !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	r.store.reservations[res.ID()] = res
	return nil
}

func (r *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return res, nil
}

func (r *fakeReservationRepo) ExistsWaiting(_ context.Context, borrowerID, bookID uuid.UUID) (bool, error) {
	for _, res := range r.store.reservations {
		if res.BorrowerID() == borrowerID && res.BookID() == bookID && res.Status() == reservation.StatusWaiting {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) HasActiveForBook(_ context.Context, bookID uuid.UUID) (bool, error) {
	for _, res := range r.store.reservations {
		if res.BookID() == bookID && res.Status().IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) OldestWaiting(_ context.Context, bookID uuid.UUID) (*reservation.Reservation, error) {
	var head *reservation.Reservation
	for _, res := range r.store.reservations {
		if res.BookID() != bookID || res.Status() != reservation.StatusWaiting {
			continue
		}
		if head == nil || reservedBefore(res, head) {
			head = res
		}
	}
	return head, nil
}

func reservedBefore(a, b *reservation.Reservation) bool {
	if !a.ReservedAt().Equal(b.ReservedAt()) {
		return a.ReservedAt().Before(b.ReservedAt())
	}
	return a.ID().String() < b.ID().String()
}

func (r *fakeReservationRepo) ListNotifiedForBook(_ context.Context, bookID uuid.UUID) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range r.store.reservations {
		if res.BookID() == bookID && res.Status() == reservation.StatusNotified {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) FindNotifiedByBorrowerAndBook(_ context.Context, borrowerID, bookID uuid.UUID) (*reservation.Reservation, error) {
	for _, res := range r.store.reservations {
		if res.BorrowerID() == borrowerID && res.BookID() == bookID && res.Status() == reservation.StatusNotified {
			return res, nil
		}
	}
	return nil, infra.WrapRepoErr("no notified reservation", nil, infra.KindNotFound)
}

func (r *fakeReservationRepo) LockBookQueue(_ context.Context, _ uuid.UUID) error {
	// The store mutex already serializes whole transactions.
	return nil
}

type fakeRuleRepo struct {
	store *fakeStore
}

func (r *fakeRuleRepo) FindByKey(_ context.Context, key string) (*rule.Rule, error) {
	rl, ok := r.store.rules[key]
	if !ok {
		return nil, infra.WrapRepoErr("rule not found", nil, infra.KindNotFound)
	}
	return rl, nil
}

func (r *fakeRuleRepo) Update(_ context.Context, rl *rule.Rule) error {
	if _, ok := r.store.rules[rl.Key()]; !ok {
		return infra.WrapRepoErr("rule not found", nil, infra.KindNotFound)
	}
	r.store.rules[rl.Key()] = rl
	return nil
}

func (r *fakeRuleRepo) CreateIfAbsent(_ context.Context, rl *rule.Rule) error {
	if _, ok := r.store.rules[rl.Key()]; ok {
		return nil
	}
	r.store.rules[rl.Key()] = rl
	return nil
}

func (r *fakeRuleRepo) ListAll(_ context.Context) ([]*rule.Rule, error) {
	out := make([]*rule.Rule, 0, len(r.store.rules))
	for _, rl := range r.store.rules {
		out = append(out, rl)
	}
	return out, nil
}

type fakeCatalog struct {
	mu        sync.Mutex
	books     map[uuid.UUID]bool
	borrowers map[uuid.UUID]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		books:     make(map[uuid.UUID]bool),
		borrowers: make(map[uuid.UUID]bool),
	}
}

func (c *fakeCatalog) BookExists(_ context.Context, bookID uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.books[bookID], nil
}

func (c *fakeCatalog) BorrowerExists(_ context.Context, borrowerID uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.borrowers[borrowerID], nil
}

type notice struct {
	borrowerID uuid.UUID
	message    string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *fakeNotifier) Notify(_ context.Context, borrowerID uuid.UUID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{borrowerID: borrowerID, message: message})
}

func (n *fakeNotifier) sent() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

// mustTime builds the fixed instants the scenarios run at.
func mustTime(day int) time.Time {
	return time.Date(2025, 5, day, 12, 0, 0, 0, time.UTC)
}
