//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"circulation/internal/domain/copy"
	"circulation/internal/domain/loan"
	"circulation/internal/domain/rule"
	"circulation/internal/infra"
	"circulation/internal/infra/readstore"
	"circulation/internal/infra/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBook(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO books (id, title) VALUES ($1, $2)`, id, "Fixture Title")
	require.NoError(t, err)
	return id
}

func seedBorrower(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO borrowers (id, name) VALUES ($1, $2)`, id, "Fixture Reader")
	require.NoError(t, err)
	return id
}

func seedCopy(t *testing.T, pool *pgxpool.Pool, bookID uuid.UUID, barcode string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO book_copies (id, book_id, barcode, status) VALUES ($1, $2, $3, $4)`,
		id, bookID, barcode, copy.StatusAvailable.String())
	require.NoError(t, err)
	return id
}

func TestRuleRepositoryRoundTrip(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := repository.NewRuleRepository(pool)
	view := readstore.NewRuleReadStore(pool)

	for _, r := range rule.Defaults() {
		require.NoError(t, repo.CreateIfAbsent(ctx, r))
	}

	got, err := repo.FindByKey(ctx, rule.KeyMaxBorrowBooks)
	require.NoError(t, err)
	assert.Equal(t, "5", got.Value())
	assert.Equal(t, rule.TypeInteger, got.Type())

	require.NoError(t, got.Update(got.Name(), got.Description(), "7", rule.TypeInteger))
	require.NoError(t, repo.Update(ctx, got))

	// Re-seeding must not clobber the operator's edit.
	for _, r := range rule.Defaults() {
		require.NoError(t, repo.CreateIfAbsent(ctx, r))
	}

	again, err := repo.FindByKey(ctx, rule.KeyMaxBorrowBooks)
	require.NoError(t, err)
	assert.Equal(t, "7", again.Value())

	v, err := view.FindByKey(ctx, rule.KeyMaxBorrowBooks)
	require.NoError(t, err)
	assert.Equal(t, "7", v.Value)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(rule.Defaults()))

	_, err = repo.FindByKey(ctx, "NO_SUCH_RULE")
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestCopyRepositoryClaimAndRelease(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := repository.NewCopyRepository(pool)

	bookID := seedBook(t, pool)
	copyID := seedCopy(t, pool, bookID, "BC-0001")

	require.NoError(t, repo.ClaimForLoan(ctx, copyID))

	err := repo.ClaimForLoan(ctx, copyID)
	assert.True(t, infra.IsKind(err, infra.KindConflict), "second claim must lose: %v", err)

	c, err := repo.FindByID(ctx, copyID)
	require.NoError(t, err)
	assert.Equal(t, copy.StatusOnLoan, c.Status())

	require.NoError(t, repo.Release(ctx, copyID))

	err = repo.Release(ctx, copyID)
	assert.True(t, infra.IsKind(err, infra.KindConflict), "releasing a shelved copy must conflict: %v", err)

	err = repo.ClaimForLoan(ctx, uuid.New())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestLoanRepositoryOverdueFilter(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := repository.NewLoanRepository(pool)

	borrowerID := seedBorrower(t, pool)
	bookID := seedBook(t, pool)
	policy := loan.Policy{LoanPeriodDays: 30, FinePerDay: decimal.RequireFromString("0.50")}

	// A loan returned late is terminal OVERDUE with returned_at set; the
	// borrower is no longer blocked by it.
	base := time.Now().UTC().Add(-60 * 24 * time.Hour)
	closed := loan.Open(borrowerID, seedCopy(t, pool, bookID, "BC-0001"), base, policy)
	require.NoError(t, closed.Close(base.AddDate(0, 0, 40), policy))
	require.NoError(t, repo.Create(ctx, closed))
	require.Equal(t, loan.StatusOverdue, closed.Status())

	blocked, err := repo.ExistsOverdueByBorrower(ctx, borrowerID)
	require.NoError(t, err)
	assert.False(t, blocked, "returned-late loan must not block the borrower")

	// An overdue loan still out does block.
	open := loan.Open(borrowerID, seedCopy(t, pool, bookID, "BC-0002"), base, policy)
	flagged, err := open.FlagOverdue(base.AddDate(0, 0, 40), policy)
	require.NoError(t, err)
	require.True(t, flagged)
	require.NoError(t, repo.Create(ctx, open))

	blocked, err = repo.ExistsOverdueByBorrower(ctx, borrowerID)
	require.NoError(t, err)
	assert.True(t, blocked, "an overdue loan still out must block the borrower")
}
