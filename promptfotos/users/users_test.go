package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/promptfotos/server/internal/quota"
)

type call struct {
	sql  string
	args []any
}

// a row that scans one int, or fails with err
type intRow struct {
	value int
	err   error
}

func (r intRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	*dest[0].(*int) = r.value
	return nil
}

type fakeDB struct {
	mu    sync.Mutex
	calls []call
	row   pgx.Row
	tag   pgconn.CommandTag
	err   error
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{sql: sql, args: args})
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{sql: sql, args: args})
	return f.tag, f.err
}

func squash(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

func TestReserveFreeGenerationQuery(t *testing.T) {
	// the WHERE clause is what keeps two concurrent requests from both taking the last slot
	assert.Equal(t,
		"UPDATE users SET free_generations_used = free_generations_used + 1, updated_at = NOW() "+
			"WHERE id = $1 AND free_generations_used < free_generations_limit "+
			"RETURNING free_generations_used",
		squash(queryReserveFreeGeneration),
	)

	assert.Equal(t,
		"UPDATE users SET free_generations_used = free_generations_used - 1, updated_at = NOW() "+
			"WHERE id = $1 AND free_generations_used > 0",
		squash(queryReleaseFreeGeneration),
	)
}

func TestReserveFreeGeneration(t *testing.T) {
	ctx := context.Background()

	db := &fakeDB{row: intRow{value: 2}}
	used, ok, err := NewRepository(db).ReserveFreeGeneration(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, used)

	require.Len(t, db.calls, 1)
	assert.Equal(t, queryReserveFreeGeneration, db.calls[0].sql)
	assert.Equal(t, []any{"user-1"}, db.calls[0].args)

	// no row back means the allowance was already spent
	db = &fakeDB{row: intRow{err: pgx.ErrNoRows}}
	used, ok, err = NewRepository(db).ReserveFreeGeneration(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, used)

	boom := errors.New("connection reset")
	db = &fakeDB{row: intRow{err: boom}}
	_, ok, err = NewRepository(db).ReserveFreeGeneration(ctx, "user-1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestReleaseFreeGeneration(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	require.NoError(t, NewRepository(db).ReleaseFreeGeneration(context.Background(), "user-1"))

	require.Len(t, db.calls, 1)
	assert.Equal(t, queryReleaseFreeGeneration, db.calls[0].sql)
}

func TestResetGenerations(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	err := NewRepository(db).ResetGenerations(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	db = &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	assert.NoError(t, NewRepository(db).ResetGenerations(context.Background(), "user-1"))
}

func TestSetSubscriptionStatus(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	require.NoError(t, NewRepository(db).SetSubscriptionStatus(context.Background(), "user-1", quota.TierPro))

	require.Len(t, db.calls, 1)
	assert.Equal(t, []any{"pro", "user-1"}, db.calls[0].args)
}
